package middleware

import (
	"context"
	"fmt"

	"github.com/arzan03/FitnexFitness/internal/models"
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
)

// RoleLookup resolves the stored role of a user.
type RoleLookup interface {
	RoleOf(ctx context.Context, email string) (string, error)
}

// RoleKey holds the caller's stored role once AdminMiddleware has run.
const RoleKey = "role"

// AdminMiddleware ensures that only users stored with the "admin" role pass.
// It must run after AuthMiddleware.
func AdminMiddleware(roles RoleLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := SessionEmail(c)
		if email == "" {
			return fmt.Errorf("session has no email claim: %w", services.ErrForbidden)
		}

		role, err := roles.RoleOf(c.UserContext(), email)
		if err != nil {
			return err
		}
		if role != models.RoleAdmin {
			return fmt.Errorf("admins only: %w", services.ErrForbidden)
		}

		c.Locals(RoleKey, role)
		return c.Next()
	}
}
