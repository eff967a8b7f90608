package middleware

import (
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by AuthMiddleware.
const (
	ClaimsKey = "claims"
	EmailKey  = "email"
)

// AuthMiddleware validates the session cookie and exposes its claims to the next handlers.
func AuthMiddleware(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := sessions.Verify(c.Cookies(services.SessionCookie))
		if err != nil {
			return err
		}

		c.Locals(ClaimsKey, claims)
		c.Locals(EmailKey, services.ClaimEmail(claims))
		return c.Next()
	}
}

// Claims returns the verified session claims, or nil on public routes.
func Claims(c *fiber.Ctx) jwt.MapClaims {
	claims, _ := c.Locals(ClaimsKey).(jwt.MapClaims)
	return claims
}

// SessionEmail returns the email claim of the verified session.
func SessionEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(EmailKey).(string)
	return email
}
