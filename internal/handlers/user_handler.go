package handlers

import (
	"fmt"

	"github.com/arzan03/FitnexFitness/internal/db"
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
)

// SaveUser registers the user on first sight and otherwise returns the stored record.
func (h *Handler) SaveUser(c *fiber.Ctx) error {
	email, err := h.emailParam(c)
	if err != nil {
		return err
	}
	profile, err := h.document(c)
	if err != nil {
		return err
	}

	result, err := h.users.UpsertOrFetch(c.UserContext(), email, profile)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetUser returns one user by email, or null.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.GetByEmail(c.UserContext(), param(c, "email"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// ListUsers returns every registered user.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	return h.list(c, db.UsersCollection)
}

// UpdateUser applies a partial profile change by id.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	update, err := h.document(c)
	if err != nil {
		return err
	}
	if _, present := update["email"]; present {
		email, _ := update.String("email")
		if err := h.validate.Var(email, "required,email"); err != nil {
			return fmt.Errorf("invalid email %q: %w", email, services.ErrBadRequest)
		}
	}
	result, err := h.users.UpdateProfile(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// PromoteUser makes the user with the given email a trainer pending payment.
func (h *Handler) PromoteUser(c *fiber.Ctx) error {
	email, err := h.emailParam(c)
	if err != nil {
		return err
	}
	result, err := h.users.PromoteByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// DemoteUser returns a trainer to the member role.
func (h *Handler) DemoteUser(c *fiber.Ctx) error {
	email, err := h.emailParam(c)
	if err != nil {
		return err
	}
	result, err := h.users.DemoteByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// DeleteUser removes a user by id.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	return h.deleteByID(c, db.UsersCollection)
}
