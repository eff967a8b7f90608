package handlers

import (
	"fmt"

	"github.com/arzan03/FitnexFitness/internal/middleware"
	"github.com/arzan03/FitnexFitness/internal/models"
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
)

// CreatePaymentIntent answers {clientSecret} for the posted price.
func (h *Handler) CreatePaymentIntent(c *fiber.Ctx) error {
	var req models.PaymentIntentRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	secret, err := h.payments.CreateIntent(c.UserContext(), req.Price)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"clientSecret": secret})
}

// RecordPayment stores a completed payment and clears its cart entries.
func (h *Handler) RecordPayment(c *fiber.Ctx) error {
	payment, err := h.document(c)
	if err != nil {
		return err
	}

	result, err := h.payments.RecordPayment(c.UserContext(), payment)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// PaymentHistory lists the payments of the session's own email. Admins may read any.
func (h *Handler) PaymentHistory(c *fiber.Ctx) error {
	email := param(c, "email")
	if email != middleware.SessionEmail(c) {
		role, err := h.users.RoleOf(c.UserContext(), middleware.SessionEmail(c))
		if err != nil {
			return err
		}
		if role != models.RoleAdmin {
			return fmt.Errorf("payment history of another user: %w", services.ErrForbidden)
		}
	}

	docs, err := h.payments.History(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(docs)
}
