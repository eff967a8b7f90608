package middleware

import (
	"errors"

	"github.com/arzan03/FitnexFitness/internal/logger"
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusFor maps a handler error onto an HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrBadRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrPaymentProvider):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler writes {"error": msg} with the mapped status. Internal
// failures are logged and reported with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	msg := err.Error()

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		msg = fe.Message
	case status == fiber.StatusUnauthorized:
		msg = "Unauthorized access"
	case status == fiber.StatusForbidden:
		msg = "Forbidden access"
	case status == fiber.StatusBadGateway:
		msg = "Payment provider unavailable"
	case status >= fiber.StatusInternalServerError:
		logger.Get().Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		msg = "Internal server error"
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}
