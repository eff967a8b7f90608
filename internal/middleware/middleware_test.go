package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("no cookie: %w", services.ErrUnauthenticated), fiber.StatusUnauthorized},
		{fmt.Errorf("not admin: %w", services.ErrForbidden), fiber.StatusForbidden},
		{fmt.Errorf("bad id: %w", services.ErrBadRequest), fiber.StatusBadRequest},
		{fmt.Errorf("stripe down: %w", services.ErrPaymentProvider), fiber.StatusBadGateway},
		{fmt.Errorf("insert: %w", services.ErrStore), fiber.StatusInternalServerError},
		{errors.New("anything else"), fiber.StatusInternalServerError},
		{fiber.ErrNotFound, fiber.StatusNotFound},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fmt.Errorf("mongo: connection string secret: %w", services.ErrStore)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if strings.Contains(string(body), "secret") || !strings.Contains(string(body), `"error"`) {
		t.Errorf("body = %s", body)
	}
}

func TestGuardChains(t *testing.T) {
	var calls []string
	mark := func(name string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			calls = append(calls, name)
			return c.Next()
		}
	}
	final := func(c *fiber.Ctx) error {
		calls = append(calls, "handler")
		return c.SendStatus(fiber.StatusNoContent)
	}

	guard := NewGuard(mark("session"), mark("admin"))
	app := fiber.New()
	guard.Register(app, []Route{
		{Method: fiber.MethodGet, Path: "/public", Access: Public, Handler: final},
		{Method: fiber.MethodGet, Path: "/session", Access: Session, Handler: final},
		{Method: fiber.MethodGet, Path: "/admin", Access: Admin, Handler: final},
	})

	tests := []struct {
		path string
		want string
	}{
		{"/public", "handler"},
		{"/session", "session,handler"},
		{"/admin", "session,admin,handler"},
	}
	for _, tt := range tests {
		calls = nil
		if _, err := app.Test(httptest.NewRequest("GET", tt.path, nil)); err != nil {
			t.Fatalf("app.Test(%s) error = %v", tt.path, err)
		}
		if got := strings.Join(calls, ","); got != tt.want {
			t.Errorf("%s ran %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAccessString(t *testing.T) {
	if Public.String() != "public" || Session.String() != "session" || Admin.String() != "admin" {
		t.Error("unexpected Access names")
	}
}
