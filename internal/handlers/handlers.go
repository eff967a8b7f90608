package handlers

import (
	"context"
	"fmt"
	"net/url"
	"reflect"

	"github.com/arzan03/FitnexFitness/internal/models"
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the services every route handler works against.
type Handler struct {
	resources  *services.ResourceService
	users      *services.UserService
	sessions   *services.SessionService
	payments   *services.PaymentService
	media      *services.MediaService
	health     Pinger
	validate   *validator.Validate
	production bool
}

// Deps groups the constructor arguments of Handler.
type Deps struct {
	Resources  *services.ResourceService
	Users      *services.UserService
	Sessions   *services.SessionService
	Payments   *services.PaymentService
	Media      *services.MediaService
	Health     Pinger
	Production bool
}

func New(d Deps) *Handler {
	return &Handler{
		resources:  d.Resources,
		users:      d.Users,
		sessions:   d.Sessions,
		payments:   d.Payments,
		media:      d.Media,
		health:     d.Health,
		validate:   validator.New(),
		production: d.Production,
	}
}

// bind parses the JSON body into out. Struct targets are also validated.
func (h *Handler) bind(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return h.check(out)
	}
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, services.ErrBadRequest)
	}
	return h.check(out)
}

// document decodes a JSON object body as sent. An empty or null body is an empty document.
func (h *Handler) document(c *fiber.Ctx) (models.Document, error) {
	doc := models.Document{}
	if err := h.bind(c, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = models.Document{}
	}
	return doc, nil
}

func (h *Handler) check(out interface{}) error {
	if reflect.Indirect(reflect.ValueOf(out)).Kind() != reflect.Struct {
		return nil
	}
	if err := h.validate.Struct(out); err != nil {
		return fmt.Errorf("%v: %w", err, services.ErrBadRequest)
	}
	return nil
}

// param returns a path parameter with percent-escapes decoded.
func param(c *fiber.Ctx, name string) string {
	v := c.Params(name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// emailParam returns the :email parameter, rejecting values that are not addresses.
func (h *Handler) emailParam(c *fiber.Ctx) (string, error) {
	email := param(c, "email")
	if err := h.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("invalid email %q: %w", email, services.ErrBadRequest)
	}
	return email, nil
}

// Home answers the root path.
func (h *Handler) Home(c *fiber.Ctx) error {
	return c.SendString("Hello Fitnex-Fitness!")
}

// Healthz pings the document store.
func (h *Handler) Healthz(c *fiber.Ctx) error {
	if err := h.health.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
