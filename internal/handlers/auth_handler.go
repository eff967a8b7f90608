package handlers

import (
	"time"

	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) sessionCookie(value string) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     services.SessionCookie,
		Value:    value,
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
	if h.production {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}
	return cookie
}

// IssueToken signs the posted claims and sets them as the session cookie.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	claims := map[string]interface{}{}
	if err := h.bind(c, &claims); err != nil {
		return err
	}

	token, err := h.sessions.Issue(claims)
	if err != nil {
		return err
	}

	c.Cookie(h.sessionCookie(token))
	return c.JSON(fiber.Map{"success": true})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *fiber.Ctx) error {
	cookie := h.sessionCookie("")
	cookie.Expires = time.Unix(0, 0)
	c.Cookie(cookie)
	return c.JSON(fiber.Map{"success": true})
}
