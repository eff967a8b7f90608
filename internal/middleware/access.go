package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// Access is the capability a route requires.
type Access int

const (
	Public Access = iota
	Session
	Admin
)

func (a Access) String() string {
	switch a {
	case Session:
		return "session"
	case Admin:
		return "admin"
	default:
		return "public"
	}
}

// Route is one row of the routing table.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler fiber.Handler
}

// Guard applies the same gate to every route of a given capability.
type Guard struct {
	session fiber.Handler
	admin   fiber.Handler
}

func NewGuard(session, admin fiber.Handler) *Guard {
	return &Guard{session: session, admin: admin}
}

// Chain returns the handler chain for a capability ending in h.
func (g *Guard) Chain(access Access, h fiber.Handler) []fiber.Handler {
	switch access {
	case Session:
		return []fiber.Handler{g.session, h}
	case Admin:
		return []fiber.Handler{g.session, g.admin, h}
	default:
		return []fiber.Handler{h}
	}
}

// Register mounts every route in table order. More specific paths must come first.
func (g *Guard) Register(r fiber.Router, routes []Route) {
	for _, rt := range routes {
		r.Add(rt.Method, rt.Path, g.Chain(rt.Access, rt.Handler)...)
	}
}
