package handlers

import (
	"runtime/debug"
	"strings"

	"github.com/arzan03/FitnexFitness/internal/logger"
	"github.com/arzan03/FitnexFitness/internal/middleware"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Routes is the capability table of the whole API. Specific paths precede
// the parameterised ones they would otherwise collide with.
func (h *Handler) Routes() []middleware.Route {
	return []middleware.Route{
		{Method: fiber.MethodGet, Path: "/", Access: middleware.Public, Handler: h.Home},
		{Method: fiber.MethodGet, Path: "/healthz", Access: middleware.Public, Handler: h.Healthz},

		// Session
		{Method: fiber.MethodPost, Path: "/jwt", Access: middleware.Public, Handler: h.IssueToken},
		{Method: fiber.MethodGet, Path: "/logout", Access: middleware.Public, Handler: h.Logout},

		// Users
		{Method: fiber.MethodPut, Path: "/users/:email", Access: middleware.Public, Handler: h.SaveUser},
		{Method: fiber.MethodPut, Path: "/user/:email", Access: middleware.Public, Handler: h.SaveUser},
		{Method: fiber.MethodGet, Path: "/user", Access: middleware.Admin, Handler: h.ListUsers},
		{Method: fiber.MethodGet, Path: "/user/:email", Access: middleware.Public, Handler: h.GetUser},
		{Method: fiber.MethodPatch, Path: "/user/trainer/:email", Access: middleware.Admin, Handler: h.PromoteUser},
		{Method: fiber.MethodPatch, Path: "/user/member/:email", Access: middleware.Admin, Handler: h.DemoteUser},
		{Method: fiber.MethodPatch, Path: "/user/:id", Access: middleware.Session, Handler: h.UpdateUser},
		{Method: fiber.MethodDelete, Path: "/user/trainer/:id", Access: middleware.Admin, Handler: h.DeleteTrainer},
		{Method: fiber.MethodDelete, Path: "/user/:id", Access: middleware.Admin, Handler: h.DeleteUser},

		// Content
		{Method: fiber.MethodGet, Path: "/featured", Access: middleware.Public, Handler: h.ListFeatured},
		{Method: fiber.MethodPost, Path: "/featured", Access: middleware.Admin, Handler: h.CreateFeatured},
		{Method: fiber.MethodGet, Path: "/testimonials", Access: middleware.Public, Handler: h.ListTestimonials},
		{Method: fiber.MethodPost, Path: "/testimonials", Access: middleware.Admin, Handler: h.CreateTestimonial},
		{Method: fiber.MethodGet, Path: "/newsletters", Access: middleware.Admin, Handler: h.ListSubscribers},
		{Method: fiber.MethodPost, Path: "/newsletters", Access: middleware.Public, Handler: h.Subscribe},

		// Trainers and classes
		{Method: fiber.MethodGet, Path: "/trainers", Access: middleware.Public, Handler: h.ListTrainers},
		{Method: fiber.MethodPost, Path: "/trainers", Access: middleware.Session, Handler: h.ApplyTrainer},
		{Method: fiber.MethodPatch, Path: "/trainers/:id", Access: middleware.Admin, Handler: h.PromoteTrainer},
		{Method: fiber.MethodDelete, Path: "/trainers/:id", Access: middleware.Admin, Handler: h.DeleteTrainer},
		{Method: fiber.MethodGet, Path: "/classes", Access: middleware.Public, Handler: h.ListClasses},
		{Method: fiber.MethodPost, Path: "/classes", Access: middleware.Session, Handler: h.CreateClass},

		// Community
		{Method: fiber.MethodGet, Path: "/forums", Access: middleware.Public, Handler: h.ListForums},
		{Method: fiber.MethodPost, Path: "/forums", Access: middleware.Session, Handler: h.CreateForumPost},
		{Method: fiber.MethodDelete, Path: "/forums/:id", Access: middleware.Session, Handler: h.DeleteForumPost},
		{Method: fiber.MethodGet, Path: "/challenge", Access: middleware.Public, Handler: h.ListChallenges},
		{Method: fiber.MethodPost, Path: "/challenge", Access: middleware.Session, Handler: h.CreateChallenge},

		// Payments
		{Method: fiber.MethodPost, Path: "/create-payment-intent", Access: middleware.Session, Handler: h.CreatePaymentIntent},
		{Method: fiber.MethodGet, Path: "/payments/:email", Access: middleware.Session, Handler: h.PaymentHistory},
		{Method: fiber.MethodPost, Path: "/payments", Access: middleware.Session, Handler: h.RecordPayment},

		// Media
		{Method: fiber.MethodPost, Path: "/uploads", Access: middleware.Session, Handler: h.UploadImage},
	}
}

// NewApp builds the Fiber application with the shared middleware stack and every route.
func NewApp(h *Handler, allowedOrigins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "fitnex-fitness",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    8 << 20,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.Get().Error("panic recovered",
				zap.Any("error", e),
				zap.String("path", c.Path()),
				zap.ByteString("stacktrace", debug.Stack()))
		},
	}))
	app.Use(middleware.RequestLogger(logger.Get()))
	app.Use(middleware.Metrics())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ","),
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	guard := middleware.NewGuard(
		middleware.AuthMiddleware(h.sessions),
		middleware.AdminMiddleware(h.users),
	)
	guard.Register(app, h.Routes())
	return app
}
