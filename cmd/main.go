package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/FitnexFitness/internal/config"
	"github.com/arzan03/FitnexFitness/internal/db"
	"github.com/arzan03/FitnexFitness/internal/handlers"
	"github.com/arzan03/FitnexFitness/internal/logger"
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/arzan03/FitnexFitness/internal/storage"
	"github.com/arzan03/FitnexFitness/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(!cfg.IsProduction(), logger.LogLevel(cfg.LogLevel)); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	if !dotenv {
		log.Info("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	var (
		store *db.MongoStore
		media *storage.MinioStore
	)
	err = utils.RunParallel(
		func() error {
			var err error
			if store, err = db.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase); err != nil {
				return err
			}
			return store.EnsureIndexes(ctx)
		},
		func() error {
			var err error
			media, err = storage.InitMinio(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
			return err
		},
	)
	if err != nil {
		store.Disconnect(ctx)
		log.Fatal("backing services unavailable", zap.Error(err))
	}

	if cfg.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, payment intents will fail")
	}

	h := handlers.New(handlers.Deps{
		Resources:  services.NewResourceService(store),
		Users:      services.NewUserService(store),
		Sessions:   services.NewSessionService(cfg.TokenSecret),
		Payments:   services.NewPaymentService(store, services.NewStripeIntents(cfg.StripeSecretKey)),
		Media:      services.NewMediaService(media),
		Health:     store,
		Production: cfg.IsProduction(),
	})
	app := handlers.NewApp(h, cfg.AllowedOrigins())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	log.Info("Fitness app running", zap.String("port", cfg.Port))
	err = serve(app, ":"+cfg.Port, quit)

	disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	store.Disconnect(disconnectCtx)

	if err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// serve runs the app until it fails to listen or a signal arrives on quit.
// A signal triggers a graceful shutdown bounded by shutdownTimeout.
func serve(app *fiber.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-quit:
	}

	logger.Get().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}
