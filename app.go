package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gudang/internal/config"
	"gudang/internal/database"
	"gudang/internal/handlers"
	"gudang/internal/invalidation"
	"gudang/internal/metrics"
	"gudang/internal/middleware"
	"gudang/internal/repositories"
	"gudang/internal/services"
	"gudang/pkg/rabbitmq"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/oklog/ulid/v2"
	"github.com/streadway/amqp"
)

var appLogTags = log.Fields{"package": "gudang", "module": "main"}

// setupLogging installs the apex/log handler and level named by the config.
func setupLogging(cfg config.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetHandler(jsonhandler.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}
	return nil
}

// stores opens the item and user repositories for the configured driver.
func stores(cfg config.Config) (repositories.ItemRepository, repositories.UserRepository, error) {
	if cfg.DatabaseDriver == database.DriverMemory {
		return repositories.NewMemoryItemRepository(), repositories.NewMemoryUserRepository(), nil
	}

	dialector, err := database.GetDialector(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewConnection(dialector, database.ParseLogLevel(cfg.DatabaseLogLevel))
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewGORMItemRepository(db), repositories.NewGORMUserRepository(db), nil
}

// viewValidators returns the tracker backing item ETags, or nil when another
// instance could mutate the shared store without this one hearing about it: a
// SQL store without the invalidation broker.
func viewValidators(cfg config.Config, tracker *invalidation.Tracker) *invalidation.Tracker {
	if cfg.DatabaseDriver == database.DriverMemory || cfg.RabbitMQURL != "" {
		return tracker
	}
	return nil
}

// NewApp wires the stores, services and routes described by cfg. The returned
// cleanup function releases the broker connection, if any.
func NewApp(cfg config.Config) (*fiber.App, func(), error) {
	itemRepo, userRepo, err := stores(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stores: %w", err)
	}

	// Each instance stamps the signals it publishes so it can skip its own echoes.
	origin := ulid.Make().String()
	tracker := invalidation.NewTracker()
	recorder := metrics.NewRecorder()
	coordinators := invalidation.Fanout{tracker, recorder}

	cleanup := func() {}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.InvalidationExchange,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		cleanup = func() {
			if err := mqClient.Close(); err != nil {
				log.WithFields(appLogTags).WithError(err).Error("Failed to close RabbitMQ client")
			}
		}

		// Remote signals only refresh local view state; they are not re-published.
		receiver := invalidation.NewReceiver(origin, invalidation.Fanout{tracker, recorder})
		err = mqClient.ConsumeInvalidations(func(msg amqp.Delivery) error {
			return receiver.Apply(context.Background(), msg.Body)
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to start invalidation consumer: %w", err)
		}
		coordinators = append(coordinators, invalidation.NewPublisher(mqClient, cfg.InvalidationExchange, origin))
	}

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	itemService := services.NewItemService(itemRepo, coordinators)

	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService, viewValidators(cfg, tracker))

	app := fiber.New(fiber.Config{AppName: "gudang"})

	app.Use(logger.New())
	if cfg.MetricsEnabled {
		app.Use(recorder.Middleware())
		app.Get("/metrics", recorder.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":      "healthy",
			"time":        time.Now().Format(time.RFC3339),
			"instance":    origin,
			"broadcasted": cfg.RabbitMQURL != "",
		})
	})

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	itemHandler.RegisterRoutes(protectedRoutes)

	return app, cleanup, nil
}
