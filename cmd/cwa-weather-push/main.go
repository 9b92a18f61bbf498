package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/cwa-weather-push/internal/api/http"
	"github.com/i474232898/cwa-weather-push/internal/config"
	"github.com/i474232898/cwa-weather-push/internal/notify"
	"github.com/i474232898/cwa-weather-push/internal/scheduler"
	"github.com/i474232898/cwa-weather-push/internal/store"
	"github.com/i474232898/cwa-weather-push/internal/weather"
	"github.com/i474232898/cwa-weather-push/internal/weather/providers"
)

func main() {
	once := flag.Bool("once", false, "run the push pipeline once and exit")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Separate clients so fetch and publish keep their own timeouts.
	fetchClient := &http.Client{Timeout: cfg.FetchTimeout}
	publishClient := &http.Client{Timeout: cfg.PublishTimeout}

	// In-memory run log with configured retention.
	runStore := store.NewMemoryStore(cfg.RunHistory, cfg.RunMaxAge)

	fetcher := providers.NewCWAProvider(fetchClient, cfg.CWABaseURL, cfg.CWAAPIKey)
	publisher := notify.NewWebhook(publishClient, cfg.WebhookURL)

	// Core service running fetch → render → publish.
	service := weather.NewService(fetcher, publisher, runStore, cfg.Cities, cfg.PushMode)

	if *once {
		if _, err := service.Run(context.Background()); err != nil {
			log.Fatalf("push failed: %v", err)
		}
		return
	}

	// Scheduler that pushes the summary at fixed times of day.
	sched := scheduler.New(service, cfg.Schedule, cfg.Location)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "cwa-weather-push",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// On-demand queries fetch every city in sequence.
		WriteTimeout: time.Duration(len(cfg.Cities)+1) * cfg.FetchTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cwa-weather-push",
			"nextRun": sched.NextRun(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
