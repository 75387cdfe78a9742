package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
	httpapi "github.com/i474232898/air-quality-monitor/internal/api/http"
	"github.com/i474232898/air-quality-monitor/internal/metrics"
	"github.com/i474232898/air-quality-monitor/internal/mqttingest"
	"github.com/i474232898/air-quality-monitor/internal/scheduler"
)

const serviceName = "air-quality-monitor"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default command)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("error closing store", "error", err)
		}
	}()

	m := metrics.New()
	service := newService(cfg, st, log, airquality.WithObserver(m))

	// Periodic store probe backing /api/v1/store/status.
	sched := scheduler.New(cfg.StoreProbeInterval, service, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.MQTT.Enabled() {
		sub := mqttingest.New(cfg.MQTT, service, log)
		if err := sub.Start(); err != nil {
			// HTTP ingestion still works without the broker.
			log.Error("mqtt ingestion disabled", "error", err)
		} else {
			defer sub.Stop()
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTPReadTimeout,
		WriteTimeout:          cfg.HTTPWriteTimeout,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info("http server listening", "port", cfg.Port, "store", cfg.StoreDriver, "timezone", cfg.BucketLocation.String())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	return nil
}
