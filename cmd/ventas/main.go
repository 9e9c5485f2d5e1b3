// Command ventas serves the sales dashboard.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ventas/internal/amqp"
	"ventas/internal/cli"
	apphttp "ventas/internal/http"
	"ventas/internal/log"
)

func main() {
	start := time.Now()

	if err := cli.LoadEnvFile(); err != nil {
		// Logging is not configured yet.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger("info").Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	loader, res, err := cli.OpenDataset(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize dataset backend", "error", err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	// Export notifications are optional; the dashboard runs without a broker.
	var notifier apphttp.ExportNotifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, export notifications disabled", "error", err)
		} else {
			defer client.Close()
			notifier = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, loader, notifier, apphttp.Options{
		ExportRateLimit:    cfg.ExportRateLimit,
		ExportFormatLimits: cfg.ExportFormatLimits(),
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Warm the dataset so the first page view does not pay for the load.
	g.Go(func() error {
		if _, err := loader.Get(gctx); err != nil {
			logger.Warn("Dataset warm-up failed, will retry on first request", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting ventas server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"amqp_enabled", notifier != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", "uptime", time.Since(start).Round(time.Second).String())
}
