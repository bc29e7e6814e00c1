package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetr/internal/auth"
	"budgetr/internal/backend"
	"budgetr/internal/cli"
	"budgetr/internal/events"
	apphttp "budgetr/internal/http"
	applog "budgetr/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	res, err := backend.NewFactory(logger.Logger.With(applog.FieldComponent, applog.ComponentBackend)).CreateBackend(startCtx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize storage backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Events are optional; without a broker the app runs with a no-op publisher.
	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(startCtx, cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("AMQP unavailable, events disabled", applog.FieldError, err)
		} else {
			publisher = p
		}
	}

	sessions := auth.NewSessionStore(auth.SessionConfig{
		TTL:          cfg.SessionTTL,
		Capacity:     cfg.SessionCapacity,
		SecureCookie: cfg.SessionCookieSecure,
	})

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:                res.Store,
		Publisher:            publisher,
		Sessions:             sessions,
		Logger:               logger,
		RateLimitPerMinute:   cfg.RateLimitPerMinute,
		CacheCleanupInterval: 5 * time.Minute,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := publisher.Close(); err != nil {
			logger.Warn("Event publisher close error", applog.FieldError, err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Storage close error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting budgetr server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
