package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyroball/checkout/internal/checkout/app"
	"github.com/gyroball/checkout/internal/checkout/config"
	"github.com/gyroball/checkout/internal/checkout/infra/gateway/mercadopago"
	"github.com/gyroball/checkout/internal/checkout/infra/httpx"
	"github.com/gyroball/checkout/internal/checkout/infra/notifier/resend"
	"github.com/gyroball/checkout/internal/checkout/infra/store/sqlite"
	"github.com/gyroball/checkout/internal/pkg/cache"
	"github.com/gyroball/checkout/internal/pkg/telemetry"
	sagasqlite "github.com/gyroball/checkout/internal/saga/sagalog/sqlite"
)

const serviceName = "checkout-api"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.SetupTracer(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("tracer shutdown failed", "error", err)
			}
		}()
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	sagaLog, err := sagasqlite.New(store.DB())
	if err != nil {
		return err
	}

	var orderCache cache.Cache
	if cfg.RedisAddr != "" {
		orderCache = cache.NewRedisCache(cfg.RedisAddr, serviceName)
	} else {
		slog.Info("redis not configured, order cache disabled")
		orderCache = cache.NewNoop()
	}

	service := app.New(cfg, app.Deps{
		Customers: store.Customers,
		Addresses: store.Addresses,
		Orders:    store.Orders,
		Gateway: mercadopago.New(mercadopago.Config{
			AccessToken: cfg.Gateway.AccessToken,
			BaseURL:     cfg.Gateway.BaseURL,
			Timeout:     cfg.Gateway.Timeout,
		}),
		Notifier: resend.New(resend.Config{
			APIKey:      cfg.Email.ResendAPIKey,
			From:        cfg.Email.From,
			AdminEmails: cfg.Email.AdminEmails,
		}),
		Cache:   orderCache,
		SagaLog: sagaLog,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpx.NewRouter(httpx.NewHandler(service)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("checkout api listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
