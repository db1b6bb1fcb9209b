// Package app assembles the contacts directory server: storage, services,
// HTTP surface, and process lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/contactshub/server/internal/auth"
	"github.com/contactshub/server/internal/auth/token"
	"github.com/contactshub/server/internal/directory"
	"github.com/contactshub/server/internal/platform/logging"
	"github.com/contactshub/server/internal/platform/otel"
	"github.com/contactshub/server/internal/platform/timeouts"
	"github.com/contactshub/server/internal/storage/sqlite"
	"github.com/contactshub/server/internal/web"
)

// Config holds everything the server needs to start.
type Config struct {
	HTTPAddr    string
	DBPath      string
	TokenSecret string
	TokenIssuer string
	TokenTTL    time.Duration
	LogLevel    string
}

func (c Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("http address is required")
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.TokenSecret == "" {
		return errors.New("token secret is required")
	}
	return nil
}

// Run starts the server and blocks until ctx is canceled or the listener
// fails. Shutdown is graceful within the shutdown timeout.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)
	defer logger.Sync()

	otelShutdown, err := otel.Setup(ctx, "contactshub")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	stats, err := store.GetStatistics(ctx)
	if err != nil {
		return fmt.Errorf("read statistics: %w", err)
	}
	logger.Info("store opened",
		zap.String("path", cfg.DBPath),
		zap.Int64("users", stats.UserCount),
		zap.Int64("contacts", stats.ContactCount),
	)

	issuer := token.Issuer{
		Secret: []byte(cfg.TokenSecret),
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	}
	handlers := web.NewHandlers(
		auth.NewService(store, issuer),
		directory.NewService(store, store),
		logger,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(handlers.Router(), "http.server"),
		ReadHeaderTimeout: timeouts.ReadHeader,
		WriteTimeout:      timeouts.Request,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
