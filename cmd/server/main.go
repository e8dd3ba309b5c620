package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/pronostico/internal/config"
	"github.com/iudanet/pronostico/internal/crypto"
	"github.com/iudanet/pronostico/internal/server"
	"github.com/iudanet/pronostico/internal/server/forecast"
	"github.com/iudanet/pronostico/internal/server/jwt"
	"github.com/iudanet/pronostico/internal/server/metrics"
	"github.com/iudanet/pronostico/internal/server/storage/sqlite"
	"github.com/iudanet/pronostico/internal/server/users"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Show version and exit if requested
	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SecretGenerated {
		logger.Warn("SECRET_KEY not set, using a random secret: tokens will not survive restart")
	}

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	m := metrics.New()

	provider := forecast.New(forecast.Config{
		BaseURL: cfg.ForecastURL,
		Timeout: cfg.ForecastTimeout,
	}, forecast.WithMetrics(m))

	srv := server.New(server.Options{
		Logger: logger,
		Store:  store,
		Users:  users.NewService(store, crypto.NewPasswordHasher(cfg.BcryptCost), logger),
		Tokens: jwt.NewService(jwt.Config{
			Secret:         []byte(cfg.JWTSecret),
			AccessTokenTTL: cfg.AccessTokenTTL,
			Issuer:         cfg.JWTIssuer,
		}, store),
		Forecast: provider,
		Metrics:  m,
		Version:  Version,
		RateLimit: server.RateLimit{
			Requests: cfg.RateLimitRequests,
			Burst:    cfg.RateLimitBurst,
			Window:   cfg.RateLimitWindow,

			TrustedProxies: cfg.TrustedProxies,
		},
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.ForecastTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Pronostico server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", Version),
			slog.Bool("mock_forecast", cfg.ForecastURL == ""))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	logger.Info("HTTP server shutdown complete")

	return nil
}

func printVersion() {
	fmt.Printf("Pronostico Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
