// Package server собирает HTTP API: маршруты, middleware и их зависимости.
package server

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/iudanet/pronostico/internal/server/forecast"
	"github.com/iudanet/pronostico/internal/server/handlers"
	"github.com/iudanet/pronostico/internal/server/jwt"
	"github.com/iudanet/pronostico/internal/server/metrics"
	"github.com/iudanet/pronostico/internal/server/middleware"
	"github.com/iudanet/pronostico/internal/server/storage/sqlite"
	"github.com/iudanet/pronostico/internal/server/users"
)

// RateLimit задает лимит для публичных write endpoints
type RateLimit struct {
	// TrustedProxies: адреса, которым доверяем X-Forwarded-For / X-Real-IP
	TrustedProxies []netip.Prefix
	Requests       int
	Burst          int
	Window         time.Duration
}

// Options собирает зависимости HTTP сервера
type Options struct {
	Logger    *slog.Logger
	Store     *sqlite.Storage
	Users     *users.Service
	Tokens    *jwt.Service
	Forecast  forecast.Provider
	Metrics   *metrics.Metrics
	Version   string
	RateLimit RateLimit
}

// Server - собранный HTTP handler API
type Server struct {
	handler http.Handler
	limiter *middleware.PathRateLimiter
}

// New регистрирует маршруты и оборачивает их в middleware
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := handlers.NewAuthHandler(logger, opts.Users, opts.Tokens, opts.Metrics)
	usersHandler := handlers.NewUsersHandler(logger, opts.Users, opts.Metrics)
	forecastHandler := handlers.NewForecastHandler(logger, opts.Forecast, opts.Store, opts.Metrics)
	healthHandler := handlers.NewHealthHandler(logger, opts.Store, opts.Version)

	bearer := middleware.AuthMiddleware(logger, opts.Tokens, opts.Users)
	protected := func(h http.HandlerFunc) http.Handler {
		return bearer(h)
	}

	mux := http.NewServeMux()

	// Публичные
	mux.HandleFunc("POST /token", authHandler.Token)
	mux.HandleFunc("POST /users/{$}", usersHandler.Create)
	mux.HandleFunc("GET /users/{$}", usersHandler.List)
	mux.HandleFunc("GET /users/{id}", usersHandler.Get)
	mux.HandleFunc("GET /health", healthHandler.Health)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	// Требуют bearer токен
	mux.Handle("POST /logout", protected(authHandler.Logout))
	mux.Handle("PATCH /users/{id}", protected(usersHandler.Update))
	mux.Handle("DELETE /users/{id}", protected(usersHandler.Delete))
	mux.Handle("DELETE /users/soft/{id}", protected(usersHandler.Deactivate))
	mux.Handle("GET /pronostico/{city}", protected(forecastHandler.Forecast))
	mux.Handle("GET /pronostico/{$}", protected(forecastHandler.History))

	var limiter *middleware.PathRateLimiter
	var handler http.Handler = mux
	if opts.RateLimit.Requests > 0 {
		rl := opts.RateLimit
		limiter = middleware.NewPathRateLimiter([]middleware.PathRateLimit{
			{Method: http.MethodPost, Path: "/token", Requests: rl.Requests, Burst: rl.Burst, Window: rl.Window},
			{Method: http.MethodPost, Path: "/users/", Requests: rl.Requests, Burst: rl.Burst, Window: rl.Window},
		}, nil, logger, middleware.WithTrustedProxies(rl.TrustedProxies))
		handler = limiter.Middleware(handler)
	}

	// Цепочка: recovery -> logging -> metrics -> rate limit -> mux
	if opts.Metrics != nil {
		handler = middleware.MetricsMiddleware(opts.Metrics)(handler)
	}
	handler = middleware.LoggingWithSkip(logger, []string{"/health", "/metrics"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return &Server{
		handler: handler,
		limiter: limiter,
	}
}

// Handler возвращает корневой http.Handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close останавливает фоновые горутины rate limiter
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
