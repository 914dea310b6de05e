// Package http serves the wiki pages and JSON API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/rmwiki/internal/logging"
	"github.com/fyrsmithlabs/rmwiki/internal/store"
	"github.com/fyrsmithlabs/rmwiki/internal/telemetry"
	"github.com/fyrsmithlabs/rmwiki/internal/wiki"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/rmwiki/internal/http"

// Server provides the wiki's HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	loader  *wiki.Loader
	stores  *store.Stores
	logger  *logging.Logger
	config  *Config
	metrics *HTTPMetrics
	tracer  trace.Tracer
	health  func() telemetry.HealthStatus
	service string
	version string

	unsubscribe func()
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Option customizes a Server.
type Option func(*Server)

// WithHTTPMetrics records OTel request metrics.
func WithHTTPMetrics(m *HTTPMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for inbound request spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithTelemetryHealth reports telemetry status on /health.
func WithTelemetryHealth(fn func() telemetry.HealthStatus) Option {
	return func(s *Server) {
		s.health = fn
	}
}

// WithBuildInfo sets the service name and version reported on /health.
func WithBuildInfo(service, version string) Option {
	return func(s *Server) {
		s.service = service
		s.version = version
	}
}

// NewServer creates a new HTTP server.
func NewServer(loader *wiki.Loader, stores *store.Stores, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if stores == nil {
		return nil, fmt.Errorf("stores cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:            "localhost",
			Port:            9090,
			ShutdownTimeout: 10 * time.Second,
		}
	}

	v, err := newViews()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = v

	s := &Server{
		echo:    e,
		loader:  loader,
		stores:  stores,
		logger:  logger.Named("http"),
		config:  cfg,
		tracer:  otel.Tracer(instrumentationName),
		service: "rmwiki",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = stores.UI.Subscribe(s.logLoading)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	if s.metrics != nil {
		e.Use(s.metrics.MetricsMiddleware())
	}
	e.Use(s.requestContext())

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Pages
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/characters", s.handleCharactersPage)
	s.echo.GET("/characters/:id", s.handleCharacterPage)
	s.echo.GET("/favourites", s.handleFavouritesPage)
	s.echo.POST("/favourites/:id", s.handleAddFavouriteForm)
	s.echo.POST("/favourites/:id/delete", s.handleRemoveFavouriteForm)
	s.echo.GET("/creativity-zone", s.handleCreativityZone)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.GET("/characters", s.handleAPICharacters)
	v1.GET("/characters/:id", s.handleAPICharacter)
	v1.GET("/ui", s.handleAPIUI)
	v1.GET("/favourites", s.handleAPIFavourites)
	v1.PUT("/favourites/:id", s.handleAPIAddFavourite)
	v1.DELETE("/favourites/:id", s.handleAPIRemoveFavourite)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{
		Status:  "ok",
		Service: s.service,
		Version: s.version,
	}
	if s.health != nil {
		h := s.health()
		resp.Telemetry = &h
	}
	return c.JSON(http.StatusOK, resp)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout. It returns http.ErrServerClosed after a clean
// shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Addr()
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "starting http server", zap.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	s.unsubscribe()
	return s.echo.Shutdown(ctx)
}

// logLoading traces loading transitions of the shared UI store.
func (s *Server) logLoading(ui store.UIState) {
	s.logger.Debug(context.Background(), "loading changed",
		zap.Bool("loading", ui.IsLoading()),
		zap.Int("in_flight", ui.InFlight),
	)
}
