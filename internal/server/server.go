// Package server hosts the HTTP transport for mcpd.
//
// The host wraps an Echo router around the streamable MCP handler and adds
// the operational routes: GET /health for liveness, GET /metrics for
// Prometheus scrapes. Shutdown is context driven with a configurable
// timeout.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/mcpd/internal/config"
	"github.com/fyrsmithlabs/mcpd/internal/logging"
)

// Server is the HTTP host for the streamable MCP endpoint.
type Server struct {
	cfg     config.HTTPConfig
	service string
	logger  *logging.Logger
	echo    *echo.Echo
}

// HealthResponse is the JSON response for the /health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// New creates the HTTP host with the MCP handler mounted at /mcp.
//
// Routes:
//   - GET /health  liveness probe
//   - GET /metrics Prometheus metrics
//   - ANY /mcp     streamable MCP transport
//
// When cfg.RateLimit is positive, requests are rate limited per client IP.
func New(cfg config.HTTPConfig, service string, mcpHandler http.Handler, logger *logging.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug(c.Request().Context(), "http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	s := &Server{
		cfg:     cfg,
		service: service,
		logger:  logger,
		echo:    e,
	}

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Any("/mcp", echo.WrapHandler(mcpHandler))

	return s
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.service,
	})
}

// Start starts the HTTP server and blocks until the context is canceled.
//
// When the context is canceled the server shuts down gracefully within
// the configured timeout. Returns http.ErrServerClosed on graceful
// shutdown, any other error on startup or shutdown failure.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.echo.Start(s.cfg.Addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info(shutdownCtx, "shutting down http server")
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		return http.ErrServerClosed
	}
}

// Echo returns the underlying Echo instance for registering additional
// routes.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
