package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/config"
)

// Server wraps the Echo instance with lifecycle management.
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer builds the HTTP server with middleware, error handling and
// routes.
func NewServer(cfg config.ServerConfig, h *Handler, hub *WSHub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			// Probes and the push channel would flood the log
			return path == "/health" || strings.HasPrefix(path, "/api/ws")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		}))
	}

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	RegisterRoutes(e, h, hub)

	return &Server{
		echo: e,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

// Echo exposes the underlying instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start runs the server. It blocks until Shutdown or a listen error.
func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("HTTP server listening")

	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains connections gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("HTTP server shutting down")
	return s.echo.Shutdown(ctx)
}
