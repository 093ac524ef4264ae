// Package ops serves operational HTTP endpoints of the relay: liveness and Prometheus metrics.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// connectionCounter reports currently connected relay clients
type connectionCounter interface {
	Len() int
}

type Server struct {
	echo      *echo.Echo
	addr      string
	clients   connectionCounter
	clock     clockwork.Clock
	startTime time.Time
}

func NewServer(addr string, clients connectionCounter, clock clockwork.Clock) (*Server, error) {
	if clients == nil {
		return nil, errors.New("ops.NewServer: connection counter is nil")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		addr:      addr,
		clients:   clients,
		clock:     clock,
		startTime: clock.Now(),
	}
	srv.registerRoutes()
	return srv, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"uptime":      s.clock.Since(s.startTime).Seconds(),
		"connections": s.clients.Len(),
	})
}

// Start blocks serving HTTP until Shutdown; it returns nil after a graceful shutdown.
func (s *Server) Start() error {
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
