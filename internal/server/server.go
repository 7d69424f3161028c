package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const shutdownGrace = 10 * time.Second

// ServerConfig holds configuration for the quote API
type ServerConfig struct {
	Addr      string  // e.g. ":8090"
	DevMode   bool    // include error details in responses
	APIKey    string  // required in X-API-Key when set
	RateLimit float64 // per-IP requests/second on chain-reading routes, 0 disables
	RateBurst int
}

// ServerDeps contains dependencies required to create a new Server
type ServerDeps struct {
	Handlers *Handlers
	Config   ServerConfig
}

// Server is the quote API. Shutdown may be called more than once.
type Server struct {
	e        *echo.Echo
	cfg      ServerConfig
	stopOnce sync.Once
	stopErr  error
	closed   chan struct{}
}

// NewServer wires the quote handlers into an echo instance
func NewServer(deps ServerDeps) (*Server, error) {
	h := deps.Handlers
	if h == nil || h.Quoter == nil || h.Pools == nil {
		return nil, errors.New("server: handlers need a quoter and a reserves source")
	}
	if h.Logger == nil {
		h.Logger = logrus.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(h.Logger))

	// a quote may wait the full upstream timeout before writing
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = upstreamTimeout(h.Timeout) + 15*time.Second
	e.Server.IdleTimeout = 60 * time.Second

	RegisterRoutes(e, h, deps.Config)

	return &Server{e: e, cfg: deps.Config, closed: make(chan struct{})}, nil
}

// Start serves until Shutdown; it then returns http.ErrServerClosed
func (s *Server) Start() error {
	return s.e.Start(s.cfg.Addr)
}

// Shutdown drains in-flight quotes for up to shutdownGrace
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		defer close(s.closed)
		ctx, cancel := context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
		s.stopErr = s.e.Shutdown(ctx)
	})
	return s.stopErr
}

// WaitClosed blocks until Shutdown has finished or ctx is done
func (s *Server) WaitClosed(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return nil
	}
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.e
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			if v.Status >= http.StatusInternalServerError {
				entry.Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	})
}
