package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Config configures the server.
type Config struct {
	// Listen is the TCP address to listen on.
	Listen string
	// RequestTimeout bounds each request. Zero disables the bound.
	RequestTimeout time.Duration
}

// Server serves the query API.
type Server struct {
	log  *zap.Logger
	cfg  Config
	echo *echo.Echo
}

// New builds a server answering from store.
func New(log *zap.Logger, store Store, cfg Config) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(recovery(log))
	e.Use(requestTimeout(cfg.RequestTimeout))

	NewHandler(store).RegisterRoutes(e.Group("/api"))

	return &Server{
		log:  log,
		cfg:  cfg,
		echo: e,
	}
}

// ServeHTTP serves a single request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return errs.Wrap(err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Portal running", zap.String("url", "http://"+listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errs.Wrap(err)
	}
	return nil
}
