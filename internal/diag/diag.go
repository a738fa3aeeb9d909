// Package diag serves a small read-only HTTP surface for a running bot: liveness, the
// session status, the most recent protocol messages and Prometheus metrics.
package diag

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nfrund/tankbot/internal/bot"
	"github.com/nfrund/tankbot/internal/logging"
	"github.com/nfrund/tankbot/internal/msglog"
)

const (
	defaultTail = 50
	maxTail     = 1000

	// defaultMessagesRate is per client and per second.
	defaultMessagesRate = 20
)

// StatusProvider reports the state of the current session.
type StatusProvider interface {
	Status() bot.Status
}

// MessageTail returns the most recent log entries.
type MessageTail interface {
	Tail(n int) []msglog.Entry
}

// Options holds the sources the server reads from. Nil sources answer 404.
type Options struct {
	Status   StatusProvider
	Messages MessageTail
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// MessagesRate limits /messages requests per client and second. Zero means 20.
	MessagesRate float64
}

// Server is the diagnostics HTTP server.
type Server struct {
	e      *echo.Echo
	opts   Options
	logger *slog.Logger
}

// New builds the server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	s := &Server{e: e, opts: opts, logger: logger}
	e.GET("/healthz", s.health)
	e.GET("/status", s.status)
	messagesRate := opts.MessagesRate
	if messagesRate <= 0 {
		messagesRate = defaultMessagesRate
	}
	e.GET("/messages", s.messages, rateLimiter(messagesRate))
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.e.Listener = ln
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.e.Start("")
	}()
	s.logger.Info("Diagnostics server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(c echo.Context) error {
	if s.opts.Status == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no session")
	}
	return c.JSON(http.StatusOK, s.opts.Status.Status())
}

func (s *Server) messages(c echo.Context) error {
	if s.opts.Messages == nil {
		return echo.NewHTTPError(http.StatusNotFound, "message log disabled")
	}
	n := defaultTail
	if q := c.QueryParam("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 {
			logging.FromContext(c.Request().Context()).Debug("Bad tail size", "n", q)
			return echo.NewHTTPError(http.StatusBadRequest, "n must be a non-negative integer")
		}
		n = min(v, maxTail)
	}
	entries := s.opts.Messages.Tail(n)
	if entries == nil {
		entries = []msglog.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}
