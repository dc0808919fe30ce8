package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/tokengate/health"
	"github.com/jonwraymond/tokengate/observe"
)

// ServerConfig configures the gateway HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string

	// AdminAddr, when set, moves the health and metrics endpoints off Addr
	// onto their own listener, leaving only CheckPath on Addr.
	AdminAddr string

	// CheckPath is where Check is mounted. Default: "/auth"
	CheckPath string

	// Check is the check endpoint handler. Required.
	Check http.Handler

	// Health backs /healthz, /readyz and /health. Default: empty aggregator.
	Health *health.Aggregator

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	// Logger records lifecycle events. Default: no-op.
	Logger observe.Logger

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration
}

// Server is the gateway HTTP server.
type Server struct {
	cfg   ServerConfig
	mux   *http.ServeMux
	admin *http.ServeMux
	http  *http.Server

	// adminHTTP is nil unless AdminAddr is set.
	adminHTTP *http.Server
}

// NewServer assembles the routes.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Check == nil {
		return nil, ErrNoHandler
	}
	if cfg.CheckPath == "" {
		cfg.CheckPath = "/auth"
	}
	if cfg.Health == nil {
		cfg.Health = health.NewAggregator()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{cfg: cfg, mux: http.NewServeMux()}
	s.mux.Handle(cfg.CheckPath, cfg.Check)
	s.admin = s.mux
	if cfg.AdminAddr != "" {
		s.admin = http.NewServeMux()
		s.adminHTTP = newHTTPServer(cfg.AdminAddr, s.admin)
	}
	health.RegisterHandlers(s.admin, cfg.Health)
	if cfg.Metrics != nil {
		s.admin.Handle("GET /metrics", cfg.Metrics)
	}
	s.http = newHTTPServer(cfg.Addr, s.mux)
	return s, nil
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}

// Handler returns the handler served on Addr.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// AdminHandler returns the handler carrying health and metrics. Without
// AdminAddr it is the same as Handler.
func (s *Server) AdminHandler() http.Handler {
	return s.admin
}

// Run listens on Addr, and on AdminAddr when set, and serves until ctx is
// done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("gateway: listen: %w", err)
	}
	var admin net.Listener
	if s.adminHTTP != nil {
		admin, err = net.Listen("tcp", s.cfg.AdminAddr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("gateway: listen admin: %w", err)
		}
	}
	return s.Serve(ctx, ln, admin)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// ShutdownTimeout. A clean shutdown returns nil. When AdminAddr is set,
// admin carries the health and metrics endpoints and is required;
// otherwise admin is ignored and may be nil.
func (s *Server) Serve(ctx context.Context, ln, admin net.Listener) error {
	if s.adminHTTP != nil && admin == nil {
		return ErrNoAdminListener
	}

	g, gctx := errgroup.WithContext(ctx)
	serve := func(name string, srv *http.Server, l net.Listener) {
		g.Go(func() error {
			s.cfg.Logger.Info(gctx, "gateway listening",
				observe.F("listener", name),
				observe.F("addr", l.Addr().String()),
			)
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("gateway: serve %s: %w", name, err)
			}
			return nil
		})
	}
	serve("check", s.http, ln)
	if s.adminHTTP != nil {
		serve("admin", s.adminHTTP, admin)
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.cfg.Logger.Info(shutdownCtx, "gateway shutting down")
		var errs []error
		for _, srv := range []*http.Server{s.http, s.adminHTTP} {
			if srv == nil {
				continue
			}
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("gateway: shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
