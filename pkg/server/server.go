package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/addressform/pkg/addressform"
	"github.com/vango-dev/addressform/pkg/middleware"
	"github.com/vango-dev/addressform/pkg/render"
)

// Server serves the address form over HTTP and WebSocket.
type Server struct {
	config   *Config
	logger   *slog.Logger
	metrics  *middleware.Metrics
	formOpts []addressform.Option

	renderer *render.Renderer
	limiter  *limiter
	upgrader websocket.Upgrader
	openapi  []byte
	handler  http.Handler

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records request and form metrics and exposes them at
// Config.MetricsPath.
func WithMetrics(m *middleware.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithFormOptions adds options applied to every form instance, typically
// the submitter and message table.
func WithFormOptions(opts ...addressform.Option) Option {
	return func(s *Server) {
		s.formOpts = append(s.formOpts, opts...)
	}
}

// New creates a Server. Unset config fields take their defaults.
func New(config *Config, opts ...Option) (*Server, error) {
	s := &Server{
		config:   config.withDefaults(),
		logger:   slog.Default(),
		renderer: render.NewRenderer(render.RendererConfig{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	doc, err := buildOpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	s.openapi = doc

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.config.ReadBufferSize,
		WriteBufferSize: s.config.WriteBufferSize,
		CheckOrigin:     s.config.CheckOrigin,
	}

	trusted := newProxyMatcher(s.config.TrustedProxies, s.logger)
	if s.config.RateLimit > 0 {
		s.limiter = newLimiter(s.config.RateLimit, s.config.RateBurst, trusted)
		s.limiter.onReject = func(r *http.Request, ip string) {
			s.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			if s.metrics != nil {
				s.metrics.RateLimited()
			}
		}
	}

	s.handler = s.routes()
	return s, nil
}

// routes builds the chi router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recover(s.logger))
	if s.config.Tracing {
		r.Use(middleware.OpenTelemetry())
	}
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(middleware.Logger(s.logger))

	r.Get("/", s.handleIndex)
	r.Post("/reset", s.handleReset)
	r.Get("/ws", s.handleLive)
	r.Get("/openapi.json", s.handleOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Post("/submit", s.handleSubmit)
		r.Post("/validate", s.handleValidate)
	})

	if s.metrics != nil && s.config.MetricsPath != "" {
		r.Method(http.MethodGet, s.config.MetricsPath, s.metrics.Handler())
	}
	return r
}

// newForm creates the form instance for one request or connection.
func (s *Server) newForm() *addressform.Form {
	opts := make([]addressform.Option, 0, len(s.formOpts)+2)
	opts = append(opts, addressform.WithLogger(s.logger))
	if s.metrics != nil {
		opts = append(opts, addressform.WithObserver(s.metrics))
	}
	opts = append(opts, s.formOpts...)
	return addressform.New(opts...)
}

// Handler returns the router for mounting in another server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Config returns the effective configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Run listens on Config.Address and serves until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	if s.limiter != nil {
		sweepCtx, stop := context.WithCancel(ctx)
		defer stop()
		go s.limiter.run(sweepCtx, time.Minute)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
