// Package apiserver assembles the JSON API router and HTTP server.
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/pantrypairing/server/internal/infrastructure/config"
	"github.com/pantrypairing/server/internal/infrastructure/http/handlers"
	"github.com/pantrypairing/server/internal/infrastructure/http/middleware"
	"github.com/pantrypairing/server/internal/infrastructure/monitoring"
	"github.com/pantrypairing/server/pkg/healthcheck"
)

// Options carries the collaborators the router mounts.
type Options struct {
	Config   *config.Config
	Handlers *handlers.Handlers
	Tokens   middleware.TokenValidator
	Health   *healthcheck.HealthCheck
	Metrics  *monitoring.Metrics
	Tracing  bool
}

// Server is the pantry pairing API server.
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  chi.Router
	limiter *middleware.KeyedRateLimiter
	openAPI *OpenAPIHandler
}

// NewServer builds the router and the underlying http.Server.
func NewServer(opts Options, logger *zap.Logger) *Server {
	cfg := opts.Config
	s := &Server{
		config:  cfg,
		logger:  logger.Named("http"),
		openAPI: NewOpenAPIHandler(logger),
	}
	if cfg.RateLimit.Enable {
		s.limiter = middleware.NewKeyedRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	s.router = s.setupRoutes(opts)

	var handler http.Handler = s.router
	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, "pantrypairing",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
	if cfg.Server.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{IdleTimeout: cfg.Server.IdleTimeout})
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	return s
}

// setupRoutes configures the global middleware, operational endpoints and
// API v1 routes.
func (s *Server) setupRoutes(opts Options) chi.Router {
	cfg := opts.Config
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if opts.Metrics != nil && cfg.Monitoring.EnableMetrics {
		r.Use(opts.Metrics.HTTPMiddleware)
	}
	r.Use(middleware.Security())
	if cfg.Server.EnableCORS {
		r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	}
	r.Use(timeoutUnlessUpgrade(cfg.Server.RequestTimeout))
	if cfg.Server.EnableCompression {
		r.Use(middleware.Compress(5))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondNotFound(w, req, s.logger)
	})

	if opts.Health != nil {
		r.Get("/health", opts.Health.Handler())
		r.Get("/health/live", opts.Health.LivenessHandler())
		r.Get("/health/ready", opts.Health.ReadinessHandler())
	}
	if opts.Metrics != nil && cfg.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/api/v1/openapi.yaml", s.openAPI.ServeOpenAPISpec)
	r.Get("/api/v1/docs", s.openAPI.ServeSwaggerUI)

	aiLimit := func(next http.Handler) http.Handler { return next }
	if s.limiter != nil {
		aiLimit = middleware.RateLimit(s.limiter, s.logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		opts.Handlers.Register(r, middleware.Authenticate(opts.Tokens, s.logger), aiLimit)
	})

	return r
}

// timeoutUnlessUpgrade applies chi's Timeout to everything but WebSocket
// upgrades, whose connections outlive any request deadline.
func timeoutUnlessUpgrade(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	timeout := chimiddleware.Timeout(d)
	return func(next http.Handler) http.Handler {
		timed := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}

// Handler returns the root handler, including h2c and tracing wrappers.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens in the background. Listen errors are returned synchronously.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}

	if s.limiter != nil {
		go s.limiter.Run(s.config.RateLimit.CleanupInterval)
	}

	s.logger.Info("Starting API server",
		zap.String("address", ln.Addr().String()),
		zap.Bool("h2c", s.config.Server.EnableH2C),
	)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}
