// Package api exposes a Service over HTTP.
//
// Routes:
//
//	POST /api/v1/associate    expand a keyword
//	GET  /api/v1/model/info   describe the loaded model
//	GET  /api/v1/health       readiness probe
//	GET  /                    banner
//	GET  /metrics             Prometheus metrics
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/poiesic/rensou"
	"github.com/poiesic/rensou/core"
)

// Service is the part of rensou.Service the API needs.
type Service interface {
	Expand(ctx context.Context, keyword string, depth int, threshold float64) (*core.ExpansionResult, error)
	ModelInfo() core.ModelInfo
	Ready() bool
}

var _ Service = (*rensou.Service)(nil)

// Server routes HTTP requests to a Service.
type Server struct {
	svc            Service
	metrics        *Metrics
	validate       *validator.Validate
	allowedOrigins []string
	version        string
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithMetrics sets the collectors. Default is a fresh Metrics in the
// "rensou" namespace.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) error {
		if m == nil {
			return errors.New("metrics cannot be nil")
		}
		s.metrics = m
		return nil
	}
}

// WithAllowedOrigins restricts CORS origins. Default allows all.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) error {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a Server for svc.
func New(svc Service, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}
	s := &Server{
		svc:            svc,
		validate:       newValidator(),
		allowedOrigins: []string{"*"},
		version:        rensou.Version,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.metrics == nil {
		s.metrics = NewMetrics("rensou")
	}
	s.logger = s.logger.With("component", "api")
	return s, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(instrument(s.metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/", s.banner)
	router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/associate", s.associate)
		r.Get("/model/info", s.modelInfo)
		r.Get("/health", s.health)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, CodeInvalidParameter, "no such endpoint")
	})
	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
