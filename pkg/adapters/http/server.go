package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/hello/internal/logging"
	"github.com/aretw0/hello/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Greeting is the body served on the root path.
const Greeting = "Hello World!"

// Option defines a functional option for configuring the handler.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	csrf    CSRFConfig
	routes  []func(chi.Router)
}

// WithLogger sets the structured logger used for request logs and CSRF failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records request metrics into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithCSRF configures the anti-forgery middleware.
func WithCSRF(cfg CSRFConfig) Option {
	return func(o *options) {
		o.csrf = cfg
	}
}

// WithRoutes registers additional routes next to the root route.
// They share its middleware, CSRF protection included.
func WithRoutes(fn func(r chi.Router)) Option {
	return func(o *options) {
		o.routes = append(o.routes, fn)
	}
}

// NewHandler creates the application router.
func NewHandler(opts ...Option) (http.Handler, error) {
	o := &options{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	protect, err := NewCSRF(o.csrf, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure csrf: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(o.logger))
	if o.metrics != nil {
		r.Use(o.metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	// CSRF only runs for matched routes; unknown paths and methods are
	// answered by the router first.
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Get("/", Index)
		r.Options("/", Options)
		for _, fn := range o.routes {
			fn(r)
		}
	})

	return r, nil
}

// indexMethods lists what the root route answers to.
const indexMethods = "GET, HEAD, OPTIONS"

// Index handles GET /.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, Greeting)
}

// Options answers OPTIONS / with the allowed methods and no body.
func Options(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", indexMethods)
	w.WriteHeader(http.StatusOK)
}
