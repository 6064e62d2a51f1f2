package hello

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/aretw0/hello/internal/logging"
	"github.com/aretw0/hello/internal/presentation/tui"
	httpAdapter "github.com/aretw0/hello/pkg/adapters/http"
	"github.com/aretw0/hello/pkg/adapters/memory"
	"github.com/aretw0/hello/pkg/adapters/redis"
	"github.com/aretw0/hello/pkg/config"
	"github.com/aretw0/hello/pkg/observability"
	"github.com/aretw0/hello/pkg/ports"
)

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/aretw0/hello.Version=...".
var Version = "dev"

// csrfKeyName is the KeyStore entry holding the CSRF signing key.
const csrfKeyName = "csrf"

// App is the configured web application: one router, its CSRF middleware
// and the server that runs them.
type App struct {
	cfg     config.Config
	logger  *slog.Logger
	keys    ports.KeyStore
	metrics *observability.Metrics
	handler http.Handler
	banner  io.Writer
	closers []io.Closer
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithKeyStore injects the store the CSRF key is loaded from, bypassing the
// store selected by the configuration.
func WithKeyStore(ks ports.KeyStore) Option {
	return func(a *App) {
		a.keys = ks
	}
}

// WithBanner sets where the startup banner is written (default: Stdout).
func WithBanner(w io.Writer) Option {
	return func(a *App) {
		a.banner = w
	}
}

// New builds the application described by cfg. It resolves the CSRF key,
// which may contact Redis, hence the context.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		banner: os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		level, _ := logging.ParseLevel(cfg.Log.Level)
		a.logger = logging.New(level, cfg.Log.Format)
	}

	csrfCfg := httpAdapter.CSRFConfig{
		Enabled:        cfg.CSRF.Enabled,
		FieldName:      cfg.CSRF.FieldName,
		HeaderName:     cfg.CSRF.HeaderName,
		CookieName:     cfg.CSRF.CookieName,
		MaxAge:         cfg.CSRF.MaxAge,
		Secure:         cfg.CSRF.Secure,
		TrustedOrigins: cfg.CSRF.TrimmedOrigins(),
	}
	if cfg.CSRF.Enabled {
		key, err := a.csrfKey(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		csrfCfg.Key = key
	}

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(a.logger),
		httpAdapter.WithCSRF(csrfCfg),
	}
	if cfg.Metrics.Addr != "" {
		a.metrics = observability.NewMetrics()
		handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(a.metrics))
	}

	handler, err := httpAdapter.NewHandler(handlerOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.handler = handler

	return a, nil
}

func (a *App) csrfKey(ctx context.Context) ([]byte, error) {
	if a.cfg.CSRF.Secret != "" {
		return httpAdapter.DeriveKey(a.cfg.CSRF.Secret), nil
	}

	if a.keys == nil {
		if a.cfg.Redis.Addr != "" {
			store := redis.New(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB,
				redis.WithPrefix(a.cfg.Redis.Prefix))
			a.closers = append(a.closers, store)
			if err := store.Ping(ctx); err != nil {
				return nil, err
			}
			a.keys = store
			a.logger.Info("Using shared CSRF key store", "redis", a.cfg.Redis.Addr)
		} else {
			a.keys = memory.NewKeyStore()
			a.logger.Debug("Using process-local CSRF key; tokens do not survive restarts")
		}
	}

	key, err := a.keys.LoadOrCreate(ctx, csrfKeyName, httpAdapter.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load csrf key: %w", err)
	}
	return key, nil
}

// Handler returns the application router.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Addr returns the configured listen address.
func (a *App) Addr() string {
	return a.cfg.Addr()
}

// Run listens on the configured address and serves until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully
// within the configured shutdown timeout. It closes ln and the App.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.Close()

	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
	}
	servers := []*http.Server{srv}

	// Channel to listen for errors coming from the listeners.
	serverErrors := make(chan error, 2)

	metricsAddr := ""
	if a.metrics != nil {
		mln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("failed to listen on metrics address %s: %w", a.cfg.Metrics.Addr, err)
		}
		metricsAddr = mln.Addr().String()

		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		msrv := &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		}
		servers = append(servers, msrv)
		go func() {
			serverErrors <- msrv.Serve(mln)
		}()
	}

	tui.PrintBanner(a.banner, tui.BannerInfo{
		Name:        "hello",
		Version:     Version,
		Addr:        ln.Addr().String(),
		CSRF:        a.cfg.CSRF.Enabled,
		MetricsAddr: metricsAddr,
	})
	a.logger.Info("Starting server", "addr", ln.Addr().String(), "version", Version)

	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		a.shutdown(servers)
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.logger.Info("Start shutdown", "cause", context.Cause(ctx))
		a.shutdown(servers)
		a.logger.Info("Server stopped gracefully")
		return nil
	}
}

func (a *App) shutdown(servers []*http.Server) {
	timeout := a.cfg.Server.ShutdownTimeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, srv := range servers {
		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("Graceful shutdown did not complete", "timeout", timeout, "error", err)
			if err := srv.Close(); err != nil {
				a.logger.Error("Error killing server", "error", err)
			}
		}
	}
}

// Close releases backend connections. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
