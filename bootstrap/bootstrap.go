// Package bootstrap wires configuration, storage, auth, rendering and the
// dispatch registry into a runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/PatrickOgilvie/honertia/adapters/auth"
	"github.com/PatrickOgilvie/honertia/adapters/metrics"
	"github.com/PatrickOgilvie/honertia/adapters/render"
	"github.com/PatrickOgilvie/honertia/adapters/sqlite"
	"github.com/PatrickOgilvie/honertia/config"
	"github.com/PatrickOgilvie/honertia/core/capability"
	"github.com/PatrickOgilvie/honertia/core/dispatch"
)

// Options configures application construction.
type Options struct {
	// ConfigPath is the YAML configuration file. A missing file falls back
	// to environment variables.
	ConfigPath string

	// Routes registers the application's routes on the dispatch registry.
	Routes func(reg *dispatch.Registry)

	// AppProviders are app-wide capability providers, merged last into
	// every request's capability set.
	AppProviders []capability.Entry
}

// App is the assembled application.
type App struct {
	Logger   zerolog.Logger
	Config   *config.Config
	Registry *dispatch.Registry
	Metrics  *metrics.Collector

	store      *sqlite.Store
	holder     *config.Holder
	httpServer *http.Server
}

// New builds the application: loads configuration, opens the store, wires
// the dispatch registry, and registers routes.
func New(opts Options) (*App, error) {
	cfg, err := config.LoadWithFallback(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Logging)

	var holder *config.Holder
	if opts.ConfigPath != "" {
		if _, statErr := os.Stat(opts.ConfigPath); statErr == nil {
			holder, err = config.NewHolder(opts.ConfigPath, logger)
			if err != nil {
				return nil, err
			}
			cfg = holder.Get()
		}
	}

	a := &App{
		Logger: logger,
		Config: cfg,
		holder: holder,
	}

	schemaMap := cfg.SchemaMap()

	dispatchCfg := dispatch.Config{
		Schema:       schemaMap,
		AppProviders: opts.AppProviders,
		Logger:       logger,
	}

	if cfg.Database.Path != "" {
		store, err := sqlite.Open(cfg.Database.Path, schemaMap)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := store.CreateTables(context.Background()); err != nil {
			store.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
		a.store = store
		dispatchCfg.Querier = store
		dispatchCfg.Database = store.DB()
		logger.Info().Str("path", cfg.Database.Path).Msg("database opened")
	}

	if cfg.Auth.JWTSecret != "" {
		dispatchCfg.Auth = auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Expiration)
		logger.Info().Msg("session auth enabled")
	}

	if cfg.Templates.Dir != "" {
		templates, err := render.ParseTemplates(os.DirFS(cfg.Templates.Dir))
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		dispatchCfg.Renderer = func(w http.ResponseWriter) capability.Renderer {
			return templates.For(w)
		}
		logger.Info().Str("dir", cfg.Templates.Dir).Msg("page templates loaded")
	}

	dispatchCfg.Responder = func(w http.ResponseWriter, r *http.Request) capability.Responder {
		return render.NewResponder(w, r)
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		dispatchCfg.Metrics = a.Metrics
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	a.Registry = dispatch.New(dispatchCfg)

	if opts.Routes != nil {
		opts.Routes(a.Registry)
	}
	logger.Info().Int("count", len(a.Registry.Routes())).Msg("routes registered")

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      a.handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// handler mounts the dispatch registry plus the metrics endpoint.
func (a *App) handler() http.Handler {
	if a.Metrics == nil {
		return a.Registry.Handler()
	}

	mux := http.NewServeMux()
	mux.Handle(a.Config.Metrics.Path, promhttp.Handler())
	mux.Handle("/", a.Registry.Handler())
	return mux
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.holder != nil {
		if err := a.holder.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watching unavailable")
		}
		a.holder.WatchSignals()
		a.holder.OnChange(func(cfg *config.Config) {
			applyLogLevel(cfg.Logging.Level)
		})
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.httpServer.Addr).Msg("starting http server")
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	applyLogLevel(cfg.Level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func applyLogLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
