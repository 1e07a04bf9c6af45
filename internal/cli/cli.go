// Package cli provides common CLI initialization utilities.
// This package consolidates the start-up sequence shared by cmd/mywallet
// and cmd/mywallet-worker: configuration, logging, backend and services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mywallet/internal/amqp"
	"mywallet/internal/backend"
	"mywallet/internal/cache"
	"mywallet/internal/config"
	applog "mywallet/internal/log"
	"mywallet/internal/services"
)

// cacheSweep is how often expired collection entries are dropped.
const cacheSweep = time.Minute

// LoadConfig loads the optional .env file, then the configuration, and
// validates it.
func LoadConfig(envFile, configFile string) (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from the configured level and sets
// it as the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	lc := applog.DefaultConfig()
	if cfg != nil {
		lc.Level = applog.ParseLevel(cfg.LogLevel)
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// App is a started backend with the services built on it.
type App struct {
	Config    *config.Config
	Logger    *applog.Logger
	Backend   *backend.BackendResult
	Services  *services.Services
	Caches    *cache.Manager
	Publisher *amqp.Client
}

type options struct {
	publish bool
	factory backend.Factory
}

type Option func(*options)

// WithEvents connects the AMQP publisher when AMQP_URL is set. A broker
// that cannot be reached is logged and the app runs without events.
func WithEvents() Option {
	return func(o *options) { o.publish = true }
}

// WithFactory replaces the backend factory.
func WithFactory(f backend.Factory) Option {
	return func(o *options) { o.factory = f }
}

// NewApp opens the configured backend and wires the services on top of it.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	}

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	be, err := o.factory.CreateBackend(ctx, bc)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: be,
		Caches:  cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger),
	}

	svcOpts := services.Options{
		CacheTTL: cfg.CacheTTL,
		Logger:   logger.WithComponent(applog.ComponentServices).Logger,
		Caches:   app.Caches,
	}
	if o.publish && cfg.AMQPURL != "" {
		pub, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			logger.WithComponent(applog.ComponentAMQP).Logger)
		if err != nil {
			logger.Warn("AMQP unavailable, transaction events disabled", applog.FieldError, err)
		} else {
			app.Publisher = pub
			svcOpts.Publisher = pub
		}
	}
	app.Services = services.New(be.Gateway, svcOpts)
	if cfg.CacheTTL > 0 {
		app.Caches.StartCleanup(cacheSweep)
	}
	return app, nil
}

// Close releases the publisher, the cache sweeper and the backend.
func (a *App) Close() error {
	var errs []error
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	a.Caches.Stop()
	errs = append(errs, a.Backend.Close())
	return errors.Join(errs...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
