// Package app provides the composition root: it binds every capability of the application
// in a registry and owns the startup and shutdown of the resources behind them.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/warden/internal/config"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
	"github.com/allisson/warden/internal/registry"
)

// Capability tokens bound by the container.
var (
	TokenConfig              = registry.NewToken("config")
	TokenLogger              = registry.NewToken("logger")
	TokenDatabaseManager     = registry.NewToken("database_manager")
	TokenTxManager           = registry.NewToken("tx_manager")
	TokenMetricsProvider     = registry.NewToken("metrics_provider")
	TokenBusinessMetrics     = registry.NewToken("business_metrics")
	TokenPrincipalRepository = registry.NewToken("principal_repository")
	TokenIdentityProvider    = registry.NewToken("identity_provider")
	TokenPrincipalVerifier   = registry.NewToken("principal_verifier")
	TokenProfileUseCase      = registry.NewToken("profile_usecase")
	TokenPrincipalHandler    = registry.NewToken("principal_handler")
	TokenHTTPServer          = registry.NewToken("http_server")
	TokenMetricsServer       = registry.NewToken("metrics_server")
)

// Option customizes a Container.
type Option func(*Container)

// WithLogWriter sends log output to w instead of stdout.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithDatabaseOpener replaces the function the database manager opens connections with.
func WithDatabaseOpener(open database.Opener) Option {
	return func(c *Container) {
		c.dbOpener = open
	}
}

// shutdownHook releases one resource created by a factory.
type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

// Container holds the registry and the resources created through it.
// Components are created on first resolution.
type Container struct {
	config   *config.Config
	registry *registry.Registry

	logWriter io.Writer
	dbOpener  database.Opener

	// ctx bounds background work of resolved components and is cancelled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	hooks []shutdownHook
}

// NewContainer creates a container with every capability bound. Nothing is constructed
// and no I/O happens until a capability is resolved or Start is called.
func NewContainer(cfg *config.Config, opts ...Option) *Container {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Container{
		config:    cfg,
		registry:  registry.New(),
		logWriter: os.Stdout,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.bindInfrastructure()
	c.bindIdentity()
	c.bindTransport()

	return c
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Registry exposes the registry, e.g. to rebind a capability in tests.
func (c *Container) Registry() *registry.Registry {
	return c.registry
}

// Logger returns the application logger.
func (c *Container) Logger() *slog.Logger {
	logger, err := registry.ResolveAs[*slog.Logger](c.registry, TokenLogger)
	if err != nil {
		return slog.Default()
	}
	return logger
}

// DatabaseManager returns the storage lifecycle manager.
func (c *Container) DatabaseManager() (*database.Manager, error) {
	return registry.ResolveAs[*database.Manager](c.registry, TokenDatabaseManager)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return registry.ResolveAs[database.TxManager](c.registry, TokenTxManager)
}

// Start connects the storage. It must be called once before serving requests that need
// storage. A connect failure is returned as is and leaves the manager in the failed state.
func (c *Container) Start(ctx context.Context) error {
	manager, err := c.DatabaseManager()
	if err != nil {
		return fmt.Errorf("failed to resolve database manager: %w", err)
	}
	return manager.Connect(ctx)
}

// Shutdown releases every resource created so far, in reverse creation order, and joins
// the errors of all of them.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", hooks[i].name, err))
		}
	}

	c.cancel()

	return apperrors.Join(errs...)
}

// onShutdown registers fn to run during Shutdown.
func (c *Container) onShutdown(name string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks = append(c.hooks, shutdownHook{name: name, fn: fn})
}

// bindInfrastructure binds configuration, logging, storage and metrics.
func (c *Container) bindInfrastructure() {
	c.registry.MustBind(TokenConfig, func(registry.Resolver) (any, error) {
		return c.config, nil
	}, registry.Singleton)

	c.registry.MustBind(TokenLogger, func(registry.Resolver) (any, error) {
		return newLogger(c.config.LogLevel, c.logWriter), nil
	}, registry.Singleton)

	c.registry.MustBind(TokenDatabaseManager, c.newDatabaseManager, registry.Singleton)

	c.registry.MustBind(TokenTxManager, func(r registry.Resolver) (any, error) {
		manager, err := registry.ResolveAs[*database.Manager](r, TokenDatabaseManager)
		if err != nil {
			return nil, err
		}
		return database.NewTxManager(manager), nil
	}, registry.Singleton)

	c.bindMetrics()
}

func (c *Container) newDatabaseManager(r registry.Resolver) (any, error) {
	logger, err := registry.ResolveAs[*slog.Logger](r, TokenLogger)
	if err != nil {
		return nil, err
	}

	var opts []database.Option
	if c.dbOpener != nil {
		opts = append(opts, database.WithOpener(c.dbOpener))
	}

	manager := database.NewManager(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		ConnectTimeout:     c.config.DBConnectTimeout,
	}, logger, opts...)

	c.onShutdown("database", func(ctx context.Context) error {
		if manager.State() != database.StateReady {
			return nil
		}
		return manager.Disconnect(ctx)
	})

	return manager, nil
}

// newLogger creates a JSON logger writing to w at the given level.
func newLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}
