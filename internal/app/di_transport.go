package app

import (
	"context"
	"log/slog"

	"github.com/allisson/warden/internal/database"
	"github.com/allisson/warden/internal/http"
	"github.com/allisson/warden/internal/metrics"
	"github.com/allisson/warden/internal/registry"
)

// HTTPServer returns the API server.
func (c *Container) HTTPServer() (*http.Server, error) {
	return registry.ResolveAs[*http.Server](c.registry, TokenHTTPServer)
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	return registry.ResolveAs[*http.MetricsServer](c.registry, TokenMetricsServer)
}

// bindTransport binds the API and metrics servers.
func (c *Container) bindTransport() {
	c.registry.MustBind(TokenHTTPServer, c.newHTTPServer, registry.Singleton)

	if c.config.MetricsEnabled {
		c.registry.MustBind(TokenMetricsServer, func(r registry.Resolver) (any, error) {
			logger, err := registry.ResolveAs[*slog.Logger](r, TokenLogger)
			if err != nil {
				return nil, err
			}
			provider, err := registry.ResolveAs[*metrics.Provider](r, TokenMetricsProvider)
			if err != nil {
				return nil, err
			}

			server, err := http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, provider, logger)
			if err != nil {
				return nil, err
			}
			c.onShutdown("metrics server", server.Shutdown)
			return server, nil
		}, registry.Singleton)
	}
}

func (c *Container) newHTTPServer(r registry.Resolver) (any, error) {
	logger, err := registry.ResolveAs[*slog.Logger](r, TokenLogger)
	if err != nil {
		return nil, err
	}
	manager, err := registry.ResolveAs[*database.Manager](r, TokenDatabaseManager)
	if err != nil {
		return nil, err
	}

	opts := http.RouterOptions{
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
	}
	if c.config.MetricsEnabled {
		provider, err := registry.ResolveAs[*metrics.Provider](r, TokenMetricsProvider)
		if err != nil {
			return nil, err
		}
		opts.MeterProvider = provider.MeterProvider()
		opts.MetricsNamespace = c.config.MetricsNamespace
	}

	server := http.NewServer(
		manager,
		c.config.ServerHost,
		c.config.ServerPort,
		c.config.ServiceName,
		logger,
	)

	// The verifier and the handler are resolved per request so that rebinding them takes
	// effect without rebuilding the router.
	server.SetupRouter(c.ctx, c.PrincipalVerifier, c.PrincipalHandler, opts)

	c.onShutdown("http server", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	return server, nil
}
