package app

import (
	"context"

	"github.com/allisson/warden/internal/metrics"
	"github.com/allisson/warden/internal/registry"
)

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	return registry.ResolveAs[*metrics.Provider](c.registry, TokenMetricsProvider)
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return registry.ResolveAs[metrics.BusinessMetrics](c.registry, TokenBusinessMetrics)
}

// bindMetrics binds the metrics provider when metrics are enabled and a business metrics
// recorder in every case.
func (c *Container) bindMetrics() {
	if !c.config.MetricsEnabled {
		c.registry.MustBind(TokenBusinessMetrics, func(registry.Resolver) (any, error) {
			return metrics.NewNoOpBusinessMetrics(), nil
		}, registry.Singleton)
		return
	}

	c.registry.MustBind(TokenMetricsProvider, func(registry.Resolver) (any, error) {
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, err
		}
		c.onShutdown("metrics provider", func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		})
		return provider, nil
	}, registry.Singleton)

	c.registry.MustBind(TokenBusinessMetrics, func(r registry.Resolver) (any, error) {
		provider, err := registry.ResolveAs[*metrics.Provider](r, TokenMetricsProvider)
		if err != nil {
			return nil, err
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	}, registry.Singleton)
}
