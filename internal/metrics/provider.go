// Package metrics exports OpenTelemetry instruments through a Prometheus registry.
// It covers identity operation metrics and HTTP request metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultLatencyBuckets are the histogram boundaries, in seconds, for every *_seconds
// instrument. Identity providers answer in tens of milliseconds, remote ones in hundreds.
var DefaultLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ProviderOption configures NewProvider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	latencyBuckets []float64
	runtimeMetrics bool
}

// WithLatencyBuckets overrides DefaultLatencyBuckets.
func WithLatencyBuckets(buckets ...float64) ProviderOption {
	return func(o *providerOptions) {
		o.latencyBuckets = buckets
	}
}

// WithoutRuntimeMetrics leaves the Go runtime and process collectors out of the registry.
func WithoutRuntimeMetrics() ProviderOption {
	return func(o *providerOptions) {
		o.runtimeMetrics = false
	}
}

// Provider owns the meter provider and the Prometheus registry it exports to.
type Provider struct {
	namespace     string
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
	handler       http.Handler
}

// NewProvider creates a meter provider backed by its own Prometheus registry, so two
// providers never share series.
func NewProvider(namespace string, opts ...ProviderOption) (*Provider, error) {
	o := providerOptions{
		latencyBuckets: DefaultLatencyBuckets,
		runtimeMetrics: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	registry := prometheus.NewRegistry()
	if o.runtimeMetrics {
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return nil, fmt.Errorf("register go collector: %w", err)
		}
		if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			Namespace: namespace,
		})); err != nil {
			return nil, fmt.Errorf("register process collector: %w", err)
		}
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	latencyView := sdkmetric.NewView(
		sdkmetric.Instrument{Name: "*_seconds", Kind: sdkmetric.InstrumentKindHistogram},
		sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
			Boundaries: o.latencyBuckets,
		}},
	)

	return &Provider{
		namespace: namespace,
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithView(latencyView),
		),
		registry: registry,
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	}, nil
}

// Namespace returns the metric name prefix.
func (p *Provider) Namespace() string {
	return p.namespace
}

// Handler serves the registry in Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// MeterProvider returns the OpenTelemetry meter provider.
func (p *Provider) MeterProvider() *sdkmetric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes and stops the meter provider. A zero Provider is a no-op.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
