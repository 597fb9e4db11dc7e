// Package telemetry installs the OpenTelemetry trace and metric providers
// for the workflow service.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Config of the exporters. An empty CollectorURL leaves the global no-op
// providers in place.
type Config struct {
	ServiceName    string  `json:"service_name,default=erp-workflow"`
	ServiceVersion string  `json:"service_version,optional"`
	Environment    string  `json:"environment,default=development"`
	CollectorURL   string  `json:"collector_url,optional"` // host:port of an OTLP/HTTP collector
	Insecure       bool    `json:"insecure,default=true"`
	EnableTracing  bool    `json:"enable_tracing,default=true"`
	EnableMetrics  bool    `json:"enable_metrics,default=true"`
	SamplingRatio  float64 `json:"sampling_ratio,default=1"`
}

// Enabled reports whether anything will be exported.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.CollectorURL) != "" && (c.EnableTracing || c.EnableMetrics)
}

// Provider owns the SDK providers so they can be flushed on shutdown.
type Provider struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// NewProvider installs global providers according to c.
func NewProvider(ctx context.Context, c Config) (*Provider, error) {
	p := &Provider{}
	if !c.Enabled() {
		return p, nil
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(c.ServiceName),
			semconv.ServiceVersionKey.String(c.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(c.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	if c.EnableTracing {
		if p.TracerProvider, err = initTracing(ctx, res, c); err != nil {
			return nil, fmt.Errorf("failed to init tracing: %w", err)
		}
		otel.SetTracerProvider(p.TracerProvider)
	}
	if c.EnableMetrics {
		if p.MeterProvider, err = initMetrics(ctx, res, c); err != nil {
			return nil, fmt.Errorf("failed to init metrics: %w", err)
		}
		otel.SetMeterProvider(p.MeterProvider)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return p, nil
}

func initTracing(ctx context.Context, res *resource.Resource, c Config) (*trace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(c.CollectorURL),
		otlptracehttp.WithURLPath("/v1/traces"),
	}
	if c.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	ratio := c.SamplingRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exp, trace.WithBatchTimeout(5*time.Second), trace.WithMaxExportBatchSize(512)),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
	), nil
}

func initMetrics(ctx context.Context, res *resource.Resource, c Config) (*metric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(c.CollectorURL),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if c.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exp, metric.WithInterval(30*time.Second))),
	), nil
}

// Shutdown flushes and stops whatever NewProvider started.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ApplyEnv overrides c with the standard OTEL_* variables when set.
func ApplyEnv(c Config) Config {
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		v = strings.TrimPrefix(strings.TrimPrefix(v, "http://"), "https://")
		c.CollectorURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SamplingRatio = f
		}
	}
	return c
}
