// Package telemetry installs the OTLP trace pipeline for the API server.
package telemetry

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"sustainapi/internal/config"
)

const exportTimeout = 10 * time.Second

// Shutdown flushes buffered spans and stops the exporter.
type Shutdown func(context.Context) error

// Setup installs a global tracer provider exporting to cfg.OTelEndpoint.
// With no endpoint configured the global no-op provider stays in place and
// the returned Shutdown does nothing.
func Setup(ctx context.Context, cfg *config.Config, version string) (Shutdown, error) {
	noop := func(context.Context) error { return nil }
	if cfg.OTelEndpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.OTelEndpoint),
		otlptracehttp.WithTimeout(exportTimeout),
	)
	if err != nil {
		return noop, err
	}
	res, err := serviceResource(ctx, cfg, version)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.OTelSampleRatio)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Printf("tracing: exporting %s %s spans to %s (sample ratio %.2f)",
		cfg.ServiceName, version, cfg.OTelEndpoint, cfg.OTelSampleRatio)
	return tp.Shutdown, nil
}

// serviceResource describes this process: service identity plus the data
// file it serves, so traces from differently seeded instances can be told
// apart.
func serviceResource(ctx context.Context, cfg *config.Config, version string) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
			attribute.String("sustainapi.data_file", cfg.DataFile),
		),
	)
}

// sampler samples the given fraction of new traces and follows the caller's
// decision for propagated ones.
func sampler(ratio float64) sdktrace.Sampler {
	root := sdktrace.AlwaysSample()
	if ratio < 1 {
		root = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(root)
}
