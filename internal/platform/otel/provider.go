// Package otel wires OpenTelemetry tracing for the simulator binaries.
package otel

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// EndpointEnv names the OTLP/HTTP collector URL.
	EndpointEnv = "SIMULATOR_OTEL_ENDPOINT"
	// EnabledEnv disables tracing when set to "false".
	EnabledEnv = "SIMULATOR_OTEL_ENABLED"
	// SampleRatioEnv sets the share of root traces kept, in [0, 1].
	SampleRatioEnv = "SIMULATOR_OTEL_SAMPLE_RATIO"

	serviceNamespace = "cypress-simulator"
)

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: without SIMULATOR_OTEL_ENDPOINT, or with
// SIMULATOR_OTEL_ENABLED=false, Setup returns a no-op shutdown and leaves the
// global provider alone.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if strings.EqualFold(strings.TrimSpace(os.Getenv(EnabledEnv)), "false") {
		return noop, nil
	}
	endpoint := strings.TrimSpace(os.Getenv(EndpointEnv))
	if endpoint == "" {
		return noop, nil
	}
	sampler, err := samplerFromEnv()
	if err != nil {
		return noop, err
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceNamespace(serviceNamespace),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// samplerFromEnv keeps every trace unless a ratio is configured. Child spans
// follow their parent's decision.
func samplerFromEnv() (sdktrace.Sampler, error) {
	raw := strings.TrimSpace(os.Getenv(SampleRatioEnv))
	if raw == "" {
		return sdktrace.ParentBased(sdktrace.AlwaysSample()), nil
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("%s must be a number in [0, 1], got %q", SampleRatioEnv, raw)
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
}
