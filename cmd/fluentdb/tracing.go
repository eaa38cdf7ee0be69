package main

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/zipkin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newTracerProvider returns a provider exporting to zipkin or an OTLP gRPC collector.
// With no exporter spans are kept in process and only their trace ids show up in logs.
func newTracerProvider(ctx context.Context, exporter, url string) (*sdktrace.TracerProvider, error) {
	switch strings.ToLower(exporter) {
	case "", "none":
		return sdktrace.NewTracerProvider(), nil
	case "zipkin":
		exp, err := zipkin.New(url)
		if err != nil {
			return nil, err
		}

		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp)), nil
	case "otlp":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
		if url != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(url))
		}

		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, err
		}

		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp)), nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q, expected zipkin or otlp", exporter)
	}
}
