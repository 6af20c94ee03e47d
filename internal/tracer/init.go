package tracer

import (
	"context"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// InitTracer sets up the OTLP HTTP exporter and returns a shutdown
// function for application exit. Tracing is off unless
// OTEL_ENABLED=true.
func InitTracer() func(context.Context) error {
	if os.Getenv("OTEL_ENABLED") != "true" {
		return func(context.Context) error { return nil }
	}

	ctx := context.Background()

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("[WARN] Failed to create OTLP exporter: %v (tracing disabled)", err)
		return func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("notesquest-backend"),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Printf("[INFO] OpenTelemetry tracer initialized (endpoint: %s)", endpoint)

	return tp.Shutdown
}
