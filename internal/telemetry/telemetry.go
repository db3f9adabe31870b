// Package telemetry exports layout generation traces over OTLP and defines
// the span attributes shared by the pipeline, the viewer and the server.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "dungeonlayout"

// Environment variables read by this package.
const (
	// EnvEndpoint must be set for anything to be exported.
	EnvEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	EnvHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"

	// EnvHoneycombKey and EnvHoneycombDataset are mapped onto the OTLP
	// variables by ConfigureEnv.
	EnvHoneycombKey     = "HONEYCOMB_DUNGEONLAYOUT_API_KEY"
	EnvHoneycombDataset = "HONEYCOMB_DUNGEONLAYOUT_DATASET"

	honeycombEndpoint = "https://api.honeycomb.io"
)

// Span attribute keys for a generation run.
const (
	KeyRunID     = attribute.Key("layout.run_id")
	KeySeed      = attribute.Key("layout.seed")
	KeyRoomCount = attribute.Key("layout.room_count")
	KeyTarget    = attribute.Key("layout.target_rooms")
	KeyPasses    = attribute.Key("layout.passes")
	KeyMeanW     = attribute.Key("layout.mean_w")
	KeyMeanH     = attribute.Key("layout.mean_h")
)

// RunAttributes identifies a generation run on a span.
func RunAttributes(runID string, seed int64, target int) []attribute.KeyValue {
	return []attribute.KeyValue{
		KeyRunID.String(runID),
		KeySeed.Int64(seed),
		KeyTarget.Int(target),
	}
}

// ConfigureEnv points the OTLP exporter at Honeycomb when a Honeycomb key
// is set and no endpoint was given explicitly. lookup and setenv are
// normally os.LookupEnv and os.Setenv.
func ConfigureEnv(lookup func(string) (string, bool), setenv func(string, string) error) error {
	apiKey, _ := lookup(EnvHoneycombKey)
	if endpoint, _ := lookup(EnvEndpoint); apiKey == "" || endpoint != "" {
		return nil
	}
	dataset, _ := lookup(EnvHoneycombDataset)
	if dataset == "" {
		dataset = serviceName
	}
	if err := setenv(EnvEndpoint, honeycombEndpoint); err != nil {
		return err
	}
	return setenv(EnvHeaders, fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
}

// Enabled reports whether an OTLP endpoint is configured.
func Enabled() bool {
	return os.Getenv(EnvEndpoint) != ""
}

// Setup installs a global tracer provider exporting over OTLP HTTP. version
// is reported as service.version.
//
// Returns a shutdown function that flushes pending spans.
func Setup(ctx context.Context, version string) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(Resource(version)...))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Resource returns the process attributes attached to every span.
func Resource(version string) []attribute.KeyValue {
	if version == "" {
		version = "dev"
	}
	return []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
		attribute.String("host.name", hostname()),
		attribute.String("os.type", runtime.GOOS),
		attribute.String("process.runtime.version", runtime.Version()),
	}
}

// Tracer returns a named tracer for the given component.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName + "/noop")
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
