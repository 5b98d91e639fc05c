package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Exporter names accepted by NewTelemetry.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const instrumentationName = "github.com/mesh-intelligence/refcache"

// Telemetry owns the trace and meter providers of one process. A Telemetry
// built with ExporterNone hands out nil tracers and meters, which the cache
// replaces with no-ops.
type Telemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewTelemetry builds providers that export through the named exporter.
// The stdout exporter writes to w. The otlp exporter reads its endpoint from
// OTEL_EXPORTER_OTLP_ENDPOINT.
func NewTelemetry(ctx context.Context, exporter string, w io.Writer) (*Telemetry, error) {
	switch exporter {
	case ExporterNone, "":
		return &Telemetry{}, nil

	case ExporterStdout:
		spans, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		metrics, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("stdout metric exporter: %w", err)
		}
		return newTelemetry(spans, metrics), nil

	case ExporterOTLP:
		if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
			return nil, fmt.Errorf("otlp exporter: OTEL_EXPORTER_OTLP_ENDPOINT is not set")
		}
		spans, err := otlptracegrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		metrics, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			_ = spans.Shutdown(ctx)
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		return newTelemetry(spans, metrics), nil

	default:
		return nil, fmt.Errorf("unknown telemetry exporter: %q", exporter)
	}
}

func newTelemetry(spans sdktrace.SpanExporter, metrics sdkmetric.Exporter) *Telemetry {
	return &Telemetry{
		tp: sdktrace.NewTracerProvider(sdktrace.WithBatcher(spans)),
		mp: sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics))),
	}
}

// Tracer returns the process tracer, or nil when telemetry is off.
func (t *Telemetry) Tracer() trace.Tracer {
	if t == nil || t.tp == nil {
		return nil
	}
	return t.tp.Tracer(instrumentationName)
}

// Meter returns the process meter, or nil when telemetry is off.
func (t *Telemetry) Meter() metric.Meter {
	if t == nil || t.mp == nil {
		return nil
	}
	return t.mp.Meter(instrumentationName)
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
