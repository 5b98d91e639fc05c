package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys.
const (
	AttrEventKind = "event.kind"
	AttrDataKey   = "refcache.data_key"
	AttrRequestID = "refcache.request_id"
	AttrError     = "refcache.error"
)

// Tracer wraps an OpenTelemetry tracer with dispatch span management.
// Safe for concurrent use.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer wraps t. A nil tracer yields no-op spans.
func NewTracer(t trace.Tracer) *Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("refcache")
	}
	return &Tracer{tracer: t}
}

// SpanName returns the span name for an event kind: refcache.dispatch.<kind>.
func SpanName(kind string) string {
	return "refcache.dispatch." + kind
}

// StartDispatch starts the span covering one dispatched event.
func (t *Tracer) StartDispatch(ctx context.Context, kind, dataKey, requestID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrEventKind, kind),
		attribute.String(AttrDataKey, dataKey),
		attribute.Bool(AttrError, false),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	return t.tracer.Start(ctx, SpanName(kind),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends span, recording err when non-nil.
func (t *Tracer) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool(AttrError, true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
