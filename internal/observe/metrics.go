package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric names.
const (
	MetricEvents           = "refcache.events"
	MetricDispatchErrors   = "refcache.dispatch.errors"
	MetricProjectionHits   = "refcache.projection.hits"
	MetricProjectionMisses = "refcache.projection.misses"
)

// Metrics records cache activity. Safe for concurrent use.
type Metrics struct {
	events metric.Int64Counter
	errors metric.Int64Counter
	hits   metric.Int64Counter
	misses metric.Int64Counter
}

// NewMetrics registers the cache instruments on meter. A nil meter yields
// no-op instruments.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("refcache")
	}

	events, err := meter.Int64Counter(
		MetricEvents,
		metric.WithDescription("Events applied to the cache"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(
		MetricDispatchErrors,
		metric.WithDescription("Events rejected by a transition"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64Counter(
		MetricProjectionHits,
		metric.WithDescription("Projections served from the memo"),
		metric.WithUnit("{projection}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		MetricProjectionMisses,
		metric.WithDescription("Projections recomputed"),
		metric.WithUnit("{projection}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		events: events,
		errors: errs,
		hits:   hits,
		misses: misses,
	}, nil
}

// NoopMetrics returns Metrics backed by no-op instruments.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(nil)
	return m
}

// RecordEvent counts one dispatched event of kind, and a dispatch error when
// err is non-nil.
func (m *Metrics) RecordEvent(ctx context.Context, kind string, err error) {
	opt := metric.WithAttributes(attribute.String("event.kind", kind))
	if err != nil {
		m.errors.Add(ctx, 1, opt)
		return
	}
	m.events.Add(ctx, 1, opt)
}

// ProjectionServed implements projection.Recorder.
func (m *Metrics) ProjectionServed(_ string, hit bool) {
	if hit {
		m.hits.Add(context.Background(), 1)
		return
	}
	m.misses.Add(context.Background(), 1)
}
