package refcache

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMeter registers the cache counters on meter.
func WithMeter(meter metric.Meter) Option {
	return func(c *Cache) {
		c.meter = meter
	}
}

// WithTracer opens one span per dispatched event on tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Cache) {
		c.tracer = tracer
	}
}

// WithClock replaces time.Now for stamping request outcomes.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithStaleGuard drops a success or failure whose request ID is set and no
// longer matches the latest request sent for its data key. Without it the
// last event to land wins.
func WithStaleGuard() Option {
	return func(c *Cache) {
		c.staleGuard = true
	}
}

// WithIDGenerator replaces the UUID v7 generator used for request IDs.
func WithIDGenerator(next func() string) Option {
	return func(c *Cache) {
		if next != nil {
			c.newID = next
		}
	}
}

// WithState seeds the cache with a copy of a previously saved snapshot.
func WithState(s *types.State) Option {
	return func(c *Cache) {
		if s != nil {
			c.state.Store(s.Shallow())
		}
	}
}
