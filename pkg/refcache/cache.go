package refcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/refcache/internal/normalize"
	"github.com/mesh-intelligence/refcache/internal/observe"
	"github.com/mesh-intelligence/refcache/internal/projection"
	"github.com/mesh-intelligence/refcache/internal/store"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

// Cache holds the entity, reference and request status slices for one
// process. Dispatch is serialized; reads work on the latest snapshot and
// never block on writers.
type Cache struct {
	mu    sync.Mutex
	state atomic.Pointer[types.State]

	engine  *projection.Engine
	logger  *slog.Logger
	meter   metric.Meter
	metrics *observe.Metrics
	tracer  trace.Tracer
	spans   *observe.Tracer

	now        func() time.Time
	newID      func() string
	staleGuard bool
}

// New returns an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		logger: observe.DiscardLogger(),
		now:    time.Now,
		newID:  newRequestID,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.state.Load() == nil {
		c.state.Store(types.NewState())
	}

	m, err := observe.NewMetrics(c.meter)
	if err != nil {
		c.logger.Warn("metrics disabled", "error", err)
		m = observe.NoopMetrics()
	}
	c.metrics = m
	c.spans = observe.NewTracer(c.tracer)
	c.engine = projection.New(m)
	return c
}

// newRequestID returns a time-ordered UUID, falling back to v4 when v7
// generation fails.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Dispatch applies ev to the cache. On error the state is unchanged.
// A RequestSent without a RequestID is stamped with a fresh one.
func (c *Cache) Dispatch(ctx context.Context, ev types.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if rs, ok := ev.(types.RequestSent); ok && rs.RequestID == "" {
		rs.RequestID = c.newID()
		ev = rs
	}
	return c.applyLocked(ctx, ev)
}

// Send records a request for dataKey and returns its request ID. An empty
// method means GET.
func (c *Cache) Send(ctx context.Context, dataKey, method string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ev := types.RequestSent{DataKey: dataKey, Method: method, RequestID: c.newID()}
	if err := c.applyLocked(ctx, ev); err != nil {
		return "", err
	}
	return ev.RequestID, nil
}

// applyLocked runs one transition. Caller must hold c.mu.
func (c *Cache) applyLocked(ctx context.Context, ev types.Event) (err error) {
	prev := c.state.Load()
	kind := kindOf(ev)

	ctx, span := c.spans.StartDispatch(ctx, kind, keyOf(ev), types.RequestKey(ev))
	defer func() { c.spans.EndSpan(span, err) }()

	if c.staleGuard && c.isStale(prev, ev) {
		c.logger.Debug("dropping stale response",
			"kind", kind,
			"data_key", ev.Key(),
			"request_id", types.RequestKey(ev),
		)
		span.AddEvent("stale response dropped")
		return nil
	}

	next, err := store.Apply(prev, ev, c.now())
	c.metrics.RecordEvent(ctx, kind, err)
	if err != nil {
		c.logger.Warn("event rejected", "kind", kind, "data_key", keyOf(ev), "error", err)
		return fmt.Errorf("applying %s: %w", kind, err)
	}

	c.state.Store(next)
	c.logger.Debug("event applied", "kind", kind, "data_key", ev.Key())
	return nil
}

// isStale reports whether ev answers a request other than the latest one
// sent for its data key.
func (c *Cache) isStale(s *types.State, ev types.Event) bool {
	id := types.RequestKey(ev)
	if id == "" {
		return false
	}
	current := s.Request(ev.Key()).RequestID
	return current != "" && current != id
}

func kindOf(ev types.Event) string {
	if ev == nil {
		return "unknown"
	}
	return ev.Kind()
}

func keyOf(ev types.Event) string {
	if ev == nil {
		return ""
	}
	return ev.Key()
}

// Project resolves each data key against the current snapshot.
func (c *Cache) Project(dataKeys ...string) map[string]types.Resource {
	return c.engine.Project(c.state.Load(), dataKeys...)
}

// ProjectKey resolves one data key against the current snapshot.
func (c *Cache) ProjectKey(dataKey string) types.Resource {
	return c.engine.ProjectKey(c.state.Load(), dataKey)
}

// Related resolves the relationship name of item against the entity slice.
// The result has no data key and a not-called request status.
func (c *Cache) Related(item *types.Item, name string) (types.Resource, error) {
	if item == nil {
		return types.Resource{}, fmt.Errorf("%w: nil item", types.ErrUnrecognizedShape)
	}
	linkage, ok := item.Relationships[name]
	if !ok {
		return types.Resource{}, fmt.Errorf("%w: %s on %s", types.ErrRelationshipNotFound, name, item.Key())
	}
	ref, err := normalize.ToRef(linkage, normalize.Options{})
	if err != nil {
		return types.Resource{}, fmt.Errorf("relationship %s: %w", name, err)
	}
	return projection.Join(c.state.Load(), ref), nil
}

// Snapshot returns the current state. The returned value must not be modified.
func (c *Cache) Snapshot() *types.State {
	return c.state.Load()
}

// Keys lists every data key with a ref or request status, sorted.
func (c *Cache) Keys() []string {
	return c.state.Load().DataKeys()
}

// Restore replaces the whole state with a copy of s's maps, dropping
// memoized projections. Later writes to s's maps do not reach the cache.
func (c *Cache) Restore(s *types.State) {
	if s == nil {
		s = types.NewState()
	} else {
		s = s.Shallow()
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(s)
	c.engine.Forget()
	c.logger.Debug("state restored",
		"entities", len(s.Entities),
		"refs", len(s.Refs),
		"requests", len(s.Requests),
	)
}

// Load replaces the state with the snapshot held by backend.
func (c *Cache) Load(backend types.Backend) error {
	s, err := backend.Load()
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	c.Restore(s)
	return nil
}

// Save writes the current snapshot to backend.
func (c *Cache) Save(backend types.Backend) error {
	if err := backend.Save(c.Snapshot()); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}
