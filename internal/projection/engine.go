// Package projection joins a data key's ref against the entity and request
// status slices and hands back a caller-facing types.Resource.
//
// Results are memoized per data key. An entry is reused only while the
// key's ref record, its request status record, and every entity record the
// ref points at are the same pointers that produced it; transitions in
// internal/store replace records instead of mutating them, so pointer
// equality is a sound change test. Concurrent recomputation of one data key
// is coalesced with singleflight.
package projection

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// Recorder receives memo hit/miss signals.
type Recorder interface {
	ProjectionServed(dataKey string, hit bool)
}

type noopRecorder struct{}

func (noopRecorder) ProjectionServed(string, bool) {}

// Engine projects data keys. The zero value is not usable; call New.
// Resources returned by an Engine share maps with the state they were
// built from and must be treated as read-only.
type Engine struct {
	mu       sync.RWMutex
	memo     map[string]*entry
	group    singleflight.Group
	recorder Recorder
}

// entry is one memoized projection plus the record identities it was built from.
type entry struct {
	ref      *types.Ref
	status   *types.RequestStatus
	entities []*types.Entity
	resource types.Resource
}

// New returns an Engine. A nil recorder disables hit/miss reporting.
func New(recorder Recorder) *Engine {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Engine{
		memo:     make(map[string]*entry),
		recorder: recorder,
	}
}

// Project resolves every requested data key against s.
func (e *Engine) Project(s *types.State, dataKeys ...string) map[string]types.Resource {
	out := make(map[string]types.Resource, len(dataKeys))
	for _, k := range dataKeys {
		out[k] = e.ProjectKey(s, k)
	}
	return out
}

// ProjectKey resolves one data key against s.
func (e *Engine) ProjectKey(s *types.State, dataKey string) types.Resource {
	e.mu.RLock()
	cached, ok := e.memo[dataKey]
	e.mu.RUnlock()
	if ok && cached.matches(s, dataKey) {
		e.recorder.ProjectionServed(dataKey, true)
		return cached.resource
	}

	e.recorder.ProjectionServed(dataKey, false)
	v, _, _ := e.group.Do(dataKey, func() (any, error) {
		built := build(s, dataKey)
		e.mu.Lock()
		e.memo[dataKey] = built
		e.mu.Unlock()
		return built, nil
	})
	built := v.(*entry)
	// A caller holding a different snapshot may have won the flight.
	if !built.matches(s, dataKey) {
		return build(s, dataKey).resource
	}
	return built.resource
}

// Forget drops memoized entries for the given keys, or all entries when
// none are given.
func (e *Engine) Forget(dataKeys ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(dataKeys) == 0 {
		e.memo = make(map[string]*entry)
		return
	}
	for _, k := range dataKeys {
		delete(e.memo, k)
	}
}

// Join resolves an arbitrary ref against s without memoization or request
// status. It is used for relationship linkages, which have no data key.
func Join(s *types.State, ref *types.Ref) types.Resource {
	res, _ := join(s, ref)
	res.Request = types.NotCalled()
	return res
}

func (c *entry) matches(s *types.State, dataKey string) bool {
	if s.Refs[dataKey] != c.ref || s.Requests[dataKey] != c.status {
		return false
	}
	if c.ref == nil || c.ref.IsGeneric() {
		return true
	}
	for i, key := range c.ref.Entities {
		if s.Entities[key] != c.entities[i] {
			return false
		}
	}
	return true
}

func build(s *types.State, dataKey string) *entry {
	ref := s.Refs[dataKey]
	status := s.Requests[dataKey]

	if ref == nil {
		return &entry{
			status: status,
			resource: types.Resource{
				DataKey: dataKey,
				Kind:    types.NotYetFetched,
				Request: s.Request(dataKey),
			},
		}
	}

	res, touched := join(s, ref)
	res.DataKey = dataKey
	res.Request = s.Request(dataKey)
	return &entry{
		ref:      ref,
		status:   status,
		entities: touched,
		resource: res,
	}
}

// join resolves ref's entity list and reports the entity records it read,
// one per slot (nil on a miss).
func join(s *types.State, ref *types.Ref) (types.Resource, []*types.Entity) {
	res := types.Resource{
		Links: ref.Links,
		Meta:  ref.Meta,
		Ref:   ref,
	}
	if ref.IsGeneric() {
		res.Kind = types.Raw
		res.Value = ref.Raw
		return res, nil
	}

	touched := make([]*types.Entity, len(ref.Entities))
	items := make([]*types.Item, len(ref.Entities))
	for i, key := range ref.Entities {
		ent := s.Entities[key]
		touched[i] = ent
		if ent != nil {
			items[i] = &types.Item{
				Type:          ent.Type,
				ID:            ent.ID,
				Attributes:    ent.Attributes,
				Relationships: ent.Relationships,
			}
		}
	}

	if ref.IsCollection {
		res.Kind = types.Collection
		res.Items = items
	} else {
		res.Kind = types.Single
		if len(items) > 0 {
			res.Item = items[0]
		}
	}
	return res, touched
}
