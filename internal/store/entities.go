package store

import (
	"fmt"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// reduceEntities applies ev to the entity slice.
func reduceEntities(prev map[types.ResourceKey]*types.Entity, ev types.Event) (map[types.ResourceKey]*types.Entity, error) {
	switch e := ev.(type) {
	case types.FetchSucceeded:
		if modeOf(e) == modeDelete {
			if !e.RefToDelete.Complete() {
				return prev, nil
			}
			next := mergeFragment(prev, e.Fragment)
			return dropEntity(next, len(e.Fragment) == 0, *e.RefToDelete), nil
		}
		return mergeFragment(prev, e.Fragment), nil
	case types.UpdateEntity:
		return updateAttributes(prev, e)
	default:
		return prev, nil
	}
}

// mergeFragment lays every fragment entry over the matching record. Records
// the fragment does not mention keep their identity.
func mergeFragment(prev map[types.ResourceKey]*types.Entity, f types.Fragment) map[types.ResourceKey]*types.Entity {
	if len(f) == 0 {
		return prev
	}
	next := copyEntities(prev)
	for typ, byID := range f {
		for id, patch := range byID {
			key := types.ResourceKey{Type: typ, ID: id}
			next[key] = next[key].Merge(key, patch.Attributes, patch.Relationships)
		}
	}
	return next
}

// dropEntity removes key so a deleted resource is never resurrected by a
// stale ref. shared is true when next is still the prior state's map.
func dropEntity(next map[types.ResourceKey]*types.Entity, shared bool, key types.ResourceKey) map[types.ResourceKey]*types.Entity {
	if _, ok := next[key]; !ok {
		return next
	}
	if shared {
		next = copyEntities(next)
	}
	delete(next, key)
	return next
}

func updateAttributes(prev map[types.ResourceKey]*types.Entity, ev types.UpdateEntity) (map[types.ResourceKey]*types.Entity, error) {
	key := types.ResourceKey{Type: ev.Type, ID: ev.ID}
	cur, ok := prev[key]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", key, types.ErrEntityNotFound)
	}
	next := copyEntities(prev)
	next[key] = cur.Merge(key, ev.Attributes, nil)
	return next, nil
}

func copyEntities(m map[types.ResourceKey]*types.Entity) map[types.ResourceKey]*types.Entity {
	out := make(map[types.ResourceKey]*types.Entity, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
