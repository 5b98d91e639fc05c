package store

import (
	"fmt"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// reduceRefs applies ev to the reference slice.
func reduceRefs(prev map[string]*types.Ref, ev types.Event) (map[string]*types.Ref, error) {
	switch e := ev.(type) {
	case types.FetchSucceeded:
		switch modeOf(e) {
		case modeNextPage:
			return appendPage(prev, e)
		case modeDelete:
			if !e.RefToDelete.Complete() {
				return prev, nil
			}
			return cascadeDelete(prev, *e.RefToDelete), nil
		default:
			return putRef(prev, e.DataKey, e.Ref.Clone()), nil
		}
	case types.GenericBootstrap:
		return putRef(prev, e.DataKey, &types.Ref{Generic: true, Raw: types.CloneValue(e.Value)}), nil
	case types.InitializeDataKey:
		return putRef(prev, e.DataKey, e.Ref.Clone()), nil
	default:
		return prev, nil
	}
}

// appendPage concatenates the next page onto the existing entity list. The
// new page's links and meta supersede the old ones.
func appendPage(prev map[string]*types.Ref, ev types.FetchSucceeded) (map[string]*types.Ref, error) {
	old, ok := prev[ev.DataKey]
	if !ok || old == nil {
		return nil, fmt.Errorf("next page for %q: %w", ev.DataKey, types.ErrPaginateUnfetched)
	}
	if old.IsGeneric() {
		return nil, fmt.Errorf("next page for %q: generic payload: %w", ev.DataKey, types.ErrPaginateUnfetched)
	}

	page := ev.Ref.Clone()
	entities := make([]types.ResourceKey, 0, len(old.Entities)+len(page.Entities))
	entities = append(entities, old.Entities...)
	entities = append(entities, page.Entities...)
	page.Entities = entities
	return putRef(prev, ev.DataKey, page), nil
}

// cascadeDelete removes key from every data key's entity list. Only refs
// that actually held key are replaced.
func cascadeDelete(prev map[string]*types.Ref, key types.ResourceKey) map[string]*types.Ref {
	var next map[string]*types.Ref
	for dataKey, ref := range prev {
		if ref == nil {
			continue
		}
		trimmed, changed := ref.Without(key)
		if !changed {
			continue
		}
		if next == nil {
			next = copyRefs(prev)
		}
		next[dataKey] = trimmed
	}
	if next == nil {
		return prev
	}
	return next
}

func putRef(prev map[string]*types.Ref, dataKey string, ref *types.Ref) map[string]*types.Ref {
	next := copyRefs(prev)
	next[dataKey] = ref
	return next
}

func copyRefs(m map[string]*types.Ref) map[string]*types.Ref {
	out := make(map[string]*types.Ref, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
