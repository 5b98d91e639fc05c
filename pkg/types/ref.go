// References held by the Reference Store.
package types

// Ref points a data key at zero or more entities. Entities order is the
// display order of a collection. IsCollection distinguishes a list from a
// single resource independently of the list length.
//
// A Ref created by a generic bootstrap has Generic set and carries the raw
// payload in Raw with no entity list; such refs are opaque to cascading
// deletes and projection joins.
type Ref struct {
	Entities     []ResourceKey  `json:"entities"`
	IsCollection bool           `json:"is_collection"`
	Links        map[string]any `json:"links,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
	Generic      bool           `json:"generic,omitempty"`
	Raw          any            `json:"raw,omitempty"`
}

// IsGeneric reports whether the ref stores a raw payload instead of entity pointers.
func (r *Ref) IsGeneric() bool {
	return r.Generic
}

// Clone returns a structural copy of r.
func (r *Ref) Clone() *Ref {
	if r == nil {
		return nil
	}
	out := &Ref{
		IsCollection: r.IsCollection,
		Generic:      r.Generic,
		Links:        CloneMap(r.Links),
		Meta:         CloneMap(r.Meta),
		Raw:          CloneValue(r.Raw),
	}
	if r.Entities != nil {
		out.Entities = make([]ResourceKey, len(r.Entities))
		copy(out.Entities, r.Entities)
	}
	return out
}

// Contains reports whether key appears in the entity list.
func (r *Ref) Contains(key ResourceKey) bool {
	for _, k := range r.Entities {
		if k == key {
			return true
		}
	}
	return false
}

// Without returns a copy of r with every occurrence of key removed from the
// entity list, and false when key was not present (r is then returned as is).
func (r *Ref) Without(key ResourceKey) (*Ref, bool) {
	if r.IsGeneric() || !r.Contains(key) {
		return r, false
	}
	out := r.Clone()
	kept := out.Entities[:0]
	for _, k := range out.Entities {
		if k != key {
			kept = append(kept, k)
		}
	}
	out.Entities = kept
	return out, true
}
