// Entity records held by the Entity Store.
package types

import "fmt"

// ResourceKey identifies one entity. Type and ID together are globally unique.
type ResourceKey struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Complete reports whether both Type and ID are set.
func (k ResourceKey) Complete() bool {
	return k.Type != "" && k.ID != ""
}

func (k ResourceKey) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.ID)
}

// Entity is the single stored record for a (type, id) pair.
// Relationships hold raw JSON:API linkage values ({"data": ..., "links": ..., "meta": ...}).
// Entities held in a State are never mutated in place; transitions replace them.
type Entity struct {
	Type          string         `json:"type"`
	ID            string         `json:"id"`
	Attributes    map[string]any `json:"attributes"`
	Relationships map[string]any `json:"relationships"`
}

// Key returns the entity's ResourceKey.
func (e *Entity) Key() ResourceKey {
	return ResourceKey{Type: e.Type, ID: e.ID}
}

// Merge returns a new entity with attrs and rels laid field by field over e.
// Keys absent from the update are kept. e may be nil, in which case a new
// record is created for key.
func (e *Entity) Merge(key ResourceKey, attrs, rels map[string]any) *Entity {
	out := &Entity{
		Type:          key.Type,
		ID:            key.ID,
		Attributes:    make(map[string]any),
		Relationships: make(map[string]any),
	}
	if e != nil {
		for k, v := range e.Attributes {
			out.Attributes[k] = v
		}
		for k, v := range e.Relationships {
			out.Relationships[k] = v
		}
	}
	for k, v := range attrs {
		out.Attributes[k] = CloneValue(v)
	}
	for k, v := range rels {
		out.Relationships[k] = CloneValue(v)
	}
	return out
}

// EntityPatch is the {attributes, relationships} body of one fragment entry.
type EntityPatch struct {
	Attributes    map[string]any `json:"attributes,omitempty"`
	Relationships map[string]any `json:"relationships,omitempty"`
}

// Fragment is a bulk store update: resource type to id to patch.
type Fragment map[string]map[string]EntityPatch

// Add records a patch for key, merging with any patch already present.
func (f Fragment) Add(key ResourceKey, patch EntityPatch) {
	byID, ok := f[key.Type]
	if !ok {
		byID = make(map[string]EntityPatch)
		f[key.Type] = byID
	}
	prev, ok := byID[key.ID]
	if !ok {
		byID[key.ID] = patch
		return
	}
	merged := EntityPatch{
		Attributes:    make(map[string]any, len(prev.Attributes)+len(patch.Attributes)),
		Relationships: make(map[string]any, len(prev.Relationships)+len(patch.Relationships)),
	}
	for k, v := range prev.Attributes {
		merged.Attributes[k] = v
	}
	for k, v := range patch.Attributes {
		merged.Attributes[k] = v
	}
	for k, v := range prev.Relationships {
		merged.Relationships[k] = v
	}
	for k, v := range patch.Relationships {
		merged.Relationships[k] = v
	}
	byID[key.ID] = merged
}
