// Projected resource views returned to callers.
package types

import "encoding/json"

// ResourceKind tags the variant held by a Resource.
type ResourceKind int

// Resource variants.
const (
	// NotYetFetched: no ref exists for the data key.
	NotYetFetched ResourceKind = iota
	// Single: the ref points at one resource; Item may be nil on a join miss.
	Single
	// Collection: the ref is a list; Items keeps ref order, nil slots are join misses.
	Collection
	// Raw: the ref holds a generic bootstrap payload.
	Raw
)

func (k ResourceKind) String() string {
	switch k {
	case NotYetFetched:
		return "not_yet_fetched"
	case Single:
		return "single"
	case Collection:
		return "collection"
	case Raw:
		return "raw"
	default:
		return "unknown"
	}
}

// Item is one resolved entity inside a projection.
type Item struct {
	Type          string         `json:"type"`
	ID            string         `json:"id"`
	Attributes    map[string]any `json:"attributes"`
	Relationships map[string]any `json:"relationships,omitempty"`
}

// Key returns the item's ResourceKey.
func (i *Item) Key() ResourceKey {
	return ResourceKey{Type: i.Type, ID: i.ID}
}

// Resource is the caller-facing view of one data key. Links, Meta and
// Request are side-channel data, kept apart from the resource's own fields.
// Ref is the backing reference; it is nil for NotYetFetched.
type Resource struct {
	DataKey string
	Kind    ResourceKind
	Item    *Item
	Items   []*Item
	Value   any
	Links   map[string]any
	Meta    map[string]any
	Request RequestStatus
	Ref     *Ref
}

// Exists reports whether a ref backs the resource.
func (r Resource) Exists() bool {
	return r.Kind != NotYetFetched
}

// Missing returns the number of absent slots in the view.
func (r Resource) Missing() int {
	switch r.Kind {
	case Single:
		if r.Item == nil && r.Ref != nil && len(r.Ref.Entities) > 0 {
			return 1
		}
	case Collection:
		n := 0
		for _, it := range r.Items {
			if it == nil {
				n++
			}
		}
		return n
	}
	return 0
}

// resourceJSON is the wire shape of a Resource.
type resourceJSON struct {
	DataKey string         `json:"data_key,omitempty"`
	Kind    string         `json:"kind"`
	Data    any            `json:"data"`
	Links   map[string]any `json:"links,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Request RequestStatus  `json:"request"`
}

// MarshalJSON renders the resource in a JSON:API-like envelope.
func (r Resource) MarshalJSON() ([]byte, error) {
	out := resourceJSON{
		DataKey: r.DataKey,
		Kind:    r.Kind.String(),
		Links:   r.Links,
		Meta:    r.Meta,
		Request: r.Request,
	}
	switch r.Kind {
	case Single:
		if r.Item != nil {
			out.Data = r.Item
		}
	case Collection:
		items := r.Items
		if items == nil {
			items = []*Item{}
		}
		out.Data = items
	case Raw:
		out.Data = r.Value
	}
	return json.Marshal(out)
}
