package types

import "sort"

// State holds the three cache slices. A State handed out by a cache is an
// immutable snapshot: transitions build a new State and never write through
// the maps or the records they point to.
type State struct {
	Entities map[ResourceKey]*Entity
	Refs     map[string]*Ref
	Requests map[string]*RequestStatus
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		Entities: make(map[ResourceKey]*Entity),
		Refs:     make(map[string]*Ref),
		Requests: make(map[string]*RequestStatus),
	}
}

// Entity returns the record for key.
func (s *State) Entity(key ResourceKey) (*Entity, bool) {
	e, ok := s.Entities[key]
	return e, ok
}

// Ref returns the reference stored under dataKey.
func (s *State) Ref(dataKey string) (*Ref, bool) {
	r, ok := s.Refs[dataKey]
	return r, ok
}

// Request returns the request status for dataKey, or a not-called status
// when no request was ever sent for it.
func (s *State) Request(dataKey string) RequestStatus {
	if r, ok := s.Requests[dataKey]; ok && r != nil {
		return *r.Clone()
	}
	return NotCalled()
}

// DataKeys returns every data key with a ref or a request status, sorted.
func (s *State) DataKeys() []string {
	seen := make(map[string]bool, len(s.Refs)+len(s.Requests))
	for k := range s.Refs {
		seen[k] = true
	}
	for k := range s.Requests {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Shallow returns a State whose maps are fresh copies of s's maps. Values
// are shared; callers replace entries rather than mutate them.
func (s *State) Shallow() *State {
	out := &State{
		Entities: make(map[ResourceKey]*Entity, len(s.Entities)),
		Refs:     make(map[string]*Ref, len(s.Refs)),
		Requests: make(map[string]*RequestStatus, len(s.Requests)),
	}
	for k, v := range s.Entities {
		out.Entities[k] = v
	}
	for k, v := range s.Refs {
		out.Refs[k] = v
	}
	for k, v := range s.Requests {
		out.Requests[k] = v
	}
	return out
}
