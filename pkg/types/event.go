// Lifecycle events consumed by the cache.
package types

import "time"

// Event kinds, used for logging and metrics.
const (
	EventRequestSent       = "request_sent"
	EventFetchSucceeded    = "fetch_succeeded"
	EventFetchFailed       = "fetch_failed"
	EventGenericBootstrap  = "generic_bootstrap"
	EventInitializeDataKey = "initialize_data_key"
	EventUpdateEntity      = "update_entity"
)

// Event is one of the lifecycle events below. Each store applies its own
// transition to every event it receives.
type Event interface {
	Kind() string
	// Key returns the data key the event targets, or "" for entity-level events.
	Key() string
}

// RequestSent marks a fetch for DataKey as in flight.
type RequestSent struct {
	DataKey   string
	Method    string
	RequestID string
}

// FetchSucceeded carries the outcome of a successful fetch or a bootstrap.
// At most one of pagination, delete and replace applies, in that order of
// precedence: IsNextPage, then RefToDelete, then wholesale replacement.
type FetchSucceeded struct {
	DataKey     string
	RequestID   string
	IsNextPage  bool
	RefToDelete *ResourceKey
	Bootstrap   bool
	Fragment    Fragment
	Ref         Ref
	At          time.Time
}

// FetchFailed records a failed fetch verbatim.
type FetchFailed struct {
	DataKey   string
	RequestID string
	Name      string
	Message   string
	Errors    []string
	At        time.Time
}

// GenericBootstrap stores a raw, non-resource payload under DataKey.
type GenericBootstrap struct {
	DataKey string
	Value   any
}

// InitializeDataKey seeds DataKey with a caller-supplied ref, no fetch involved.
type InitializeDataKey struct {
	DataKey string
	Ref     Ref
}

// UpdateEntity merges partial attributes into an existing entity.
type UpdateEntity struct {
	Type       string
	ID         string
	Attributes map[string]any
}

func (RequestSent) Kind() string       { return EventRequestSent }
func (FetchSucceeded) Kind() string    { return EventFetchSucceeded }
func (FetchFailed) Kind() string       { return EventFetchFailed }
func (GenericBootstrap) Kind() string  { return EventGenericBootstrap }
func (InitializeDataKey) Kind() string { return EventInitializeDataKey }
func (UpdateEntity) Kind() string      { return EventUpdateEntity }

func (e RequestSent) Key() string       { return e.DataKey }
func (e FetchSucceeded) Key() string    { return e.DataKey }
func (e FetchFailed) Key() string       { return e.DataKey }
func (e GenericBootstrap) Key() string  { return e.DataKey }
func (e InitializeDataKey) Key() string { return e.DataKey }
func (UpdateEntity) Key() string        { return "" }

// RequestKey returns the request ID an outcome event answers, or "" when the
// event is not a request outcome.
func RequestKey(ev Event) string {
	switch e := ev.(type) {
	case FetchSucceeded:
		if e.Bootstrap {
			return ""
		}
		return e.RequestID
	case FetchFailed:
		return e.RequestID
	default:
		return ""
	}
}
