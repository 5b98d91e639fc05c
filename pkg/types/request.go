// Request lifecycle records held by the Request Status Store.
package types

import "time"

// Status is the lifecycle state of the latest request for a data key.
type Status string

// Request statuses. A key with no record is StatusNotCalled.
const (
	StatusNotCalled Status = "not_called"
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// HTTP-like methods recorded while a request is pending.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// validMethods is the set of methods accepted on request-sent.
var validMethods = map[string]bool{
	MethodGet:    true,
	MethodPost:   true,
	MethodPatch:  true,
	MethodDelete: true,
}

// ValidMethod reports whether m is a recognized request method.
func ValidMethod(m string) bool {
	return validMethods[m]
}

// RequestStatus describes the latest request issued for a data key.
// IsLoading, IsLoaded and IsError are kept consistent with Status by the
// transitions that produce the record.
type RequestStatus struct {
	Status    Status     `json:"status"`
	IsLoading bool       `json:"is_loading"`
	IsLoaded  bool       `json:"is_loaded"`
	IsError   bool       `json:"is_error"`
	Pending   string     `json:"pending,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	Name      string     `json:"name,omitempty"`
	Errors    []string   `json:"errors,omitempty"`
}

// NotCalled is the status reported for a data key with no record.
func NotCalled() RequestStatus {
	return RequestStatus{Status: StatusNotCalled}
}

// Clone returns a copy that shares no slices or pointers with s.
func (s *RequestStatus) Clone() *RequestStatus {
	if s == nil {
		return nil
	}
	out := *s
	if s.FetchedAt != nil {
		t := *s.FetchedAt
		out.FetchedAt = &t
	}
	if s.Errors != nil {
		out.Errors = make([]string, len(s.Errors))
		copy(out.Errors, s.Errors)
	}
	return &out
}
