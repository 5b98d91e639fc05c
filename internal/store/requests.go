package store

import (
	"time"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// reduceRequests applies ev to the request status slice. Each transition
// starts from the key's prior record, so IsLoaded and FetchedAt carry over
// while pending. A new request clears the previous error: IsError, Name and
// Errors only describe a key whose status is error.
func reduceRequests(prev map[string]*types.RequestStatus, ev types.Event, now time.Time) (map[string]*types.RequestStatus, error) {
	switch e := ev.(type) {
	case types.RequestSent:
		rec := prior(prev, e.DataKey)
		method := e.Method
		if method == "" {
			method = types.MethodGet
		}
		rec.Status = types.StatusPending
		rec.IsLoading = true
		rec.IsError = false
		rec.Name = ""
		rec.Errors = nil
		rec.Pending = method
		rec.RequestID = e.RequestID
		return putRequest(prev, e.DataKey, rec), nil

	case types.FetchSucceeded:
		if e.Bootstrap {
			return prev, nil
		}
		rec := prior(prev, e.DataKey)
		at := stamp(e.At, now)
		rec.Status = types.StatusSuccess
		rec.IsLoading = false
		rec.IsLoaded = true
		rec.IsError = false
		rec.Pending = ""
		rec.FetchedAt = &at
		rec.Name = ""
		rec.Errors = nil
		if e.RequestID != "" {
			rec.RequestID = e.RequestID
		}
		return putRequest(prev, e.DataKey, rec), nil

	case types.FetchFailed:
		rec := prior(prev, e.DataKey)
		at := stamp(e.At, now)
		rec.Status = types.StatusError
		rec.IsLoading = false
		rec.IsLoaded = false
		rec.IsError = true
		rec.Pending = ""
		rec.FetchedAt = &at
		rec.Name = e.Name
		rec.Errors = failureMessages(e)
		if e.RequestID != "" {
			rec.RequestID = e.RequestID
		}
		return putRequest(prev, e.DataKey, rec), nil

	default:
		return prev, nil
	}
}

// prior returns a private copy of the key's record, or a not-called record.
func prior(m map[string]*types.RequestStatus, dataKey string) *types.RequestStatus {
	if rec, ok := m[dataKey]; ok && rec != nil {
		return rec.Clone()
	}
	rec := types.NotCalled()
	return &rec
}

func failureMessages(e types.FetchFailed) []string {
	if len(e.Errors) > 0 {
		out := make([]string, len(e.Errors))
		copy(out, e.Errors)
		return out
	}
	return []string{e.Message}
}

func stamp(at, now time.Time) time.Time {
	if at.IsZero() {
		return now
	}
	return at
}

func putRequest(prev map[string]*types.RequestStatus, dataKey string, rec *types.RequestStatus) map[string]*types.RequestStatus {
	next := make(map[string]*types.RequestStatus, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[dataKey] = rec
	return next
}
