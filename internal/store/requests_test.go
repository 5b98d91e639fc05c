package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

func TestRequestLifecycle(t *testing.T) {
	fetched := time.Unix(1_700_000_500, 0)
	s := types.NewState()
	assert.Equal(t, types.StatusNotCalled, s.Request("k").Status)

	s = mustApply(t, s, types.RequestSent{DataKey: "k", Method: types.MethodGet, RequestID: "r1"})
	st := s.Request("k")
	assert.Equal(t, types.StatusPending, st.Status)
	assert.True(t, st.IsLoading)
	assert.Equal(t, types.MethodGet, st.Pending)
	assert.Equal(t, "r1", st.RequestID)

	s = mustApply(t, s, types.FetchSucceeded{DataKey: "k", At: fetched})
	st = s.Request("k")
	assert.Equal(t, types.StatusSuccess, st.Status)
	assert.False(t, st.IsLoading)
	assert.True(t, st.IsLoaded)
	assert.False(t, st.IsError)
	assert.Empty(t, st.Pending)
	require.NotNil(t, st.FetchedAt)
	assert.True(t, fetched.Equal(*st.FetchedAt))

	s = mustApply(t, s, types.RequestSent{DataKey: "k", Method: types.MethodPatch})
	st = s.Request("k")
	assert.Equal(t, types.StatusPending, st.Status)
	assert.True(t, st.IsLoaded, "prior load survives a refresh")
	assert.Equal(t, types.MethodPatch, st.Pending)

	s = mustApply(t, s, types.FetchFailed{DataKey: "k", Name: "HTTPError", Message: "502 Bad Gateway"})
	st = s.Request("k")
	assert.Equal(t, types.StatusError, st.Status)
	assert.True(t, st.IsError)
	assert.False(t, st.IsLoaded)
	assert.Empty(t, st.Pending)
	assert.Equal(t, "HTTPError", st.Name)
	assert.Equal(t, []string{"502 Bad Gateway"}, st.Errors)

	s = mustApply(t, s, types.RequestSent{DataKey: "k"})
	assert.Equal(t, types.StatusPending, s.Request("k").Status)
	assert.Equal(t, types.MethodGet, s.Request("k").Pending)

	s = mustApply(t, s, types.FetchSucceeded{DataKey: "k"})
	st = s.Request("k")
	assert.Equal(t, types.StatusSuccess, st.Status)
	assert.False(t, st.IsError)
	assert.Empty(t, st.Errors)
	assert.Empty(t, st.Name)
}

func TestRequestSentClearsPriorError(t *testing.T) {
	fetched := time.Unix(1_700_000_100, 0)
	s := mustApply(t, types.NewState(), types.FetchSucceeded{DataKey: "k", At: fetched})
	s = mustApply(t, s, types.FetchFailed{DataKey: "k", Name: "E", Errors: []string{"boom"}})
	s = mustApply(t, s, types.RequestSent{DataKey: "k"})

	st := s.Request("k")
	assert.Equal(t, types.StatusPending, st.Status)
	assert.True(t, st.IsLoading)
	assert.False(t, st.IsError)
	assert.Empty(t, st.Name)
	assert.Empty(t, st.Errors)
	require.NotNil(t, st.FetchedAt, "fetch time carries over while pending")
}

func TestFailureKeepsErrorArray(t *testing.T) {
	s := mustApply(t, types.NewState(), types.FetchFailed{
		DataKey: "k",
		Name:    "ValidationError",
		Message: "ignored",
		Errors:  []string{"title is blank", "body is blank"},
	})
	assert.Equal(t, []string{"title is blank", "body is blank"}, s.Request("k").Errors)
}

func TestSuccessNeverFlagsError(t *testing.T) {
	events := []types.Event{
		types.RequestSent{DataKey: "k"},
		types.FetchFailed{DataKey: "k", Name: "E", Message: "m"},
		types.RequestSent{DataKey: "k"},
		types.FetchSucceeded{DataKey: "k"},
		types.FetchFailed{DataKey: "k", Name: "E", Message: "m"},
		types.FetchSucceeded{DataKey: "k"},
	}
	s := types.NewState()
	for _, ev := range events {
		s = mustApply(t, s, ev)
		st := s.Request("k")
		if st.Status == types.StatusSuccess {
			assert.False(t, st.IsError)
		}
		if st.Status == types.StatusError {
			assert.True(t, st.IsError)
			assert.False(t, st.IsLoaded)
		}
		assert.Equal(t, st.Status == types.StatusPending, st.IsLoading)
		assert.Equal(t, st.Status == types.StatusError, st.IsError)
	}
}

func TestBootstrapLeavesRequestStatus(t *testing.T) {
	s := mustApply(t, types.NewState(), types.FetchSucceeded{DataKey: "k", Bootstrap: true, Ref: types.Ref{Entities: []types.ResourceKey{post("1")}}})
	_, ok := s.Requests["k"]
	assert.False(t, ok)
	_, ok = s.Ref("k")
	assert.True(t, ok)
}

func TestStatusEntriesAreNeverRemoved(t *testing.T) {
	s := mustApply(t, types.NewState(), types.RequestSent{DataKey: "a"})
	del := post("1")
	s = mustApply(t, s, types.FetchSucceeded{DataKey: "b", RefToDelete: &del})
	s = mustApply(t, s, types.GenericBootstrap{DataKey: "a", Value: 1})
	_, ok := s.Requests["a"]
	assert.True(t, ok)
}

func TestApplyValidation(t *testing.T) {
	tests := []struct {
		name    string
		ev      types.Event
		wantErr error
	}{
		{"request without key", types.RequestSent{}, types.ErrInvalidDataKey},
		{"request with bad method", types.RequestSent{DataKey: "k", Method: "BREW"}, types.ErrInvalidMethod},
		{"success without key", types.FetchSucceeded{}, types.ErrInvalidDataKey},
		{"failure without key", types.FetchFailed{}, types.ErrInvalidDataKey},
		{"bootstrap without key", types.GenericBootstrap{}, types.ErrInvalidDataKey},
		{"init without key", types.InitializeDataKey{}, types.ErrInvalidDataKey},
		{"nil event", nil, types.ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(types.NewState(), tt.ev, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
