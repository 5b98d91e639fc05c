package store

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// successMode selects the single ref transition a FetchSucceeded applies.
type successMode int

const (
	modeReplace successMode = iota
	modeNextPage
	modeDelete
)

// modeOf applies the precedence pagination > delete > replace. A delete
// with an incomplete (type, id) is a no-op for the entity and ref slices.
func modeOf(ev types.FetchSucceeded) successMode {
	if ev.IsNextPage {
		return modeNextPage
	}
	if ev.RefToDelete != nil {
		return modeDelete
	}
	return modeReplace
}

// Apply returns the state that results from ev. now stamps request
// outcomes whose At field is zero.
func Apply(prev *types.State, ev types.Event, now time.Time) (*types.State, error) {
	if prev == nil {
		prev = types.NewState()
	}
	if err := validate(ev); err != nil {
		return nil, err
	}

	entities, err := reduceEntities(prev.Entities, ev)
	if err != nil {
		return nil, err
	}
	refs, err := reduceRefs(prev.Refs, ev)
	if err != nil {
		return nil, err
	}
	requests, err := reduceRequests(prev.Requests, ev, now)
	if err != nil {
		return nil, err
	}

	return &types.State{
		Entities: entities,
		Refs:     refs,
		Requests: requests,
	}, nil
}

func validate(ev types.Event) error {
	switch e := ev.(type) {
	case types.RequestSent:
		if e.DataKey == "" {
			return types.ErrInvalidDataKey
		}
		if e.Method != "" && !types.ValidMethod(e.Method) {
			return fmt.Errorf("%w: %q", types.ErrInvalidMethod, e.Method)
		}
	case types.FetchSucceeded, types.FetchFailed, types.GenericBootstrap, types.InitializeDataKey:
		if ev.Key() == "" {
			return types.ErrInvalidDataKey
		}
	case types.UpdateEntity:
	case nil:
		return types.ErrUnknownEvent
	default:
		return fmt.Errorf("%w: %T", types.ErrUnknownEvent, ev)
	}
	return nil
}
