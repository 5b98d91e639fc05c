package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

func post(id string) types.ResourceKey {
	return types.ResourceKey{Type: "post", ID: id}
}

func TestNextPageAppendsInOrder(t *testing.T) {
	s := mustApply(t, types.NewState(), types.FetchSucceeded{
		DataKey: "feed",
		Ref: types.Ref{
			Entities:     []types.ResourceKey{post("1"), post("2")},
			IsCollection: true,
			Links:        map[string]any{"next": "/posts?page=2"},
		},
	})
	s = mustApply(t, s, types.FetchSucceeded{
		DataKey:    "feed",
		IsNextPage: true,
		Ref: types.Ref{
			Entities:     []types.ResourceKey{post("3")},
			IsCollection: true,
			Links:        map[string]any{"next": "/posts?page=3"},
			Meta:         map[string]any{"page": 2},
		},
	})

	ref, ok := s.Ref("feed")
	require.True(t, ok)
	assert.Equal(t, []types.ResourceKey{post("1"), post("2"), post("3")}, ref.Entities)
	assert.Equal(t, map[string]any{"next": "/posts?page=3"}, ref.Links)
	assert.Equal(t, map[string]any{"page": 2}, ref.Meta)
}

func TestNextPageWithoutRefFails(t *testing.T) {
	s := types.NewState()
	_, err := Apply(s, types.FetchSucceeded{DataKey: "feed", IsNextPage: true, Ref: types.Ref{Entities: []types.ResourceKey{post("1")}}}, time.Now())
	assert.ErrorIs(t, err, types.ErrPaginateUnfetched)
	_, ok := s.Ref("feed")
	assert.False(t, ok, "no empty ref may be synthesized")
}

func TestNextPageOnGenericFails(t *testing.T) {
	s := mustApply(t, types.NewState(), types.GenericBootstrap{DataKey: "cfg", Value: map[string]any{"a": 1}})
	_, err := Apply(s, types.FetchSucceeded{DataKey: "cfg", IsNextPage: true}, time.Now())
	assert.ErrorIs(t, err, types.ErrPaginateUnfetched)
}

func TestPaginationTakesPrecedenceOverDelete(t *testing.T) {
	s := mustApply(t, types.NewState(), types.FetchSucceeded{DataKey: "feed", Ref: types.Ref{Entities: []types.ResourceKey{post("1")}, IsCollection: true}})
	del := post("1")
	s = mustApply(t, s, types.FetchSucceeded{DataKey: "feed", IsNextPage: true, RefToDelete: &del, Ref: types.Ref{Entities: []types.ResourceKey{post("2")}, IsCollection: true}})

	assert.Equal(t, []types.ResourceKey{post("1"), post("2")}, s.Refs["feed"].Entities)
}

func TestDeleteCascadesAcrossDataKeys(t *testing.T) {
	s := types.NewState()
	s = mustApply(t, s, types.FetchSucceeded{DataKey: "feed", Ref: types.Ref{Entities: []types.ResourceKey{post("1"), post("2"), post("3")}, IsCollection: true}})
	s = mustApply(t, s, types.FetchSucceeded{DataKey: "post:2", Ref: types.Ref{Entities: []types.ResourceKey{post("2")}}})
	s = mustApply(t, s, types.FetchSucceeded{DataKey: "other", Ref: types.Ref{Entities: []types.ResourceKey{post("3")}}})
	s = mustApply(t, s, types.GenericBootstrap{DataKey: "raw", Value: []any{"post", "2"}})
	otherBefore := s.Refs["other"]

	del := post("2")
	s = mustApply(t, s, types.FetchSucceeded{DataKey: "post:2", RefToDelete: &del})

	for key, ref := range s.Refs {
		assert.False(t, ref.Contains(del), "data key %q still references %s", key, del)
	}
	assert.Equal(t, []types.ResourceKey{post("1"), post("3")}, s.Refs["feed"].Entities)
	assert.Empty(t, s.Refs["post:2"].Entities)
	assert.Same(t, otherBefore, s.Refs["other"], "untouched refs keep identity")
	assert.Equal(t, []any{"post", "2"}, s.Refs["raw"].Raw)
}

func TestDeleteWithIncompleteKeyIsNoop(t *testing.T) {
	s := mustApply(t, types.NewState(), types.FetchSucceeded{DataKey: "feed", Ref: types.Ref{Entities: []types.ResourceKey{post("1")}, IsCollection: true}})
	refs := s.Refs
	entities := s.Entities

	next := mustApply(t, s, types.FetchSucceeded{
		DataKey:     "feed",
		RefToDelete: &types.ResourceKey{Type: "post"},
		Fragment:    types.Fragment{"post": {"7": {Attributes: map[string]any{"title": "x"}}}},
	})
	assert.Equal(t, refs, next.Refs)
	assert.Equal(t, entities, next.Entities)
	_, ok := next.Entity(post("7"))
	assert.False(t, ok, "fragment of an incomplete delete is not merged")
	assert.Equal(t, types.StatusSuccess, next.Request("feed").Status)
}

func TestReplaceIsWholesale(t *testing.T) {
	s := mustApply(t, types.NewState(), types.FetchSucceeded{DataKey: "k", Ref: types.Ref{
		Entities: []types.ResourceKey{post("1")}, IsCollection: true, Meta: map[string]any{"old": true},
	}})
	s = mustApply(t, s, types.FetchSucceeded{DataKey: "k", Ref: types.Ref{Entities: []types.ResourceKey{post("9")}}})

	ref := s.Refs["k"]
	assert.Equal(t, []types.ResourceKey{post("9")}, ref.Entities)
	assert.False(t, ref.IsCollection)
	assert.Nil(t, ref.Meta)
}

func TestGenericBootstrapStoresCopy(t *testing.T) {
	payload := map[string]any{"flags": []any{"a"}}
	s := mustApply(t, types.NewState(), types.GenericBootstrap{DataKey: "cfg", Value: payload})
	payload["flags"].([]any)[0] = "changed"

	ref := s.Refs["cfg"]
	require.True(t, ref.IsGeneric())
	assert.Equal(t, map[string]any{"flags": []any{"a"}}, ref.Raw)
	assert.Equal(t, types.StatusNotCalled, s.Request("cfg").Status)
}

func TestInitializeDataKeyStoresCopy(t *testing.T) {
	ref := types.Ref{Entities: []types.ResourceKey{post("5")}}
	s := mustApply(t, types.NewState(), types.InitializeDataKey{DataKey: "child", Ref: ref})
	ref.Entities[0] = post("6")

	assert.Equal(t, []types.ResourceKey{post("5")}, s.Refs["child"].Entities)
	assert.Empty(t, s.Requests)
}

func TestRequestSentLeavesRefs(t *testing.T) {
	s := mustApply(t, types.NewState(), types.FetchSucceeded{DataKey: "k", Ref: types.Ref{Entities: []types.ResourceKey{post("1")}}})
	refs := s.Refs
	s = mustApply(t, s, types.RequestSent{DataKey: "k", Method: types.MethodGet})
	assert.Equal(t, refs, s.Refs)
}
