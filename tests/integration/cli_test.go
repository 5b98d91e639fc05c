// CLI integration tests for the fetch lifecycle of a data key.
package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedPage1 = `{
  "data": [
    {"type": "post", "id": "1", "attributes": {"title": "One"},
     "relationships": {"author": {"data": {"type": "person", "id": "7"}}}},
    {"type": "post", "id": "2", "attributes": {"title": "Two"}}
  ],
  "included": [{"type": "person", "id": "7", "attributes": {"name": "Ada"}}],
  "links": {"next": "/posts?page=2"}
}`

const feedPage2 = `{"data": [{"type": "post", "id": "3", "attributes": {"title": "Three"}}]}`

func TestInit(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRun("init")
	assert.Contains(t, result.Stdout, "refcache initialized successfully")

	for _, name := range []string{"entities.jsonl", "refs.jsonl", "requests.jsonl"} {
		_, err := os.Stat(filepath.Join(env.DataDir, name))
		assert.NoError(t, err, "expected %s", name)
	}

	// Idempotent.
	env.MustRun("init")
}

func TestVersion(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRun("version")
	assert.True(t, strings.HasPrefix(result.Stdout, "refcache v"))
	assert.Contains(t, result.Stdout, "github.com/mesh-intelligence/refcache")
}

func TestFetchLifecycle(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("init")

	// Not yet fetched.
	view := ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "feed").Stdout)["feed"]
	assert.Equal(t, "not_yet_fetched", view.Kind)
	assert.Equal(t, "not_called", view.Request.Status)

	id := strings.TrimSpace(env.MustRun("send", "feed").Stdout)
	require.NotEmpty(t, id)

	view = ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "feed").Stdout)["feed"]
	assert.Equal(t, "pending", view.Request.Status)
	assert.True(t, view.Request.IsLoading)
	assert.Equal(t, id, view.Request.RequestID)

	page1 := env.WriteFile("page1.json", feedPage1)
	env.MustRun("succeed", "feed", page1, "--request-id", id)

	view = ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "feed").Stdout)["feed"]
	assert.Equal(t, "collection", view.Kind)
	assert.Equal(t, "success", view.Request.Status)
	assert.True(t, view.Request.IsLoaded)
	assert.Equal(t, "/posts?page=2", view.Links["next"])
	items := view.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0]["id"])

	page2 := env.WriteFile("page2.json", feedPage2)
	env.MustRun("succeed", "feed", page2, "--next-page")

	view = ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "feed").Stdout)["feed"]
	items = view.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []any{"1", "2", "3"}, []any{items[0]["id"], items[1]["id"], items[2]["id"]})
}

func TestDeleteCascadesAcrossKeys(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("succeed", "feed", env.WriteFile("page1.json", feedPage1))
	env.MustRun("init-ref", "pinned", `{"data":[{"type":"post","id":"2"}]}`)

	env.MustRun("send", "delete-2", "--method", "DELETE")
	env.MustRun("succeed", "delete-2", "--delete", "post:2")

	views := ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "feed", "pinned").Stdout)
	feed := views["feed"].Items()
	require.Len(t, feed, 1)
	assert.Equal(t, "1", feed[0]["id"])
	assert.Empty(t, views["pinned"].Items())

	entities := ReadJSONLFile[map[string]any](t, filepath.Join(env.DataDir, "entities.jsonl"))
	for _, e := range entities {
		assert.False(t, e["type"] == "post" && e["id"] == "2", "deleted entity still persisted")
	}
}

func TestFailureRecorded(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("send", "feed")
	env.MustRun("fail", "feed", "--name", "Timeout", "--message", "upstream timed out")

	view := ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "feed").Stdout)["feed"]
	assert.Equal(t, "error", view.Request.Status)
	assert.True(t, view.Request.IsError)
	assert.Equal(t, "Timeout", view.Request.Name)
	assert.Equal(t, []string{"upstream timed out"}, view.Request.Errors)

	human := env.MustRun("get", "feed").Stdout
	assert.Contains(t, human, "error: upstream timed out")
}

func TestSucceedWithErrorsDocumentRecordsFailure(t *testing.T) {
	env := NewTestEnv(t)
	id := strings.TrimSpace(env.MustRun("send", "feed").Stdout)
	doc := env.WriteFile("err.json", `{"errors":[
  {"code":"not_found","detail":"no such feed"},
  {"status":"404","title":"Not Found"}
]}`)

	result := env.Run("succeed", "feed", doc, "--request-id", id)
	assert.Equal(t, 1, result.ExitCode, "stderr: %s", result.Stderr)
	assert.Contains(t, result.Stderr, "not_found")

	view := ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "feed").Stdout)["feed"]
	assert.Equal(t, "error", view.Request.Status)
	assert.False(t, view.Request.IsLoading)
	assert.True(t, view.Request.IsError)
	assert.Equal(t, "not_found", view.Request.Name)
	assert.Equal(t, []string{"no such feed", "Not Found"}, view.Request.Errors)
	assert.Equal(t, id, view.Request.RequestID)
}

func TestBootstrapGenericFromStdin(t *testing.T) {
	env := NewTestEnv(t)

	result := env.RunWithInput(`{"theme":"dark"}`, "bootstrap", "settings", "-", "--generic")
	require.Equal(t, 0, result.ExitCode, result.Stderr)

	view := ParseJSON[map[string]Resource](t, env.MustRun("--json", "get", "settings").Stdout)["settings"]
	assert.Equal(t, "raw", view.Kind)
	assert.Equal(t, map[string]any{"theme": "dark"}, view.Data)
	assert.Equal(t, "not_called", view.Request.Status, "bootstrap leaves request status alone")
}

func TestUpdateAndRelated(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("bootstrap", "feed", env.WriteFile("page1.json", feedPage1))

	env.MustRun("update", "person", "7", `{"name":"Ada L."}`)

	rel := ParseJSON[Resource](t, env.MustRun("--json", "related", "post", "1", "author").Stdout)
	assert.Equal(t, "single", rel.Kind)
	data, ok := rel.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Ada L."}, data["attributes"])
}

func TestKeys(t *testing.T) {
	env := NewTestEnv(t)
	assert.Equal(t, []string{}, ParseJSON[[]string](t, env.MustRun("--json", "keys").Stdout))

	env.MustRun("send", "b")
	env.MustRun("init-ref", "a", `{"data":null}`)

	assert.Equal(t, "a\nb\n", env.MustRun("keys").Stdout)
}

func TestExitCodes(t *testing.T) {
	env := NewTestEnv(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "update unknown entity", args: []string{"update", "post", "404", `{"a":1}`}, want: 1},
		{name: "paginate unfetched key", args: []string{"succeed", "feed", env.WriteFile("p2.json", feedPage2), "--next-page"}, want: 1},
		{name: "invalid method", args: []string{"send", "feed", "--method", "PUT"}, want: 1},
		{name: "not a document", args: []string{"succeed", "feed", env.WriteFile("bad.json", `{"hello":1}`)}, want: 1},
		{name: "missing file", args: []string{"bootstrap", "feed", filepath.Join(env.TempDir, "absent.json")}, want: 1},
		{name: "bad resource key", args: []string{"succeed", "feed", "--delete", "post"}, want: 1},
		{name: "unknown relationship", args: []string{"related", "post", "1", "author"}, want: 1},
		{name: "unknown command", args: []string{"frobnicate"}, want: 1},
		{name: "unknown telemetry exporter", args: []string{"keys", "--telemetry", "zipkin"}, want: 1},
		{name: "otlp without endpoint", args: []string{"keys", "--telemetry", "otlp"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.Run(tt.args...)
			assert.Equal(t, tt.want, result.ExitCode, "stderr: %s", result.Stderr)
		})
	}
}

func TestPersistedStateSurvivesAcrossInvocations(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("succeed", "feed", env.WriteFile("page1.json", feedPage1))

	refs := ReadJSONLFile[map[string]any](t, filepath.Join(env.DataDir, "refs.jsonl"))
	require.Len(t, refs, 1)
	assert.Equal(t, "feed", refs[0]["data_key"])
	assert.Equal(t, true, refs[0]["is_collection"])

	requests := ReadJSONLFile[map[string]any](t, filepath.Join(env.DataDir, "requests.jsonl"))
	require.Len(t, requests, 1)
	assert.Equal(t, "success", requests[0]["status"])
	assert.NotNil(t, requests[0]["fetched_at"])
}

func TestTelemetryStdout(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRun("--telemetry", "stdout", "send", "feed")
	assert.Contains(t, result.Stderr, "refcache.dispatch.request_sent")
	assert.Contains(t, result.Stderr, "refcache.events")
	assert.NotContains(t, result.Stdout, "refcache.dispatch")
}
