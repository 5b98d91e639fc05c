// Unit tests for JSONL loading with forward compatibility.
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// openSchemaDB returns an in-memory database with the cache schema applied.
func openSchemaDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestLoadJSONLUnknownFields(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		jsonl    string
		table    string
		wantRows int
		checkSQL string
		checkVal string
	}{
		{
			name:     "entities with unknown fields load successfully",
			file:     entitiesJSONL,
			jsonl:    `{"type":"users","id":"1","attributes":{"name":"Ada"},"relationships":{},"revision":7}` + "\n",
			table:    "entities",
			wantRows: 1,
			checkSQL: "SELECT attributes FROM entities WHERE type = 'users' AND id = '1'",
			checkVal: `{"name":"Ada"}`,
		},
		{
			name:     "refs with unknown fields load successfully",
			file:     refsJSONL,
			jsonl:    `{"data_key":"users","entities":[{"type":"users","id":"1"}],"is_collection":true,"generic":false,"ttl":30}` + "\n",
			table:    "refs",
			wantRows: 1,
			checkSQL: "SELECT entities FROM refs WHERE data_key = 'users'",
			checkVal: `[{"id":"1","type":"users"}]`,
		},
		{
			name:     "requests with unknown fields load successfully",
			file:     requestsJSONL,
			jsonl:    `{"data_key":"users","status":"success","is_loaded":true,"retries":2}` + "\n",
			table:    "requests",
			wantRows: 1,
			checkSQL: "SELECT status FROM requests WHERE data_key = 'users'",
			checkVal: "success",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.jsonl), 0o644))

			db := openSchemaDB(t)
			require.NoError(t, loadAllJSONL(db, dir))

			assert.Equal(t, tt.wantRows, countRows(t, db, tt.table))

			var got string
			require.NoError(t, db.QueryRow(tt.checkSQL).Scan(&got))
			assert.Equal(t, tt.checkVal, got)
		})
	}
}

func TestLoadJSONLMalformedAndInvalidRecordsSkipped(t *testing.T) {
	dir := t.TempDir()
	content := `{"type":"users","id":"1","attributes":{},"relationships":{}}
this is not json
{"type":"users"}
{"type":"users","id":"2","attributes":{},"relationships":{}}
{"type":"users","id":"2","attributes":{"dup":true},"relationships":{}}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, entitiesJSONL), []byte(content), 0o644))

	refs := `{"entities":[],"is_collection":false}
{"data_key":"a","entities":[],"is_collection":false}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, refsJSONL), []byte(refs), 0o644))

	db := openSchemaDB(t)
	require.NoError(t, loadAllJSONL(db, dir))

	assert.Equal(t, 2, countRows(t, db, "entities"), "missing id and duplicate key are skipped")
	assert.Equal(t, 1, countRows(t, db, "refs"), "missing data_key is skipped")
}

func TestLoadJSONLEmptyAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, entitiesJSONL), nil, 0o644))

	db := openSchemaDB(t)
	require.NoError(t, loadAllJSONL(db, dir))

	for _, table := range []string{"entities", "refs", "requests"} {
		assert.Zero(t, countRows(t, db, table), table)
	}
}

func TestBackendAttachWithHandWrittenJSONL(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		entitiesJSONL: `{"type":"users","id":"1","attributes":{"name":"Ada"},"relationships":{},"extra":"ignored"}` + "\n",
		refsJSONL: `{"data_key":"users","entities":[{"type":"users","id":"1"}],"is_collection":true,"links":{"self":"/users"}}` + "\n" +
			`{"data_key":"config","generic":true,"raw":[1,2,3]}` + "\n",
		requestsJSONL: `{"data_key":"users","status":"success","is_loaded":true,"fetched_at":"2025-01-15T10:30:00Z","errors":null}` + "\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	b := newAttached(t, dir, "")
	defer b.Detach()

	s, err := b.Load()
	require.NoError(t, err)

	e, ok := s.Entity(types.ResourceKey{Type: "users", ID: "1"})
	require.True(t, ok)
	assert.Equal(t, "Ada", e.Attributes["name"])
	assert.Empty(t, e.Relationships)

	users, ok := s.Ref("users")
	require.True(t, ok)
	assert.True(t, users.IsCollection)
	assert.Equal(t, []types.ResourceKey{{Type: "users", ID: "1"}}, users.Entities)
	assert.Equal(t, "/users", users.Links["self"])

	cfg, ok := s.Ref("config")
	require.True(t, ok)
	assert.True(t, cfg.IsGeneric())
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, cfg.Raw)

	st := s.Request("users")
	assert.Equal(t, types.StatusSuccess, st.Status)
	assert.True(t, st.IsLoaded)
	require.NotNil(t, st.FetchedAt)
	assert.Equal(t, 2025, st.FetchedAt.Year())
	assert.Nil(t, st.Errors)
}

func TestBackendRoundTripPreservesKnownFieldsOnly(t *testing.T) {
	dir := t.TempDir()
	line := `{"type":"users","id":"1","attributes":{"name":"Ada"},"relationships":{},"legacy":"x"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, entitiesJSONL), []byte(line), 0o644))

	b := newAttached(t, dir, "")
	s, err := b.Load()
	require.NoError(t, err)
	require.NoError(t, b.Save(s))
	require.NoError(t, b.Detach())

	records, err := readJSONL(filepath.Join(dir, entitiesJSONL))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"type":"users","id":"1","attributes":{"name":"Ada"},"relationships":{}}`, string(records[0]))
}
