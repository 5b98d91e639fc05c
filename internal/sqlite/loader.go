// This file implements JSONL loading for startup.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. jsonColumns hold JSON values that are stored re-encoded as text.
var jsonlTableMapping = []struct {
	file        string
	table       string
	columns     []string
	jsonColumns map[string]bool
}{
	{
		file:        entitiesJSONL,
		table:       "entities",
		columns:     []string{"type", "id", "attributes", "relationships"},
		jsonColumns: map[string]bool{"attributes": true, "relationships": true},
	},
	{
		file:        refsJSONL,
		table:       "refs",
		columns:     []string{"data_key", "entities", "is_collection", "generic", "links", "meta", "raw"},
		jsonColumns: map[string]bool{"entities": true, "links": true, "meta": true, "raw": true},
	},
	{
		file:        requestsJSONL,
		table:       "requests",
		columns:     []string{"data_key", "status", "is_loading", "is_loaded", "is_error", "pending", "request_id", "fetched_at", "name", "errors"},
		jsonColumns: map[string]bool{"errors": true},
	},
}

// loadAllJSONL reads each JSONL file from DataDir and inserts records into the
// corresponding SQLite tables. Loading is transactional: all succeed or the
// database remains empty. Malformed lines are skipped and unknown fields are
// ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		path := filepath.Join(dataDir, mapping.file)
		records, err := readJSONL(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}

		if len(records) == 0 {
			continue
		}

		if err := insertRecords(tx, mapping.table, mapping.columns, mapping.jsonColumns, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}

	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only
// columns listed in the mapping are extracted; records that violate
// constraints (a missing key, a duplicate) are skipped.
func insertRecords(tx *sql.Tx, table string, columns []string, jsonColumns map[string]bool, records []json.RawMessage) error {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		skip := false
		for i, col := range columns {
			val, ok := obj[col]
			if !ok {
				args[i] = nil
				continue
			}
			if jsonColumns[col] {
				if val == nil {
					args[i] = nil
					continue
				}
				b, err := json.Marshal(val)
				if err != nil {
					skip = true
					break
				}
				args[i] = string(b)
				continue
			}
			args[i] = val
		}
		if skip {
			continue
		}

		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
	}

	return nil
}
