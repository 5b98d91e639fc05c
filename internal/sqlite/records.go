// This file converts between cache state, JSONL records and SQLite rows.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// records is one snapshot in its persisted form.
type records struct {
	entities []entityJSON
	refs     []refJSON
	requests []requestJSON
}

// recordsFromState flattens s into records ordered by key, so that the
// same state always produces the same files.
func recordsFromState(s *types.State) records {
	var out records

	for key, e := range s.Entities {
		if e == nil {
			continue
		}
		out.entities = append(out.entities, entityJSON{
			Type:          key.Type,
			ID:            key.ID,
			Attributes:    nonNilMap(e.Attributes),
			Relationships: nonNilMap(e.Relationships),
		})
	}
	sort.Slice(out.entities, func(i, j int) bool {
		if out.entities[i].Type != out.entities[j].Type {
			return out.entities[i].Type < out.entities[j].Type
		}
		return out.entities[i].ID < out.entities[j].ID
	})

	for dataKey, r := range s.Refs {
		if r == nil {
			continue
		}
		rec := refJSON{
			DataKey:      dataKey,
			IsCollection: r.IsCollection,
			Generic:      r.Generic,
			Links:        r.Links,
			Meta:         r.Meta,
			Raw:          r.Raw,
		}
		if !r.Generic {
			rec.Entities = make([]entityKey, 0, len(r.Entities))
			for _, k := range r.Entities {
				rec.Entities = append(rec.Entities, entityKey{Type: k.Type, ID: k.ID})
			}
		}
		out.refs = append(out.refs, rec)
	}
	sort.Slice(out.refs, func(i, j int) bool { return out.refs[i].DataKey < out.refs[j].DataKey })

	for dataKey, st := range s.Requests {
		if st == nil {
			continue
		}
		rec := requestJSON{
			DataKey:   dataKey,
			Status:    string(st.Status),
			IsLoading: st.IsLoading,
			IsLoaded:  st.IsLoaded,
			IsError:   st.IsError,
			Pending:   st.Pending,
			RequestID: st.RequestID,
			Name:      st.Name,
			Errors:    st.Errors,
		}
		if st.FetchedAt != nil {
			ts := st.FetchedAt.UTC().Format(time.RFC3339Nano)
			rec.FetchedAt = &ts
		}
		out.requests = append(out.requests, rec)
	}
	sort.Slice(out.requests, func(i, j int) bool { return out.requests[i].DataKey < out.requests[j].DataKey })

	return out
}

// state rebuilds a State from records.
func (r records) state() *types.State {
	s := types.NewState()

	for _, rec := range r.entities {
		key := types.ResourceKey{Type: rec.Type, ID: rec.ID}
		s.Entities[key] = &types.Entity{
			Type:          rec.Type,
			ID:            rec.ID,
			Attributes:    nonNilMap(rec.Attributes),
			Relationships: nonNilMap(rec.Relationships),
		}
	}

	for _, rec := range r.refs {
		ref := &types.Ref{
			IsCollection: rec.IsCollection,
			Generic:      rec.Generic,
			Links:        rec.Links,
			Meta:         rec.Meta,
			Raw:          rec.Raw,
		}
		if !rec.Generic {
			ref.Entities = make([]types.ResourceKey, 0, len(rec.Entities))
			for _, k := range rec.Entities {
				ref.Entities = append(ref.Entities, types.ResourceKey{Type: k.Type, ID: k.ID})
			}
		}
		s.Refs[rec.DataKey] = ref
	}

	for _, rec := range r.requests {
		st := &types.RequestStatus{
			Status:    types.Status(rec.Status),
			IsLoading: rec.IsLoading,
			IsLoaded:  rec.IsLoaded,
			IsError:   rec.IsError,
			Pending:   rec.Pending,
			RequestID: rec.RequestID,
			Name:      rec.Name,
			Errors:    rec.Errors,
		}
		if rec.FetchedAt != nil {
			if t, err := time.Parse(time.RFC3339Nano, *rec.FetchedAt); err == nil {
				st.FetchedAt = &t
			}
		}
		s.Requests[rec.DataKey] = st
	}

	return s
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// replaceAll swaps the contents of every table for recs in one transaction.
func replaceAll(db *sql.DB, recs records) error {
	encoded := make(map[string][]json.RawMessage, len(jsonlTableMapping))
	var err error
	if encoded["entities"], err = marshalRecords(recs.entities); err != nil {
		return err
	}
	if encoded["refs"], err = marshalRecords(recs.refs); err != nil {
		return err
	}
	if encoded["requests"], err = marshalRecords(recs.requests); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		if _, err := tx.Exec("DELETE FROM " + mapping.table); err != nil {
			return fmt.Errorf("clearing %s: %w", mapping.table, err)
		}
		if err := insertRecords(tx, mapping.table, mapping.columns, mapping.jsonColumns, encoded[mapping.table]); err != nil {
			return fmt.Errorf("saving %s: %w", mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save transaction: %w", err)
	}
	return nil
}

// queryRecords reads every table back into records, ordered by key.
func queryRecords(db *sql.DB) (records, error) {
	var out records

	rows, err := db.Query("SELECT type, id, attributes, relationships FROM entities ORDER BY type, id")
	if err != nil {
		return out, fmt.Errorf("querying entities: %w", err)
	}
	for rows.Next() {
		var rec entityJSON
		var attrs, rels sql.NullString
		if err := rows.Scan(&rec.Type, &rec.ID, &attrs, &rels); err != nil {
			rows.Close()
			return out, fmt.Errorf("scanning entity: %w", err)
		}
		if decodeColumn(attrs, &rec.Attributes) != nil || decodeColumn(rels, &rec.Relationships) != nil {
			continue
		}
		out.entities = append(out.entities, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, err
	}

	rows, err = db.Query("SELECT data_key, entities, is_collection, generic, links, meta, raw FROM refs ORDER BY data_key")
	if err != nil {
		return out, fmt.Errorf("querying refs: %w", err)
	}
	for rows.Next() {
		var rec refJSON
		var entities, links, meta, raw sql.NullString
		var isCollection, generic sql.NullBool
		if err := rows.Scan(&rec.DataKey, &entities, &isCollection, &generic, &links, &meta, &raw); err != nil {
			rows.Close()
			return out, fmt.Errorf("scanning ref: %w", err)
		}
		if decodeColumn(entities, &rec.Entities) != nil ||
			decodeColumn(links, &rec.Links) != nil ||
			decodeColumn(meta, &rec.Meta) != nil ||
			decodeColumn(raw, &rec.Raw) != nil {
			continue
		}
		rec.IsCollection = isCollection.Bool
		rec.Generic = generic.Bool
		out.refs = append(out.refs, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, err
	}

	rows, err = db.Query(`SELECT data_key, status, is_loading, is_loaded, is_error,
		pending, request_id, fetched_at, name, errors FROM requests ORDER BY data_key`)
	if err != nil {
		return out, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rec requestJSON
		var pending, requestID, fetchedAt, name, errs sql.NullString
		var isLoading, isLoaded, isError sql.NullBool
		if err := rows.Scan(&rec.DataKey, &rec.Status, &isLoading, &isLoaded, &isError,
			&pending, &requestID, &fetchedAt, &name, &errs); err != nil {
			return out, fmt.Errorf("scanning request: %w", err)
		}
		if decodeColumn(errs, &rec.Errors) != nil {
			continue
		}
		rec.IsLoading = isLoading.Bool
		rec.IsLoaded = isLoaded.Bool
		rec.IsError = isError.Bool
		rec.Pending = pending.String
		rec.RequestID = requestID.String
		rec.Name = name.String
		if fetchedAt.Valid {
			ts := fetchedAt.String
			rec.FetchedAt = &ts
		}
		out.requests = append(out.requests, rec)
	}
	return out, rows.Err()
}

// decodeColumn unmarshals a JSON text column into dst. NULL leaves dst
// untouched.
func decodeColumn(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}
