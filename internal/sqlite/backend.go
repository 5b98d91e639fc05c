package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/refcache/pkg/types"
)

// dbFile is the SQLite file created in DataDir on every Attach.
const dbFile = "refcache.db"

// Backend persists cache snapshots using SQLite as the query engine and
// JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// syncStrategy is immediate or on_close. With on_close, Save only
	// updates SQLite and dirty marks the JSONL files for rewrite at Detach.
	syncStrategy string
	dirty        bool
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

var _ types.Backend = (*Backend)(nil)

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, builds a fresh SQLite schema and
// loads the JSONL files into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The database is a disposable index over the JSONL files.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}

	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	config.DataDir = dataDir
	b.db = db
	b.config = config
	b.syncStrategy = config.GetSyncStrategy()
	b.dirty = false
	b.attached = true

	return nil
}

// Detach releases all resources held by the backend.
// With the on_close strategy, unsaved JSONL changes are written first.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.dirty {
		if err := b.persistLocked(); err != nil {
			return fmt.Errorf("flush pending writes: %w", err)
		}
		b.dirty = false
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// Load returns the state held in SQLite. Entities, refs and request
// records that fail to decode are skipped.
func (b *Backend) Load() (*types.State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	recs, err := queryRecords(b.db)
	if err != nil {
		return nil, err
	}
	return recs.state(), nil
}

// Save replaces the stored state with s. SQLite is updated in one
// transaction; JSONL files are rewritten immediately or at Detach depending
// on the sync strategy.
func (b *Backend) Save(s *types.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	if s == nil {
		s = types.NewState()
	}

	recs := recordsFromState(s)
	if err := replaceAll(b.db, recs); err != nil {
		return err
	}

	if b.syncStrategy == types.SyncOnClose {
		b.dirty = true
		return nil
	}
	return writeAllJSONL(b.config.DataDir, recs)
}

// persistLocked rewrites every JSONL file from the SQLite tables.
// Caller must hold b.mu.
func (b *Backend) persistLocked() error {
	recs, err := queryRecords(b.db)
	if err != nil {
		return err
	}
	return writeAllJSONL(b.config.DataDir, recs)
}

// writeAllJSONL writes each record set to its JSONL file.
func writeAllJSONL(dataDir string, recs records) error {
	entities, err := marshalRecords(recs.entities)
	if err != nil {
		return err
	}
	refs, err := marshalRecords(recs.refs)
	if err != nil {
		return err
	}
	requests, err := marshalRecords(recs.requests)
	if err != nil {
		return err
	}

	if err := writeJSONL(filepath.Join(dataDir, entitiesJSONL), entities); err != nil {
		return fmt.Errorf("persisting %s: %w", entitiesJSONL, err)
	}
	if err := writeJSONL(filepath.Join(dataDir, refsJSONL), refs); err != nil {
		return fmt.Errorf("persisting %s: %w", refsJSONL, err)
	}
	if err := writeJSONL(filepath.Join(dataDir, requestsJSONL), requests); err != nil {
		return fmt.Errorf("persisting %s: %w", requestsJSONL, err)
	}
	return nil
}
