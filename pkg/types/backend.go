package types

import "errors"

// Backend persists cache state between processes.
// Callers attach to a backend, load or save snapshots, and detach when done.
type Backend interface {
	// Attach connects the Backend to the storage described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources and flushes deferred writes.
	// Idempotent: multiple calls succeed.
	Detach() error

	// Load returns the persisted state. An empty store yields an empty State.
	Load() (*State, error)

	// Save replaces the persisted state with s.
	Save(s *State) error
}

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
