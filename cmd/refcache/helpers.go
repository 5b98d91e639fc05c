// Shared helpers for refcache CLI commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/refcache/internal/observe"
	"github.com/mesh-intelligence/refcache/internal/sqlite"
	"github.com/mesh-intelligence/refcache/pkg/refcache"
	"github.com/mesh-intelligence/refcache/pkg/types"
)

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must detach it.
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend:      settings.backend,
		DataDir:      dataDir,
		SyncStrategy: settings.syncStrategy,
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}

// session is one command's view of the persisted cache.
type session struct {
	ctx     context.Context
	name    string
	backend *sqlite.Backend
	cache   *refcache.Cache
	tel     *observe.Telemetry
}

// openSession attaches the backend and loads the cache for cmd. It exits
// the process on failure.
func openSession(cmd *cobra.Command) *session {
	name := cmd.Name()
	backend, err := attachBackend()
	if err != nil {
		fail(name, exitSysError, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := observe.NewLogger(os.Stderr, logLevel())
	tel, err := observe.NewTelemetry(ctx, telemetryExporter(), os.Stderr)
	if err != nil {
		_ = backend.Detach()
		fail(name, exitUserError, err)
	}
	s := &session{
		ctx:     ctx,
		name:    name,
		backend: backend,
		tel:     tel,
		cache: refcache.New(
			refcache.WithLogger(logger),
			refcache.WithTracer(tel.Tracer()),
			refcache.WithMeter(tel.Meter()),
		),
	}
	if err := s.cache.Load(backend); err != nil {
		s.fail(exitSysError, err)
	}
	return s
}

// apply dispatches ev and saves the result. Rejected events are user errors.
func (s *session) apply(ev types.Event) {
	if err := s.cache.Dispatch(s.ctx, ev); err != nil {
		s.fail(exitCode(err), err)
	}
	if err := s.cache.Save(s.backend); err != nil {
		s.fail(exitSysError, err)
	}
}

// close detaches the backend, flushing deferred writes, and flushes
// telemetry.
func (s *session) close() {
	if err := s.backend.Detach(); err != nil {
		s.shutdownTelemetry()
		fail(s.name, exitSysError, err)
	}
	s.shutdownTelemetry()
}

// fail detaches the backend and exits with code.
func (s *session) fail(code int, err error) {
	_ = s.backend.Detach()
	s.shutdownTelemetry()
	fail(s.name, code, err)
}

func (s *session) shutdownTelemetry() {
	if err := s.tel.Shutdown(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, s.name+": telemetry:", err)
	}
}

// fail prints "name: err" to stderr and exits with code.
func fail(name string, code int, err error) {
	fmt.Fprintln(os.Stderr, name+":", err)
	os.Exit(code)
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// parseResourceKey parses "type:id".
func parseResourceKey(s string) (types.ResourceKey, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok {
		return types.ResourceKey{}, fmt.Errorf("resource key %q must be type:id", s)
	}
	return types.ResourceKey{Type: typ, ID: id}, nil
}

// refOptions turns the --collection flag into normalizer options. The flag
// only applies when it was set explicitly.
func refOptions(changed, collection bool) []refcache.RefOption {
	if !changed {
		return nil
	}
	return []refcache.RefOption{refcache.AsCollection(collection)}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// exitCode maps err to exitUserError or exitSysError.
func exitCode(err error) int {
	if isUserError(err) {
		return exitUserError
	}
	return exitSysError
}

// isUserError reports whether err is caused by the caller's input rather than
// by storage.
func isUserError(err error) bool {
	for _, target := range []error{
		types.ErrEntityNotFound,
		types.ErrPaginateUnfetched,
		types.ErrInvalidDataKey,
		types.ErrInvalidMethod,
		types.ErrUnknownEvent,
		types.ErrInvalidLinkage,
		types.ErrUnrecognizedShape,
		types.ErrRelationshipNotFound,
		refcache.ErrInvalidDocument,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
