package collect

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	coreerrors "github.com/intelcore/intelcore/internal/errors"
)

// CursorStore persists the per-source last-successful-collection
// timestamp. The whole mapping is read and written as a unit. Cursors
// only move forward after a sweep completes without error; they are
// never rolled back.
type CursorStore struct {
	path string
}

// NewCursorStore creates a CursorStore backed by the given JSON file.
func NewCursorStore(path string) *CursorStore {
	return &CursorStore{path: path}
}

// Get returns the cursor for a source. The second return is false when
// no sweep of that source has succeeded yet.
func (c *CursorStore) Get(source string) (time.Time, bool, error) {
	state, err := c.load()
	if err != nil {
		return time.Time{}, false, err
	}

	raw, ok := state[source]
	if !ok {
		return time.Time{}, false, nil
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, coreerrors.NewCollectionError(
			coreerrors.CodeSweepFailed, "parse cursor for "+source, err)
	}
	return ts, true, nil
}

// Set advances the cursor for a source. Callers invoke this only after
// a sweep completed successfully.
func (c *CursorStore) Set(source string, ts time.Time) error {
	state, err := c.load()
	if err != nil {
		return err
	}
	state[source] = ts.UTC().Format(time.RFC3339Nano)
	return c.save(state)
}

func (c *CursorStore) load() (map[string]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, coreerrors.NewCollectionError(coreerrors.CodeSweepFailed, "read cursor file", err)
	}

	state := map[string]string{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, coreerrors.NewCollectionError(coreerrors.CodeSweepFailed, "parse cursor file", err)
	}
	return state, nil
}

func (c *CursorStore) save(state map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return coreerrors.NewCollectionError(coreerrors.CodeSweepFailed, "create cursor directory", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return coreerrors.NewCollectionError(coreerrors.CodeSweepFailed, "encode cursor file", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return coreerrors.NewCollectionError(coreerrors.CodeSweepFailed, "write cursor file", err)
	}
	return nil
}
