package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/diagnostics"
)

// persistedError is the JSON shape of one errors.json entry.
type persistedError struct {
	Source  string `json:"path"`
	URLPath string `json:"url_path"`
	Error   string `json:"error"`
}

// PersistErrors writes errors.json from snap. If the content would be
// byte-identical to what's already on disk, it skips the write entirely
// to avoid mtime churn that would otherwise make every idle tick look
// like a filesystem change to the watcher.
func PersistErrors(root string, snap *diagnostics.Snapshot) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	entries := snap.All()
	out := make([]persistedError, 0, len(entries))
	for _, e := range entries {
		out = append(out, persistedError{Source: string(e.Source), URLPath: string(e.URLPath), Error: e.Error})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "errors.json")
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}

// RestoreErrors reads errors.json back into a fresh diagnostics.Snapshot.
// A missing file is not an error: it means no errors were outstanding at
// the last clean shutdown.
func RestoreErrors(root string) (*diagnostics.Snapshot, error) {
	snap := diagnostics.New()
	data, err := os.ReadFile(filepath.Join(root, Dir, "errors.json"))
	if os.IsNotExist(err) {
		return snap, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []persistedError
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		snap.Push(diagnostics.Entry{
			Source:  core.SourcePath(e.Source),
			URLPath: core.Permalink(e.URLPath),
			Error:   e.Error,
		})
	}
	return snap, nil
}
