// Package asset tracks per-asset content versions so the scheduler can
// tell whether an asset change actually altered bytes (and is therefore
// worth a throttled active-page recompile) versus a touch with identical
// content (e.g. a build tool rewriting a file with the same bytes).
package asset

import (
	"sync"

	"github.com/tola-rs/tola/internal/cache"
	"github.com/tola-rs/tola/internal/core"
)

// Versions is a content-hash cache keyed by asset source path.
type Versions struct {
	mu   sync.Mutex
	hash map[core.SourcePath]string
}

// NewVersions returns an empty asset-version cache.
func NewVersions() *Versions {
	return &Versions{hash: make(map[core.SourcePath]string)}
}

// Changed hashes the file at path and reports whether it differs from the
// last hash recorded for it, updating the cache either way. A file that
// can't be read (e.g. it was just removed) is always reported changed.
func (v *Versions) Changed(path core.SourcePath) bool {
	hash, err := cache.HashFile(string(path))
	if err != nil {
		v.mu.Lock()
		delete(v.hash, path)
		v.mu.Unlock()
		return true
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	prev, ok := v.hash[path]
	v.hash[path] = hash
	return !ok || prev != hash
}

// Clear resets the version cache, used by a full rebuild.
func (v *Versions) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hash = make(map[core.SourcePath]string)
}
