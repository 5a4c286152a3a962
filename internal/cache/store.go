package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"

	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/vdom"
)

// Entry is one page's in-memory cached state: its last-diffed Indexed
// document and a monotonically increasing version counter bumped on every
// successful recompile, used to detect stale-write races.
type Entry struct {
	Doc     *vdom.IndexedDocument
	Version uint64
}

// Store is the in-memory VDOM cache, backed by a sync.Map so that reads
// (the common case: looking up the prior version to diff against) never
// contend with each other. Writes still happen one key at a time, which
// is all a per-page cache entry ever needs.
type Store struct {
	m sync.Map // core.Permalink -> Entry
}

// NewStore returns an empty cache store.
func NewStore() *Store { return &Store{} }

// Get returns the cached entry for permalink, if any.
func (s *Store) Get(permalink core.Permalink) (Entry, bool) {
	v, ok := s.m.Load(permalink)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Set stores permalink's entry. Callers update the cache only after the
// corresponding patch/reload message has been accepted for broadcast, so
// a crash between compiling and broadcasting never leaves the cache ahead
// of what clients have actually seen.
func (s *Store) Set(permalink core.Permalink, e Entry) {
	s.m.Store(permalink, e)
}

// Delete removes permalink's cache entry, e.g. on content removal.
func (s *Store) Delete(permalink core.Permalink) {
	s.m.Delete(permalink)
}

// Rekey moves the cache entry at oldURL to newURL, used when a permalink
// changes and the prior version must still be diffed against under its
// new key.
func (s *Store) Rekey(oldURL, newURL core.Permalink) {
	if v, ok := s.m.LoadAndDelete(oldURL); ok {
		s.m.Store(newURL, v)
	}
}

// HashFile returns a stable content fingerprint for the file at path.
// sha256 substitutes for the original implementation's blake3 (see
// DESIGN.md): no pack dependency carries a BLAKE3 binding, and freshness
// comparison only needs a stable fingerprint, not cryptographic strength.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IsFileModified reports whether source's content hash, or any of its
// recorded dependencies' hashes, differs from what info has on record.
func IsFileModified(info FileInfo) (bool, error) {
	sourceHash, err := HashFile(info.SourcePath)
	if err != nil {
		return true, err
	}
	if sourceHash != info.SourceHash {
		return true, nil
	}
	for dep, wantHash := range info.Dependencies {
		gotHash, err := HashFile(dep)
		if err != nil {
			return true, nil
		}
		if gotHash != wantHash {
			return true, nil
		}
	}
	return false, nil
}
