// Package diagnostics holds the persisted compile-error state: one entry
// per source path with a failing compile, replaced on recompile and
// cleared the instant that source compiles clean again.
package diagnostics

import (
	"sync"

	"github.com/tola-rs/tola/internal/core"
)

// Entry is one persisted compile failure.
type Entry struct {
	Source  core.SourcePath
	URLPath core.Permalink
	Error   string
}

// Snapshot is the in-memory mirror of errors.json: the current set of
// failing sources, in the order they were first seen this run (so the
// scheduler can report a stable "primary" error per batch).
type Snapshot struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[core.SourcePath]int
}

// New returns an empty diagnostics snapshot.
func New() *Snapshot {
	return &Snapshot{index: make(map[core.SourcePath]int)}
}

// Push records or replaces the failure entry for e.Source.
func (s *Snapshot) Push(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[e.Source]; ok {
		s.entries[i] = e
		return
	}
	s.index[e.Source] = len(s.entries)
	s.entries = append(s.entries, e)
}

// ClearFor removes the failure entry for source, if any.
func (s *Snapshot) ClearFor(source core.SourcePath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[source]
	if !ok {
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, source)
	for src, idx := range s.index {
		if idx > i {
			s.index[src] = idx - 1
		}
	}
}

// First returns the first recorded failure, used as a batch's "primary"
// error to surface in full; the rest are summarized by count.
func (s *Snapshot) First() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[0], true
}

// Count returns the number of currently failing sources.
func (s *Snapshot) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// IsEmpty reports whether no failures are currently recorded.
func (s *Snapshot) IsEmpty() bool { return s.Count() == 0 }

// All returns a snapshot copy of every current entry, in first-seen order.
func (s *Snapshot) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
