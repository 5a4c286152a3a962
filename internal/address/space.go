// Package address implements the bidirectional permalink<->source-path
// map (spec.md "Address Space"): the single source of truth for where a
// compiled page lives on the site and which source file produced it, plus
// the conflict index tracking permalinks claimed by more than one source.
package address

import (
	"sync"

	"github.com/tola-rs/tola/internal/core"
)

// UpdateKind is the return variant of Register/RegisterAlias: whether this call
// created a fresh mapping, changed an existing one's permalink, left it
// unchanged, or discovered a conflict.
type UpdateKind int

const (
	UpdateCreated UpdateKind = iota
	UpdateChanged
	UpdateUnchanged
	UpdateConflict
)

// Update describes the effect of registering a source path's permalink.
type Update struct {
	Kind      UpdateKind
	OldURL    core.Permalink // UpdateChanged only
	Conflict  core.SourcePath // UpdateConflict only: the other source already holding this permalink
}

// Space is the single-writer, many-reader address map. All methods are
// safe for concurrent use; writers take a short exclusive critical
// section and never perform IO while holding the lock.
type Space struct {
	mu sync.RWMutex

	bySource map[core.SourcePath]core.Permalink
	byURL    map[core.Permalink]core.SourcePath
	aliases  map[core.Permalink]core.SourcePath
}

// New returns an empty address space.
func New() *Space {
	return &Space{
		bySource: make(map[core.SourcePath]core.Permalink),
		byURL:    make(map[core.Permalink]core.SourcePath),
		aliases:  make(map[core.Permalink]core.SourcePath),
	}
}

// Register associates source with permalink, returning how the mapping
// changed. A permalink already claimed by a different source path is a
// conflict and is not applied (the prior mapping is left intact, and the
// build must fail per spec.md's error-handling rules).
func (s *Space) Register(source core.SourcePath, permalink core.Permalink) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.byURL[permalink]; ok && owner != source {
		return Update{Kind: UpdateConflict, Conflict: owner}
	}

	prev, existed := s.bySource[source]
	if existed && prev == permalink {
		return Update{Kind: UpdateUnchanged}
	}

	if existed {
		delete(s.byURL, prev)
	}
	s.bySource[source] = permalink
	s.byURL[permalink] = source

	if existed {
		return Update{Kind: UpdateChanged, OldURL: prev}
	}
	return Update{Kind: UpdateCreated}
}

// RegisterAlias adds an additional permalink resolving to source, without
// displacing its canonical permalink. Aliases participate in conflict
// detection the same as canonical permalinks.
func (s *Space) RegisterAlias(source core.SourcePath, alias core.Permalink) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.byURL[alias]; ok && owner != source {
		return Update{Kind: UpdateConflict, Conflict: owner}
	}
	if owner, ok := s.aliases[alias]; ok && owner != source {
		return Update{Kind: UpdateConflict, Conflict: owner}
	}
	s.aliases[alias] = source
	return Update{Kind: UpdateCreated}
}

// Remove deletes source's mapping entirely (its canonical permalink and
// any aliases pointing at it), used on content deletion.
func (s *Space) Remove(source core.SourcePath) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if permalink, ok := s.bySource[source]; ok {
		delete(s.byURL, permalink)
		delete(s.bySource, source)
	}
	for alias, owner := range s.aliases {
		if owner == source {
			delete(s.aliases, alias)
		}
	}
}

// Lookup resolves a permalink to its source path (canonical or alias).
func (s *Space) Lookup(permalink core.Permalink) (core.SourcePath, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if src, ok := s.byURL[permalink]; ok {
		return src, true
	}
	src, ok := s.aliases[permalink]
	return src, ok
}

// PermalinkFor returns the canonical permalink registered for source.
func (s *Space) PermalinkFor(source core.SourcePath) (core.Permalink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.bySource[source]
	return p, ok
}

// Sources returns every source path with a canonical permalink currently
// registered; a source that only owns aliases is not included. Used by internal/classify's directory-event recovery to
// find tracked sources under a changed directory.
func (s *Space) Sources() []core.SourcePath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.SourcePath, 0, len(s.bySource))
	for src := range s.bySource {
		out = append(out, src)
	}
	return out
}

// All returns a snapshot of every permalink -> source mapping currently
// registered, used by internal/cache.Persist to know which source's
// content hash to record alongside each cached page.
func (s *Space) All() map[core.Permalink]core.SourcePath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[core.Permalink]core.SourcePath, len(s.byURL))
	for url, src := range s.byURL {
		out[url] = src
	}
	return out
}

// Aliases returns a snapshot of every alias->source mapping, used by
// internal/validate's orphan-alias check (an alias whose source is no
// longer registered as anyone's canonical permalink).
func (s *Space) Aliases() map[core.Permalink]core.SourcePath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[core.Permalink]core.SourcePath, len(s.aliases))
	for alias, src := range s.aliases {
		out[alias] = src
	}
	return out
}

// Conflicts returns every permalink currently claimed by more than one
// source, used by internal/validate's build-time conflict report.
func (s *Space) Conflicts() map[core.Permalink][]core.SourcePath {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claims := make(map[core.Permalink][]core.SourcePath)
	for src, url := range s.bySource {
		claims[url] = append(claims[url], src)
	}
	for url, src := range s.aliases {
		claims[url] = append(claims[url], src)
	}
	out := make(map[core.Permalink][]core.SourcePath)
	for url, srcs := range claims {
		if len(srcs) > 1 {
			out[url] = srcs
		}
	}
	return out
}
