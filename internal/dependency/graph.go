// Package dependency tracks which source files a compiled page accessed
// while building (frontmatter includes, partials, data files), so a
// change to a dependency can trigger recompilation of everything that
// reads it without re-scanning the whole site.
package dependency

import (
	"sync"

	"github.com/tola-rs/tola/internal/core"
)

// Graph maps each page's source to the dependencies it accessed during
// its last successful compile, plus the reverse index used to find every
// page affected by a changed dependency.
type Graph struct {
	mu        sync.RWMutex
	deps      map[core.SourcePath]map[core.SourcePath]bool
	dependents map[core.SourcePath]map[core.SourcePath]bool
}

// New returns an empty dependency graph.
func New() *Graph {
	return &Graph{
		deps:       make(map[core.SourcePath]map[core.SourcePath]bool),
		dependents: make(map[core.SourcePath]map[core.SourcePath]bool),
	}
}

// Record replaces source's dependency set, updating the reverse index.
// Each compile calls Record directly, once per compiled page, from
// whichever worker compiled it (including workers of a running parallel
// batch); there is no per-worker buffer flushed after the batch.
func (g *Graph) Record(source core.SourcePath, deps []core.SourcePath) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for old := range g.deps[source] {
		if d := g.dependents[old]; d != nil {
			delete(d, source)
		}
	}
	set := make(map[core.SourcePath]bool, len(deps))
	for _, d := range deps {
		set[d] = true
		if g.dependents[d] == nil {
			g.dependents[d] = make(map[core.SourcePath]bool)
		}
		g.dependents[d][source] = true
	}
	g.deps[source] = set
}

// Remove deletes source's dependency record and its entries in every
// dependent index.
func (g *Graph) Remove(source core.SourcePath) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for dep := range g.deps[source] {
		if d := g.dependents[dep]; d != nil {
			delete(d, source)
		}
	}
	delete(g.deps, source)
}

// Affected returns every source that depends on changed, directly.
func (g *Graph) Affected(changed core.SourcePath) []core.SourcePath {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]core.SourcePath, 0, len(g.dependents[changed]))
	for dep := range g.dependents[changed] {
		out = append(out, dep)
	}
	return out
}

// Clear resets the graph, used by a full rebuild.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deps = make(map[core.SourcePath]map[core.SourcePath]bool)
	g.dependents = make(map[core.SourcePath]map[core.SourcePath]bool)
}
