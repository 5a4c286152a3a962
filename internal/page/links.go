package page

import (
	"sync"

	"github.com/tola-rs/tola/internal/core"
)

// LinkGraph tracks outgoing/incoming inter-page links, keyed by
// permalink. Self-links are excluded: a page linking to itself doesn't
// count as a backlink relationship.
type LinkGraph struct {
	mu       sync.RWMutex
	linksTo  map[core.Permalink]map[core.Permalink]bool
	linkedBy map[core.Permalink]map[core.Permalink]bool
}

// NewLinkGraph returns an empty link graph.
func NewLinkGraph() *LinkGraph {
	return &LinkGraph{
		linksTo:  make(map[core.Permalink]map[core.Permalink]bool),
		linkedBy: make(map[core.Permalink]map[core.Permalink]bool),
	}
}

// Record replaces from's outgoing link set with targets, updating the
// reverse index accordingly. Self-links (from == target) are dropped.
func (g *LinkGraph) Record(from core.Permalink, targets []core.Permalink) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for old := range g.linksTo[from] {
		if by := g.linkedBy[old]; by != nil {
			delete(by, from)
		}
	}
	set := make(map[core.Permalink]bool, len(targets))
	for _, t := range targets {
		if t == from {
			continue
		}
		set[t] = true
		if g.linkedBy[t] == nil {
			g.linkedBy[t] = make(map[core.Permalink]bool)
		}
		g.linkedBy[t][from] = true
	}
	g.linksTo[from] = set
}

// RemovePage clears a page's outgoing links and its entries in every
// other page's incoming-link set.
func (g *LinkGraph) RemovePage(p core.Permalink) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for target := range g.linksTo[p] {
		if by := g.linkedBy[target]; by != nil {
			delete(by, p)
		}
	}
	delete(g.linksTo, p)

	for from := range g.linkedBy[p] {
		if to := g.linksTo[from]; to != nil {
			delete(to, p)
		}
	}
	delete(g.linkedBy, p)
}

// LinksFrom returns the permalinks p links to.
func (g *LinkGraph) LinksFrom(p core.Permalink) []core.Permalink {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return keys(g.linksTo[p])
}

// LinkedBy returns the permalinks that link to p.
func (g *LinkGraph) LinkedBy(p core.Permalink) []core.Permalink {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return keys(g.linkedBy[p])
}

func keys(m map[core.Permalink]bool) []core.Permalink {
	out := make([]core.Permalink, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
