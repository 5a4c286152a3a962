// Package classify turns raw watcher events into the compile scheduler's
// work queue: it debounces bursts into a single batch, reconciles that
// batch against disk state, recovers from directory-level events, and
// categorizes each change so the scheduler knows what kind of rebuild it
// implies.
package classify

import "github.com/tola-rs/tola/internal/core"

// ChangeKind mirrors watch.EventKind at the classifier layer, after
// per-path fusion has collapsed a burst of raw events into one.
type ChangeKind int

const (
	Created ChangeKind = iota
	Modified
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	default:
		return "removed"
	}
}

// Change is one (path, kind) pair after debounce fusion.
type Change struct {
	Path core.SourcePath
	Kind ChangeKind
}

// DebouncedEvents is the output of a completed debounce window: the fused
// set of changes ready for classification and routing.
type DebouncedEvents []Change

// Split partitions the batch into created, modified, and removed path
// lists, the shape the router needs to apply its ordering rules.
func (d DebouncedEvents) Split() (created, modified, removed []core.SourcePath) {
	for _, c := range d {
		switch c.Kind {
		case Created:
			created = append(created, c.Path)
		case Modified:
			modified = append(modified, c.Path)
		case Removed:
			removed = append(removed, c.Path)
		}
	}
	return
}

// Category is the six-way classification of a changed path.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryContent
	CategoryAsset
	CategoryConfig
	CategoryDeps
	CategoryOutput
)

func (c Category) Name() string {
	switch c {
	case CategoryContent:
		return "content"
	case CategoryAsset:
		return "asset"
	case CategoryConfig:
		return "config"
	case CategoryDeps:
		return "deps"
	case CategoryOutput:
		return "output"
	default:
		return "unknown"
	}
}

// IsContent reports whether this category is a compilable content file,
// as opposed to asset/config/deps/output/unknown.
func (c Category) IsContent() bool { return c == CategoryContent }
