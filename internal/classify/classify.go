package classify

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tola-rs/tola/internal/address"
	"github.com/tola-rs/tola/internal/core"
)

// Roots supplies the path-category boundaries the classifier needs to
// categorize a changed path without re-deriving them from config on every
// event.
type Roots struct {
	ContentRoot core.SourcePath
	DepRoots    []core.SourcePath
	AssetRoots  []core.SourcePath
	ConfigPath  core.SourcePath
	OutputDir   core.SourcePath
}

// Classifier runs the effectful half of the pipeline: correcting a
// debounced batch against live disk state, recovering from directory-
// level events, promoting untracked content creates, and filtering out
// noise before handing the batch to the router.
type Classifier struct {
	roots   Roots
	space   *address.Space
}

// New returns a Classifier consulting space to resolve tracked sources
// during directory-event recovery and untracked-create promotion.
func New(roots Roots, space *address.Space) *Classifier {
	return &Classifier{roots: roots, space: space}
}

// Classify runs the full correction pipeline described in spec.md §4.2:
// existence-based correction, directory-event recovery, untracked-content
// promotion, then the actionability filter.
func (c *Classifier) Classify(batch DebouncedEvents) DebouncedEvents {
	batch = c.correctByExistence(batch)
	batch = c.recoverFromDirEvents(batch)
	batch = c.promoteUntracked(batch)
	batch = c.filterActionable(batch)
	return batch
}

// correctByExistence re-labels a change whose kind disagrees with current
// disk reality: a path recorded Created/Modified that no longer exists on
// disk is corrected to Removed, and vice versa.
func (c *Classifier) correctByExistence(batch DebouncedEvents) DebouncedEvents {
	out := make(DebouncedEvents, 0, len(batch))
	for _, ch := range batch {
		_, err := os.Stat(string(ch.Path))
		exists := err == nil
		switch {
		case !exists && ch.Kind != Removed:
			ch.Kind = Removed
		case exists && ch.Kind == Removed:
			ch.Kind = Modified
		}
		out = append(out, ch)
	}
	return out
}

// recoverFromDirEvents expands any directory-path entry in the batch into
// concrete file-level changes: tracked sources under that directory which
// no longer exist become Removed, and untracked files that now exist
// become Created.
func (c *Classifier) recoverFromDirEvents(batch DebouncedEvents) DebouncedEvents {
	var dirs []core.SourcePath
	var files DebouncedEvents
	for _, ch := range batch {
		if info, err := os.Stat(string(ch.Path)); err == nil && info.IsDir() {
			dirs = append(dirs, ch.Path)
			continue
		}
		files = append(files, ch)
	}
	if len(dirs) == 0 {
		return batch
	}

	seen := make(map[core.SourcePath]bool, len(files))
	for _, ch := range files {
		seen[ch.Path] = true
	}

	for _, dir := range dirs {
		files = append(files, c.detectDisappeared(dir, seen)...)
		files = append(files, c.detectAppeared(dir, seen)...)
	}
	return files
}

func (c *Classifier) detectDisappeared(dir core.SourcePath, seen map[core.SourcePath]bool) DebouncedEvents {
	var out DebouncedEvents
	// Any tracked source whose permalink lookup still resolves under dir
	// but whose file no longer exists on disk has disappeared.
	for src := range trackedUnder(c.space, dir) {
		if seen[src] {
			continue
		}
		if _, err := os.Stat(string(src)); os.IsNotExist(err) {
			out = append(out, Change{Path: src, Kind: Removed})
			seen[src] = true
		}
	}
	return out
}

func (c *Classifier) detectAppeared(dir core.SourcePath, seen map[core.SourcePath]bool) DebouncedEvents {
	var out DebouncedEvents
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := core.SourcePath(filepath.Join(string(dir), e.Name()))
		if seen[p] {
			continue
		}
		if _, ok := c.space.PermalinkFor(p); !ok {
			out = append(out, Change{Path: p, Kind: Created})
			seen[p] = true
		}
	}
	return out
}

// trackedUnder returns every source path currently registered in space
// that lives under dir. It is small enough to recompute per directory
// event since directory-level fsnotify events are rare relative to
// file-level ones.
func trackedUnder(space *address.Space, dir core.SourcePath) map[core.SourcePath]bool {
	out := make(map[core.SourcePath]bool)
	for _, src := range spaceSources(space) {
		if src.Under(dir) {
			out[src] = true
		}
	}
	return out
}

// spaceSources is a narrow accessor kept here (rather than widening
// address.Space's public surface) since only the directory-recovery path
// needs to enumerate every tracked source.
func spaceSources(space *address.Space) []core.SourcePath {
	return space.Sources()
}

// promoteUntracked upgrades an untracked source's Modified event to
// Created: fsnotify sometimes reports a brand-new file's first write as
// Write rather than Create (e.g. editors that write via a temp file and
// rename). Deps and Asset categories are excluded — only content files
// are promoted, since only content files enter the address space.
func (c *Classifier) promoteUntracked(batch DebouncedEvents) DebouncedEvents {
	out := make(DebouncedEvents, 0, len(batch))
	for _, ch := range batch {
		if ch.Kind == Modified && c.Categorize(ch.Path) == CategoryContent {
			if _, tracked := c.space.PermalinkFor(ch.Path); !tracked {
				ch.Kind = Created
			}
		}
		out = append(out, ch)
	}
	return out
}

// filterActionable drops noise: a Created/Modified path must currently be
// a regular file, and a Removed path is only kept if it was tracked in
// the address space or falls under the output directory (output-tree
// deletions still need to trigger a recompile of the owning page).
func (c *Classifier) filterActionable(batch DebouncedEvents) DebouncedEvents {
	out := make(DebouncedEvents, 0, len(batch))
	for _, ch := range batch {
		switch ch.Kind {
		case Created, Modified:
			if info, err := os.Stat(string(ch.Path)); err != nil || info.IsDir() {
				continue
			}
			out = append(out, ch)
		case Removed:
			if _, tracked := c.space.PermalinkFor(ch.Path); tracked || ch.Path.Under(c.roots.OutputDir) {
				out = append(out, ch)
			}
		}
	}
	return out
}

// Categorize assigns a Category to path based on the configured roots.
// Config always wins (even if the path also happens to live under a dep
// root), since a config change invalidates everything else.
func (c *Classifier) Categorize(path core.SourcePath) Category {
	switch {
	case path == c.roots.ConfigPath:
		return CategoryConfig
	case path.Under(c.roots.OutputDir):
		return CategoryOutput
	case path.Under(c.roots.ContentRoot) && core.IsContentFile(string(path)):
		return CategoryContent
	case underAny(path, c.roots.DepRoots):
		return CategoryDeps
	case underAny(path, c.roots.AssetRoots):
		return CategoryAsset
	default:
		if isBoringPath(path) {
			return CategoryUnknown
		}
		return CategoryUnknown
	}
}

func underAny(path core.SourcePath, roots []core.SourcePath) bool {
	for _, r := range roots {
		if path.Under(r) {
			return true
		}
	}
	return false
}

// isBoringPath identifies editor temp/backup/dotfile noise excluded
// before it ever reaches the debounce map (applied by the watcher-facing
// caller, exposed here so the router's tests can exercise it directly).
func isBoringPath(path core.SourcePath) bool {
	base := filepath.Base(string(path))
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"):
		return true
	case strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasSuffix(base, ".bak"):
		return true
	default:
		return false
	}
}

// IsBoringPath reports whether path is editor noise that should never
// enter the debounce map at all.
func IsBoringPath(path core.SourcePath) bool { return isBoringPath(path) }
