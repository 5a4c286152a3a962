package watch

import (
	"os"
	"strings"

	"github.com/tola-rs/tola/internal/core"
)

// RootSet is the collected set of paths the watcher must attach to:
// the content root, every dependency root, nested and flattened asset
// source roots, the config file, and the output directory.
type RootSet struct {
	ContentRoot core.SourcePath
	DepRoots    []core.SourcePath
	AssetRoots  []core.SourcePath
	ConfigPath  core.SourcePath
	OutputDir   core.SourcePath
}

// CollectWatchPaths normalizes and dedupes a RootSet into the final list
// of paths to pass to Watcher.New, creating the output directory if it
// doesn't exist yet (fsnotify can't watch a path that isn't there).
func CollectWatchPaths(rs RootSet) ([]core.SourcePath, error) {
	if err := os.MkdirAll(string(rs.OutputDir), 0o755); err != nil {
		return nil, err
	}

	all := []core.SourcePath{rs.ContentRoot, rs.ConfigPath, rs.OutputDir}
	all = append(all, rs.DepRoots...)
	all = append(all, rs.AssetRoots...)

	return dedupeDescendants(all), nil
}

// dedupeDescendants drops any path that is a descendant of another path
// already in the set, keeping only the outermost root among overlapping
// trees (e.g. the output directory never needs a separate watch if it's
// already nested under the content root).
func dedupeDescendants(paths []core.SourcePath) []core.SourcePath {
	var out []core.SourcePath
	for _, p := range paths {
		redundant := false
		for _, other := range paths {
			if p == other {
				continue
			}
			if strings.HasPrefix(string(p), string(other)+string(os.PathSeparator)) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, p)
		}
	}
	return dedupeEqual(out)
}

func dedupeEqual(paths []core.SourcePath) []core.SourcePath {
	seen := make(map[core.SourcePath]bool, len(paths))
	var out []core.SourcePath
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
