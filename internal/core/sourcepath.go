package core

import "path/filepath"

// SourcePath is an absolute, symlink-resolved filesystem path identifying
// a source file or directory tracked by the pipeline. Two SourcePath
// values are comparable with ==.
type SourcePath string

// NewSourcePath normalizes raw into an absolute path. It does not touch
// the filesystem beyond filepath.Abs; callers that need symlinks resolved
// (e.g. the watcher attaching a root) should use ResolveSourcePath.
func NewSourcePath(raw string) (SourcePath, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", err
	}
	return SourcePath(filepath.Clean(abs)), nil
}

// ResolveSourcePath normalizes raw and resolves symlinks, so that the same
// file reached through different symlinked paths compares equal.
func ResolveSourcePath(raw string) (SourcePath, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The path may not exist yet (e.g. a Created event racing the
		// watcher); fall back to the unresolved absolute path.
		return SourcePath(filepath.Clean(abs)), nil
	}
	return SourcePath(filepath.Clean(resolved)), nil
}

// String returns the path as a plain string.
func (p SourcePath) String() string { return string(p) }

// RelativeTo returns p expressed relative to root, or p unchanged if it is
// not contained in root.
func (p SourcePath) RelativeTo(root SourcePath) string {
	rel, err := filepath.Rel(string(root), string(p))
	if err != nil || len(rel) >= 2 && rel[:2] == ".." {
		return string(p)
	}
	return rel
}

// Under reports whether p is root itself or a descendant of root.
func (p SourcePath) Under(root SourcePath) bool {
	rel, err := filepath.Rel(string(root), string(p))
	if err != nil {
		return false
	}
	return rel == "." || (len(rel) < 2 || rel[:2] != "..")
}
