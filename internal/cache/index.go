// Package cache persists the build cache under <root>/.tola/cache/: an
// index.json describing every cached page, one .vdom binary per page, and
// an errors.json mirroring internal/diagnostics. Restoring this cache on
// a cold start is what makes `tola serve` skip recompiling unchanged
// pages after a restart.
package cache

import (
	"strings"
	"time"

	"github.com/tola-rs/tola/internal/core"
)

// Dir is the cache directory, relative to the site workspace root.
const Dir = ".tola/cache"

// FileInfo is one page's entry in index.json: which .vdom file holds it,
// the source file's content hash at compile time, and the content hash of
// every dependency it accessed, so a later run can detect staleness
// without recompiling.
type FileInfo struct {
	Filename     string            `json:"filename"`
	SourcePath   string            `json:"source_path"`
	SourceHash   string            `json:"source_hash"`
	Dependencies map[string]string `json:"dependencies"`
}

// Index is the JSON shape of index.json.
type Index struct {
	Entries   map[string]FileInfo `json:"entries"` // keyed by permalink
	CreatedAt time.Time           `json:"created_at"`
}

// NewIndex returns an empty index stamped with the current time.
func NewIndex(now time.Time) *Index {
	return &Index{Entries: make(map[string]FileInfo), CreatedAt: now}
}

// URLToFilename derives a cache filename from a permalink: "/" becomes
// "_", "/blog/post" becomes "_blog_post". Any "%" or "_" already in the
// permalink is percent-escaped first ("/a_b" becomes "_a%5Fb"), so two
// distinct permalinks never share a filename.
func URLToFilename(permalink core.Permalink) string {
	s := string(permalink)
	if s == "/" {
		return "_"
	}
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "_", "%5F")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
