package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/dependency"
	"github.com/tola-rs/tola/internal/vdom"
)

// Persist writes index.json and one .vdom file per cached entry under
// root/Dir. It collects every entry into memory first and only then
// writes, so a failure partway through never leaves index.json
// referencing a .vdom file that was never written (the same
// collect-then-write discipline the original cache module uses).
// Each entry's Dependencies map is carried over unchanged from index;
// Persist itself records no dependency hashes, so an index written only
// by Persist restores an empty dependency graph.
func Persist(root string, store *Store, index *Index, source map[core.Permalink]core.SourcePath) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	type write struct {
		filename string
		data     []byte
	}
	var writes []write

	for permalink, src := range source {
		entry, ok := store.Get(permalink)
		if !ok {
			continue
		}
		data, err := vdom.Marshal(entry.Doc)
		if err != nil {
			return fmt.Errorf("marshal cache entry %s: %w", permalink, err)
		}
		filename := URLToFilename(permalink) + ".vdom"
		writes = append(writes, write{filename: filename, data: data})

		sourceHash, err := HashFile(string(src))
		if err != nil {
			sourceHash = ""
		}
		index.Entries[string(permalink)] = FileInfo{
			Filename:     filename,
			SourcePath:   string(src),
			SourceHash:   sourceHash,
			Dependencies: index.Entries[string(permalink)].Dependencies,
		}
	}

	for _, w := range writes {
		if err := os.WriteFile(filepath.Join(dir, w.filename), w.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", w.filename, err)
		}
	}

	indexData, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.json"), indexData, 0o644); err != nil {
		return fmt.Errorf("write index.json: %w", err)
	}
	return nil
}

// Restore reads index.json and every referenced .vdom file back into
// store, returning the index for freshness comparison on the next build.
// A missing cache directory is not an error: it means this is the first
// run, and HasCache will report false.
func Restore(root string, store *Store) (*Index, error) {
	dir := filepath.Join(root, Dir)
	indexPath := filepath.Join(dir, "index.json")

	data, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return NewIndex(time.Now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index.json: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("unmarshal index.json: %w", err)
	}
	if index.Entries == nil {
		index.Entries = make(map[string]FileInfo)
	}

	for permalinkStr, info := range index.Entries {
		docData, err := os.ReadFile(filepath.Join(dir, info.Filename))
		if err != nil {
			continue // a missing .vdom file just means that page recompiles fresh
		}
		doc, err := vdom.Unmarshal(docData)
		if err != nil {
			continue
		}
		store.Set(core.Permalink(permalinkStr), Entry{Doc: doc, Version: 1})
	}
	return &index, nil
}

// RestoreDependencyGraph replays an Index's per-entry dependency lists
// into a fresh dependency.Graph, used alongside Restore at cold start.
func RestoreDependencyGraph(index *Index) *dependency.Graph {
	g := dependency.New()
	for _, info := range index.Entries {
		deps := make([]core.SourcePath, 0, len(info.Dependencies))
		for dep := range info.Dependencies {
			deps = append(deps, core.SourcePath(dep))
		}
		g.Record(core.SourcePath(info.SourcePath), deps)
	}
	return g
}

// HasCache reports whether a cache directory already exists under root.
func HasCache(root string) bool {
	_, err := os.Stat(filepath.Join(root, Dir, "index.json"))
	return err == nil
}

// Clear removes the entire cache directory, used by a full rebuild.
func Clear(root string) error {
	return os.RemoveAll(filepath.Join(root, Dir))
}
