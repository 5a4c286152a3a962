package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tola-rs/tola/internal/vdom"
)

func TestStoreDeleteRemovesEntry(t *testing.T) {
	s := NewStore()
	s.Set("/a", Entry{Version: 1})
	s.Delete("/a")
	_, ok := s.Get("/a")
	require.False(t, ok)
}

func TestStoreRekeyMovesEntryToNewKey(t *testing.T) {
	s := NewStore()
	doc := &vdom.IndexedDocument{Root: &vdom.Node{Tag: "html"}}
	s.Set("/old", Entry{Doc: doc, Version: 3})

	s.Rekey("/old", "/new")

	_, ok := s.Get("/old")
	require.False(t, ok)
	entry, ok := s.Get("/new")
	require.True(t, ok)
	require.Equal(t, uint64(3), entry.Version)
}

func TestStoreRekeyOnMissingOldKeyIsNoop(t *testing.T) {
	s := NewStore()
	s.Rekey("/missing", "/new")
	_, ok := s.Get("/new")
	require.False(t, ok)
}

func TestHashFileIsStableAndContentSensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	h1, err := HashFile(path)
	require.NoError(t, err)
	h2, err := HashFile(path)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	require.NoError(t, os.WriteFile(path, []byte("goodbye"), 0o644))
	h3, err := HashFile(path)
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}

func TestIsFileModifiedDetectsSourceChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)

	modified, err := IsFileModified(FileInfo{SourcePath: path, SourceHash: hash})
	require.NoError(t, err)
	require.False(t, modified)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	modified, err = IsFileModified(FileInfo{SourcePath: path, SourceHash: hash})
	require.NoError(t, err)
	require.True(t, modified)
}

func TestIsFileModifiedDetectsDependencyChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.md")
	dep := filepath.Join(dir, "partial.md")
	require.NoError(t, os.WriteFile(src, []byte("body"), 0o644))
	require.NoError(t, os.WriteFile(dep, []byte("v1"), 0o644))

	srcHash, err := HashFile(src)
	require.NoError(t, err)
	depHash, err := HashFile(dep)
	require.NoError(t, err)

	info := FileInfo{SourcePath: src, SourceHash: srcHash, Dependencies: map[string]string{dep: depHash}}
	modified, err := IsFileModified(info)
	require.NoError(t, err)
	require.False(t, modified)

	require.NoError(t, os.WriteFile(dep, []byte("v2"), 0o644))
	modified, err = IsFileModified(info)
	require.NoError(t, err)
	require.True(t, modified)
}

func TestIsFileModifiedOnMissingSourceIsAnError(t *testing.T) {
	modified, err := IsFileModified(FileInfo{SourcePath: filepath.Join(t.TempDir(), "missing.md")})
	require.Error(t, err)
	require.True(t, modified, "a file that can't be hashed must be treated as modified")
}
