package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/core"
)

func writeAsset(t *testing.T, contents string) core.SourcePath {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return core.SourcePath(path)
}

func TestChangedReportsTrueOnFirstSight(t *testing.T) {
	path := writeAsset(t, "body { color: red; }")
	v := NewVersions()
	require.True(t, v.Changed(path))
}

func TestChangedReportsFalseWhenBytesIdentical(t *testing.T) {
	path := writeAsset(t, "body { color: red; }")
	v := NewVersions()
	require.True(t, v.Changed(path))
	require.False(t, v.Changed(path))
}

func TestChangedReportsTrueWhenBytesDiffer(t *testing.T) {
	path := writeAsset(t, "body { color: red; }")
	v := NewVersions()
	require.True(t, v.Changed(path))

	require.NoError(t, os.WriteFile(string(path), []byte("body { color: blue; }"), 0o644))
	require.True(t, v.Changed(path))
}

func TestChangedReportsTrueForMissingFile(t *testing.T) {
	v := NewVersions()
	missing := core.SourcePath(filepath.Join(t.TempDir(), "absent.css"))
	require.True(t, v.Changed(missing))
}

func TestClearForgetsEveryRecordedHash(t *testing.T) {
	path := writeAsset(t, "body { color: red; }")
	v := NewVersions()
	v.Changed(path)
	v.Clear()
	require.True(t, v.Changed(path), "after Clear, the same bytes must report changed again")
}
