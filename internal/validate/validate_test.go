package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/address"
	"github.com/tola-rs/tola/internal/config/section"
	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/page"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunDetectsBrokenInternalLink(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), `<html><body><a href="/missing">x</a></body></html>`)

	space := address.New()
	report, err := Run(dir, space, page.NewMap(), section.Validate{CheckInternalLinks: true})
	require.NoError(t, err)
	require.Len(t, report.InternalLinkErrors, 1)
	require.Equal(t, "/missing", report.InternalLinkErrors[0].Link)
}

func TestRunAcceptsResolvedInternalLink(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), `<html><body><a href="/about">x</a></body></html>`)

	space := address.New()
	space.Register(core.SourcePath("/content/about.md"), core.Permalink("/about"))

	report, err := Run(dir, space, page.NewMap(), section.Validate{CheckInternalLinks: true})
	require.NoError(t, err)
	require.Empty(t, report.InternalLinkErrors)
}

func TestRunSkipsExternalAndFragmentLinks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"),
		`<html><body><a href="https://example.com">ext</a><a href="#section">frag</a></body></html>`)

	space := address.New()
	report, err := Run(dir, space, page.NewMap(), section.Validate{CheckInternalLinks: true})
	require.NoError(t, err)
	require.Empty(t, report.InternalLinkErrors)
}

func TestRunReportsConflicts(t *testing.T) {
	dir := t.TempDir()
	space := address.New()
	space.Register(core.SourcePath("/content/a.md"), core.Permalink("/dup"))
	space.RegisterAlias(core.SourcePath("/content/b.md"), core.Permalink("/dup"))

	report, err := Run(dir, space, page.NewMap(), section.Validate{CheckConflicts: true})
	require.NoError(t, err)
	require.Contains(t, report.Conflicts, core.Permalink("/dup"))
}

func TestRunReportsOrphanAlias(t *testing.T) {
	dir := t.TempDir()
	space := address.New()
	space.RegisterAlias(core.SourcePath("/content/gone.md"), core.Permalink("/old-url"))

	report, err := Run(dir, space, page.NewMap(), section.Validate{CheckOrphanAliases: true})
	require.NoError(t, err)
	require.Contains(t, report.OrphanAliases, core.Permalink("/old-url"))
}
