package address

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/core"
)

func TestRegisterCreatesThenUnchangedThenChanged(t *testing.T) {
	s := New()

	update := s.Register("content/a.md", "/a/")
	require.Equal(t, UpdateCreated, update.Kind)

	update = s.Register("content/a.md", "/a/")
	require.Equal(t, UpdateUnchanged, update.Kind)

	update = s.Register("content/a.md", "/a-renamed/")
	require.Equal(t, UpdateChanged, update.Kind)
	require.Equal(t, core.Permalink("/a/"), update.OldURL)

	got, ok := s.PermalinkFor("content/a.md")
	require.True(t, ok)
	require.Equal(t, core.Permalink("/a-renamed/"), got)
}

func TestRegisterDetectsConflict(t *testing.T) {
	s := New()
	require.Equal(t, UpdateCreated, s.Register("content/a.md", "/shared/").Kind)

	update := s.Register("content/b.md", "/shared/")
	require.Equal(t, UpdateConflict, update.Kind)
	require.Equal(t, core.SourcePath("content/a.md"), update.Conflict)

	// the prior mapping is left intact
	got, ok := s.PermalinkFor("content/a.md")
	require.True(t, ok)
	require.Equal(t, core.Permalink("/shared/"), got)
	_, ok = s.PermalinkFor("content/b.md")
	require.False(t, ok)
}

func TestRegisterAliasResolvesWithoutDisplacingCanonical(t *testing.T) {
	s := New()
	s.Register("content/a.md", "/a/")
	update := s.RegisterAlias("content/a.md", "/old-a/")
	require.Equal(t, UpdateCreated, update.Kind)

	src, ok := s.Lookup("/old-a/")
	require.True(t, ok)
	require.Equal(t, core.SourcePath("content/a.md"), src)

	canonical, ok := s.PermalinkFor("content/a.md")
	require.True(t, ok)
	require.Equal(t, core.Permalink("/a/"), canonical)
}

func TestRemoveDropsCanonicalAndAliases(t *testing.T) {
	s := New()
	s.Register("content/a.md", "/a/")
	s.RegisterAlias("content/a.md", "/old-a/")

	s.Remove("content/a.md")

	_, ok := s.Lookup("/a/")
	require.False(t, ok)
	_, ok = s.Lookup("/old-a/")
	require.False(t, ok)
	_, ok = s.PermalinkFor("content/a.md")
	require.False(t, ok)
}

func TestConflictsReportsOnlyMultiplyClaimedPermalinks(t *testing.T) {
	s := New()
	s.Register("content/a.md", "/a/")
	s.Register("content/b.md", "/b/")

	conflicts := s.Conflicts()
	require.Empty(t, conflicts)
}

func TestAllAndAliasesSnapshotCurrentState(t *testing.T) {
	s := New()
	s.Register("content/a.md", "/a/")
	s.RegisterAlias("content/a.md", "/old-a/")

	all := s.All()
	require.Equal(t, core.SourcePath("content/a.md"), all["/a/"])

	aliases := s.Aliases()
	require.Equal(t, core.SourcePath("content/a.md"), aliases["/old-a/"])
}

func TestSourcesListsEveryRegisteredSource(t *testing.T) {
	s := New()
	s.Register("content/a.md", "/a/")
	s.Register("content/b.md", "/b/")

	sources := s.Sources()
	require.Len(t, sources, 2)
	require.ElementsMatch(t, []core.SourcePath{"content/a.md", "content/b.md"}, sources)
}
