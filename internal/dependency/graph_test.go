package dependency

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/core"
)

func TestRecordPopulatesReverseIndex(t *testing.T) {
	g := New()
	g.Record(core.SourcePath("/a.md"), []core.SourcePath{core.SourcePath("/partial.md")})

	affected := g.Affected(core.SourcePath("/partial.md"))
	require.ElementsMatch(t, []core.SourcePath{core.SourcePath("/a.md")}, affected)
}

func TestRecordReplacesPriorDependencySet(t *testing.T) {
	g := New()
	g.Record(core.SourcePath("/a.md"), []core.SourcePath{core.SourcePath("/old.md")})
	g.Record(core.SourcePath("/a.md"), []core.SourcePath{core.SourcePath("/new.md")})

	require.Empty(t, g.Affected(core.SourcePath("/old.md")))
	require.ElementsMatch(t, []core.SourcePath{core.SourcePath("/a.md")}, g.Affected(core.SourcePath("/new.md")))
}

func TestRecordSharedDependencyAffectsEveryDependent(t *testing.T) {
	g := New()
	shared := core.SourcePath("/shared.md")
	g.Record(core.SourcePath("/a.md"), []core.SourcePath{shared})
	g.Record(core.SourcePath("/b.md"), []core.SourcePath{shared})

	require.ElementsMatch(t,
		[]core.SourcePath{core.SourcePath("/a.md"), core.SourcePath("/b.md")},
		g.Affected(shared))
}

func TestRemoveClearsDependentIndex(t *testing.T) {
	g := New()
	dep := core.SourcePath("/dep.md")
	g.Record(core.SourcePath("/a.md"), []core.SourcePath{dep})

	g.Remove(core.SourcePath("/a.md"))
	require.Empty(t, g.Affected(dep))
}

func TestClearResetsEverything(t *testing.T) {
	g := New()
	dep := core.SourcePath("/dep.md")
	g.Record(core.SourcePath("/a.md"), []core.SourcePath{dep})

	g.Clear()
	require.Empty(t, g.Affected(dep))
}

func TestAffectedReturnsEmptyForUnknownSource(t *testing.T) {
	g := New()
	require.Empty(t, g.Affected(core.SourcePath("/never-recorded.md")))
}
