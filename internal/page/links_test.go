package page

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tola-rs/tola/internal/core"
)

func TestLinkGraphExcludesSelfLinks(t *testing.T) {
	g := NewLinkGraph()
	g.Record("/a", []core.Permalink{"/a", "/b"})
	require.ElementsMatch(t, []core.Permalink{"/b"}, g.LinksFrom("/a"))
	require.Empty(t, g.LinkedBy("/a"))
}

func TestLinkGraphRecordReplacesOldLinks(t *testing.T) {
	g := NewLinkGraph()
	g.Record("/a", []core.Permalink{"/b"})
	require.ElementsMatch(t, []core.Permalink{"/a"}, g.LinkedBy("/b"))

	g.Record("/a", []core.Permalink{"/c"})
	require.Empty(t, g.LinkedBy("/b"))
	require.ElementsMatch(t, []core.Permalink{"/a"}, g.LinkedBy("/c"))
}

func TestLinkGraphMultipleSources(t *testing.T) {
	g := NewLinkGraph()
	g.Record("/a", []core.Permalink{"/target"})
	g.Record("/b", []core.Permalink{"/target"})
	require.ElementsMatch(t, []core.Permalink{"/a", "/b"}, g.LinkedBy("/target"))
}

func TestLinkGraphRemovePageClearsBothDirections(t *testing.T) {
	g := NewLinkGraph()
	g.Record("/a", []core.Permalink{"/b"})
	g.Record("/b", []core.Permalink{"/a"})

	g.RemovePage("/a")
	require.Empty(t, g.LinksFrom("/a"))
	require.Empty(t, g.LinkedBy("/a"))
	require.Empty(t, g.LinksFrom("/b"))
}
