package page

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tola-rs/tola/internal/core"
)

func TestDisplayTitleFallsBackToPermalink(t *testing.T) {
	require.Equal(t, "My Post", Stored{Title: "My Post", Permalink: "/p"}.DisplayTitle())
	require.Equal(t, "/p", Stored{Permalink: "/p"}.DisplayTitle())
}

func TestInsertAndGetPage(t *testing.T) {
	m := NewMap()
	m.InsertPage("/src/a.md", Stored{Permalink: "/a", Title: "A"})

	got, ok := m.Get("/a")
	require.True(t, ok)
	require.Equal(t, "A", got.Title)

	url, ok := m.GetPermalinkBySource("/src/a.md")
	require.True(t, ok)
	require.Equal(t, core.Permalink("/a"), url)
}

func TestRemovePageClearsRecordHeadingsAndSourceMapping(t *testing.T) {
	m := NewMap()
	m.InsertPage("/src/a.md", Stored{Permalink: "/a"})
	m.InsertHeadings("/a", []Heading{{Level: 1, Text: "A", ID: "a"}})

	m.RemovePage("/src/a.md")

	_, ok := m.Get("/a")
	require.False(t, ok)
	require.Empty(t, m.GetHeadings("/a"))
	_, ok = m.GetPermalinkBySource("/src/a.md")
	require.False(t, ok)
}

func TestRemovePageOnUnknownSourceIsNoop(t *testing.T) {
	m := NewMap()
	m.RemovePage("/src/missing.md")
}

func TestGetPagesExcludesDraftsAndSortsDateDescendingThenTitle(t *testing.T) {
	m := NewMap()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.InsertPage("/src/old.md", Stored{Permalink: "/old", Title: "Old", Date: now.AddDate(0, 0, -1)})
	m.InsertPage("/src/new-b.md", Stored{Permalink: "/new-b", Title: "B", Date: now})
	m.InsertPage("/src/new-a.md", Stored{Permalink: "/new-a", Title: "A", Date: now})
	m.InsertPage("/src/draft.md", Stored{Permalink: "/draft", Title: "Draft", Draft: true, Date: now})

	got := m.GetPages()
	require.Len(t, got, 3)
	require.Equal(t, "A", got[0].Title)
	require.Equal(t, "B", got[1].Title)
	require.Equal(t, "Old", got[2].Title)
}

func TestAllPagesIncludesDrafts(t *testing.T) {
	m := NewMap()
	m.InsertPage("/src/a.md", Stored{Permalink: "/a"})
	m.InsertPage("/src/b.md", Stored{Permalink: "/b", Draft: true})

	require.Len(t, m.AllPages(), 2)
}

func TestPagesHashIsOrderIndependentAndChangesWithContent(t *testing.T) {
	m1 := NewMap()
	m1.InsertPage("/src/a.md", Stored{Permalink: "/a", Title: "A"})
	m1.InsertPage("/src/b.md", Stored{Permalink: "/b", Title: "B"})

	m2 := NewMap()
	m2.InsertPage("/src/b.md", Stored{Permalink: "/b", Title: "B"})
	m2.InsertPage("/src/a.md", Stored{Permalink: "/a", Title: "A"})

	require.Equal(t, m1.PagesHash(), m2.PagesHash(), "hash must not depend on insertion order")

	m2.InsertPage("/src/a.md", Stored{Permalink: "/a", Title: "A changed"})
	require.NotEqual(t, m1.PagesHash(), m2.PagesHash())
}

func TestBuildInputsIncludesSiteAndPagesPackages(t *testing.T) {
	m := NewMap()
	m.InsertPage("/src/a.md", Stored{Permalink: "/a", Title: "A"})

	site := map[string]any{"title": "Test Site"}
	inputs := m.BuildInputs(site)

	require.Equal(t, site, inputs["@tola/site"])
	require.Equal(t, "compile", inputs["phase"])
	pages, ok := inputs["@tola/pages"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, pages, 1)
	require.Equal(t, "/a", pages[0]["permalink"])
}

func TestBuildCurrentContextIncludesLinksAndHeadings(t *testing.T) {
	m := NewMap()
	m.InsertHeadings("/a", []Heading{{Level: 2, Text: "Section", ID: "section"}})
	links := NewLinkGraph()
	links.Record("/a", []core.Permalink{"/b"})
	links.Record("/c", []core.Permalink{"/a"})

	ctx := m.BuildCurrentContext("/a", links)

	require.Equal(t, "/a", ctx["path"])
	require.ElementsMatch(t, []core.Permalink{"/b"}, ctx["links_to"])
	require.ElementsMatch(t, []core.Permalink{"/c"}, ctx["linked_by"])
	headings, ok := ctx["headings"].([]Heading)
	require.True(t, ok)
	require.Len(t, headings, 1)
}
