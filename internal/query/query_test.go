package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/page"
)

func TestLoadAndRunFiltersByTag(t *testing.T) {
	e, err := Open()
	require.NoError(t, err)
	defer e.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err = e.Load([]page.Stored{
		{Permalink: core.Permalink("/a"), Title: "A", Date: now, Tags: []string{"go", "systems"}},
		{Permalink: core.Permalink("/b"), Title: "B", Date: now, Tags: []string{"rust"}},
	})
	require.NoError(t, err)

	rows, err := e.Run(`SELECT permalink FROM pages WHERE tags LIKE '%"go"%'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "/a", rows[0]["permalink"])
}

func TestLoadExcludesNothingIncludingDrafts(t *testing.T) {
	e, err := Open()
	require.NoError(t, err)
	defer e.Close()

	err = e.Load([]page.Stored{
		{Permalink: core.Permalink("/draft"), Title: "Draft", Draft: true},
	})
	require.NoError(t, err)

	rows, err := e.Run(`SELECT draft FROM pages WHERE permalink = '/draft'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.EqualValues(t, 1, rows[0]["draft"])
}

func TestLoadReplacesPriorContents(t *testing.T) {
	e, err := Open()
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Load([]page.Stored{{Permalink: core.Permalink("/old")}}))
	require.NoError(t, e.Load([]page.Stored{{Permalink: core.Permalink("/new")}}))

	rows, err := e.Run(`SELECT permalink FROM pages`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "/new", rows[0]["permalink"])
}
