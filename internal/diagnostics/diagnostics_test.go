package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/core"
)

func TestPushAddsNewEntry(t *testing.T) {
	s := New()
	s.Push(Entry{Source: core.SourcePath("/a.md"), URLPath: core.Permalink("/a"), Error: "boom"})

	require.Equal(t, 1, s.Count())
	first, ok := s.First()
	require.True(t, ok)
	require.Equal(t, "boom", first.Error)
}

func TestPushReplacesExistingEntryForSameSourceInPlace(t *testing.T) {
	s := New()
	s.Push(Entry{Source: core.SourcePath("/a.md"), Error: "first"})
	s.Push(Entry{Source: core.SourcePath("/b.md"), Error: "second"})
	s.Push(Entry{Source: core.SourcePath("/a.md"), Error: "updated"})

	require.Equal(t, 2, s.Count())
	all := s.All()
	require.Equal(t, "updated", all[0].Error, "replacing must preserve first-seen order")
	require.Equal(t, "second", all[1].Error)
}

func TestClearForRemovesEntryAndReindexesRemaining(t *testing.T) {
	s := New()
	s.Push(Entry{Source: core.SourcePath("/a.md"), Error: "one"})
	s.Push(Entry{Source: core.SourcePath("/b.md"), Error: "two"})
	s.Push(Entry{Source: core.SourcePath("/c.md"), Error: "three"})

	s.ClearFor(core.SourcePath("/b.md"))

	require.Equal(t, 2, s.Count())
	all := s.All()
	require.Equal(t, "one", all[0].Error)
	require.Equal(t, "three", all[1].Error)

	s.Push(Entry{Source: core.SourcePath("/c.md"), Error: "three-updated"})
	all = s.All()
	require.Equal(t, "three-updated", all[1].Error)
}

func TestClearForOnUnknownSourceIsNoop(t *testing.T) {
	s := New()
	s.Push(Entry{Source: core.SourcePath("/a.md"), Error: "one"})
	s.ClearFor(core.SourcePath("/never-pushed.md"))
	require.Equal(t, 1, s.Count())
}

func TestIsEmptyReflectsCount(t *testing.T) {
	s := New()
	require.True(t, s.IsEmpty())
	s.Push(Entry{Source: core.SourcePath("/a.md"), Error: "one"})
	require.False(t, s.IsEmpty())
}

func TestFirstReportsFalseWhenEmpty(t *testing.T) {
	s := New()
	_, ok := s.First()
	require.False(t, ok)
}
