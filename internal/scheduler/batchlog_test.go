package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/core"
)

func TestBatchLoggerSummaryReportsNoOpWhenEmpty(t *testing.T) {
	b := NewBatchLogger()
	require.True(t, b.IsEmpty())
	require.Equal(t, "no-op", b.Summary())
}

func TestBatchLoggerSummarySingleReload(t *testing.T) {
	b := NewBatchLogger()
	b.RecordReload("patch")
	require.False(t, b.IsEmpty())
	require.Equal(t, "reload (patch)", b.Summary())
}

func TestBatchLoggerSummaryCollapsesMultipleReloadsToFirst(t *testing.T) {
	b := NewBatchLogger()
	b.RecordReload("initial")
	b.RecordReload("patch")
	b.RecordReload("patch")
	require.Equal(t, "3 reloads, first: initial", b.Summary())
}

func TestBatchLoggerSummaryReportsFirstErrorWithCount(t *testing.T) {
	b := NewBatchLogger()
	b.RecordError(core.SourcePath("/a.md"), "boom")
	b.RecordError(core.SourcePath("/b.md"), "kaboom")
	require.Equal(t, "error in /a.md: boom (+1 more)", b.Summary())
}

func TestBatchLoggerErrorCountSnapshotTracksFirstError(t *testing.T) {
	b := NewBatchLogger()
	require.Equal(t, 0, b.errorCountSnapshot())
	b.RecordError(core.SourcePath("/a.md"), "boom")
	require.Equal(t, 1, b.errorCountSnapshot())
}

func TestBatchLoggerSummaryCombinesEveryCategory(t *testing.T) {
	b := NewBatchLogger()
	b.RecordError(core.SourcePath("/a.md"), "boom")
	b.RecordReload("initial")
	b.RecordUnchanged()
	b.RecordConflict()
	b.RecordPermalinkChange()

	summary := b.Summary()
	require.Contains(t, summary, "error in /a.md: boom")
	require.Contains(t, summary, "reload (initial)")
	require.Contains(t, summary, "1 unchanged")
	require.Contains(t, summary, "1 permalink conflicts")
	require.Contains(t, summary, "1 permalink changes")
}
