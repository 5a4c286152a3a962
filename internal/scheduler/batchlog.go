package scheduler

import (
	"fmt"
	"sync"

	"github.com/tola-rs/tola/internal/core"
)

// BatchLogger aggregates one compile batch's outcomes for a single,
// readable terminal summary instead of one log line per file: it tracks
// counts of reloads/unchanged/errors plus the first ("primary") error and
// first reload reason seen, and reduces everything after the first of
// each kind to a count ("+3 more").
type BatchLogger struct {
	mu sync.Mutex

	reloadCount    int
	primaryReload  string
	unchangedCount int
	errorCount     int
	primaryError   string
	primaryErrorSrc core.SourcePath
	conflictCount  int
	permalinkChanges int
}

// NewBatchLogger returns an empty batch logger.
func NewBatchLogger() *BatchLogger { return &BatchLogger{} }

func (b *BatchLogger) RecordReload(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reloadCount == 0 {
		b.primaryReload = reason
	}
	b.reloadCount++
}

func (b *BatchLogger) RecordUnchanged() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unchangedCount++
}

func (b *BatchLogger) RecordError(src core.SourcePath, err string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.errorCount == 0 {
		b.primaryError = err
		b.primaryErrorSrc = src
	}
	b.errorCount++
}

// errorCountSnapshot reports how many errors have been recorded so far,
// used to decide whether a newly failing source is this batch's first
// error (and therefore worth an immediate client-facing broadcast).
func (b *BatchLogger) errorCountSnapshot() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errorCount
}

func (b *BatchLogger) RecordConflict() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conflictCount++
}

func (b *BatchLogger) RecordPermalinkChange() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.permalinkChanges++
}

// Summary renders the batch's aggregate result as one human-readable
// line, the terminal equivalent of the original's BatchLogger::flush.
func (b *BatchLogger) Summary() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var parts []string
	if b.errorCount > 0 {
		if b.errorCount == 1 {
			parts = append(parts, fmt.Sprintf("error in %s: %s", b.primaryErrorSrc, b.primaryError))
		} else {
			parts = append(parts, fmt.Sprintf("error in %s: %s (+%d more)", b.primaryErrorSrc, b.primaryError, b.errorCount-1))
		}
	}
	if b.reloadCount > 0 {
		if b.reloadCount == 1 {
			parts = append(parts, fmt.Sprintf("reload (%s)", b.primaryReload))
		} else {
			parts = append(parts, fmt.Sprintf("%d reloads, first: %s", b.reloadCount, b.primaryReload))
		}
	}
	if b.unchangedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d unchanged", b.unchangedCount))
	}
	if b.conflictCount > 0 {
		parts = append(parts, fmt.Sprintf("%d permalink conflicts", b.conflictCount))
	}
	if b.permalinkChanges > 0 {
		parts = append(parts, fmt.Sprintf("%d permalink changes", b.permalinkChanges))
	}
	if len(parts) == 0 {
		return "no-op"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "; " + p
	}
	return out
}

// IsEmpty reports whether nothing at all happened this batch.
func (b *BatchLogger) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reloadCount == 0 && b.unchangedCount == 0 && b.errorCount == 0 &&
		b.conflictCount == 0 && b.permalinkChanges == 0
}
