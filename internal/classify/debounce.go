package classify

import (
	"sync"
	"time"

	"github.com/tola-rs/tola/internal/core"
)

// Debounce durations from spec.md §4.2: an idle window restarted by every
// new event, and a cooldown enforced after a batch fires before the next
// one is allowed to start, so a flood of events during a compile can't
// immediately trigger another compile.
const (
	IdleWindow   = 300 * time.Millisecond
	PostBatchCooldown = 800 * time.Millisecond
)

// fusionRank orders how two ChangeKinds for the same path combine within
// one debounce window: Created+Modified fuses to Created (the file is new
// either way), anything+Removed fuses to Removed (its final disk state),
// Removed+Created fuses to Created (a remove-then-recreate within one
// window is still a fresh file as far as this batch is concerned; telling
// Created apart from a plain edit matters downstream, e.g. for StableID
// assignment on a brand-new document). Disk reconciliation against a
// Removed path that still exists on disk is a separate, later step, not
// part of this pure fusion table.
func fuse(prev, next ChangeKind) ChangeKind {
	switch {
	case prev == Removed && next == Created:
		return Created
	case next == Removed:
		return Removed
	case prev == Created:
		return Created
	default:
		return next
	}
}

// Debouncer is the pure, filesystem-free half of the classifier: a map of
// pending per-path changes plus the timers that decide when a window is
// ready to flush. It never touches the disk, making it directly unit
// testable (see debounce_test.go).
type Debouncer struct {
	mu      sync.Mutex
	pending map[core.SourcePath]ChangeKind
	timer   *time.Timer
	cooldownUntil time.Time
}

// NewDebouncer returns an empty debouncer.
func NewDebouncer() *Debouncer {
	return &Debouncer{pending: make(map[core.SourcePath]ChangeKind)}
}

// Record fuses a new (path, kind) observation into the pending batch and
// (re)starts the idle-window timer, calling flush once the window elapses
// without a further call to Record, or once the previous batch's cooldown
// has ended, whichever is later.
func (d *Debouncer) Record(path core.SourcePath, kind ChangeKind, flush func(DebouncedEvents)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[path]; ok {
		d.pending[path] = fuse(prev, kind)
	} else {
		d.pending[path] = kind
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	delay := IdleWindow
	if wait := time.Until(d.cooldownUntil); wait > delay {
		delay = wait
	}
	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		batch := d.drain()
		d.cooldownUntil = time.Now().Add(PostBatchCooldown)
		d.mu.Unlock()
		if len(batch) > 0 {
			flush(batch)
		}
	})
}

// drain returns and clears the pending map. Caller must hold d.mu.
func (d *Debouncer) drain() DebouncedEvents {
	out := make(DebouncedEvents, 0, len(d.pending))
	for path, kind := range d.pending {
		out = append(out, Change{Path: path, Kind: kind})
	}
	d.pending = make(map[core.SourcePath]ChangeKind)
	return out
}

// InCooldown reports whether a just-flushed batch's cooldown window is
// still active. Record holds back the next flush until this same
// deadline has passed.
func (d *Debouncer) InCooldown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return time.Now().Before(d.cooldownUntil)
}
