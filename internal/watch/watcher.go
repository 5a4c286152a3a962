// Package watch wraps fsnotify into the watcher-first attach contract
// spec.md requires: the watcher must be attached to every root before the
// initial build starts, so no change landing during that window is
// silently missed, and it must re-attach any root that goes missing
// (e.g. a directory removed and recreated) on every idle tick.
package watch

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tola-rs/tola/internal/core"
)

// EventKind mirrors fsnotify.Op's bits into the three kinds the
// classifier distinguishes (spec.md's ChangeKind); Chmod-only events are
// dropped at this layer since content never changes on permission bits
// alone.
type EventKind int

const (
	Created EventKind = iota
	Modified
	Removed
)

// Event is one observed filesystem change, forwarded to the classifier's
// debounce map.
type Event struct {
	Path core.SourcePath
	Kind EventKind
}

// Watcher owns the fsnotify handle and the set of roots it should have
// attached. Start buffers events into Events from the moment it's called,
// before the caller does anything else — this is what makes the pipeline
// watcher-first.
type Watcher struct {
	mu    sync.Mutex
	fsw   *fsnotify.Watcher
	roots map[core.SourcePath]bool

	Events chan Event
	Errors chan error

	reattachTick *time.Ticker
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// New creates a Watcher with the given roots already queued to attach.
// It does not touch fsnotify until Start is called.
func New(roots []core.SourcePath) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	rootSet := make(map[core.SourcePath]bool, len(roots))
	for _, r := range roots {
		rootSet[r] = true
	}
	return &Watcher{
		fsw:    fsw,
		roots:  rootSet,
		Events: make(chan Event, 256),
		Errors: make(chan error, 16),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Start attaches every root (tolerating roots that don't exist yet — they
// are retried on the next idle tick) and begins forwarding fsnotify events
// onto w.Events. It returns once the initial attach attempt has run, so
// the caller can safely begin its initial build immediately after.
func (w *Watcher) Start() {
	w.attachAll()
	w.reattachTick = time.NewTicker(5 * time.Second)
	go w.run()
}

func (w *Watcher) attachAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for root := range w.roots {
		_ = w.fsw.Add(string(root)) // tolerated: retried on next tick
	}
}

// AddRoot registers an additional root to watch (and re-attach on future
// ticks), used when the classifier discovers a new asset source directory
// after startup.
func (w *Watcher) AddRoot(root core.SourcePath) {
	w.mu.Lock()
	w.roots[root] = true
	w.mu.Unlock()
	_ = w.fsw.Add(string(root))
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if kind, ok := classifyOp(ev.Op); ok {
				select {
				case w.Events <- Event{Path: core.SourcePath(ev.Name), Kind: kind}:
				case <-w.stopCh:
					return
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.stopCh:
				return
			}
		case <-w.reattachTick.C:
			w.attachAll()
		}
	}
}

func classifyOp(op fsnotify.Op) (EventKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return Created, true
	case op&fsnotify.Remove != 0, op&fsnotify.Rename != 0:
		return Removed, true
	case op&fsnotify.Write != 0:
		return Modified, true
	default:
		return 0, false
	}
}

// Stop shuts the watcher down and blocks until its goroutine has exited.
func (w *Watcher) Stop() {
	close(w.stopCh)
	if w.reattachTick != nil {
		w.reattachTick.Stop()
	}
	_ = w.fsw.Close()
	<-w.doneCh
}
