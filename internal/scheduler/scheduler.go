// Package scheduler implements the compile scheduler (C3): the priority
// queue over Active/Direct/Affected/Background work, the single
// cancellable background batch, the no-op skip hook (which always
// reports false), the active-page recompile throttle, and the
// full-rebuild procedure.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tola-rs/tola/internal/address"
	"github.com/tola-rs/tola/internal/asset"
	"github.com/tola-rs/tola/internal/broadcast"
	"github.com/tola-rs/tola/internal/cache"
	"github.com/tola-rs/tola/internal/classify"
	"github.com/tola-rs/tola/internal/compiler"
	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/dependency"
	"github.com/tola-rs/tola/internal/diagnostics"
	"github.com/tola-rs/tola/internal/page"
)

// ActiveRecompileCooldown throttles how often an Active-priority page can
// be force-recompiled in response to an asset/output change, so a burst
// of asset writes doesn't recompile the open page once per file.
const ActiveRecompileCooldown = 250 * time.Millisecond

// MaxWorkers bounds the affected-file fan-out's parallelism.
const MaxWorkers = 8

// Scheduler owns the priority compile loop. One goroutine runs Run; every
// other method is meant to be called only from that goroutine or via the
// Messages channel, except the thread-safe stores it wires together.
type Scheduler struct {
	Messages chan *classify.Message

	root       string
	registry   *compiler.Registry
	cacheStore *cache.Store
	space      *address.Space
	pages      *page.Map
	links      *page.LinkGraph
	deps       *dependency.Graph
	diag       *diagnostics.Snapshot
	assets     *asset.Versions
	hub        *broadcast.Hub
	logger     *zap.Logger

	batchLog *BatchLogger

	activeThrottleMu sync.Mutex
	lastActiveRecompile map[core.Permalink]time.Time

	background       *backgroundBatch
}

// backgroundBatch tracks the single in-flight Affected-priority batch so
// a newer Compile message can cancel and replace it.
type backgroundBatch struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Config bundles a Scheduler's collaborators.
type Config struct {
	Root       string
	Registry   *compiler.Registry
	CacheStore *cache.Store
	Space      *address.Space
	Pages      *page.Map
	Links      *page.LinkGraph
	Deps       *dependency.Graph
	Diagnostics *diagnostics.Snapshot
	Assets     *asset.Versions
	Hub        *broadcast.Hub
	Logger     *zap.Logger
}

// New returns a Scheduler ready to run.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		Messages:            make(chan *classify.Message, 32),
		root:                cfg.Root,
		registry:            cfg.Registry,
		cacheStore:          cfg.CacheStore,
		space:               cfg.Space,
		pages:               cfg.Pages,
		links:               cfg.Links,
		deps:                cfg.Deps,
		diag:                cfg.Diagnostics,
		assets:              cfg.Assets,
		hub:                 cfg.Hub,
		logger:              cfg.Logger,
		batchLog:            NewBatchLogger(),
		lastActiveRecompile: make(map[core.Permalink]time.Time),
	}
}

// Run is the scheduler's event loop: a biased select that always prefers
// a new Compile/FullRebuild message over waiting on the current
// background batch, so an Active-priority edit preempts a Background
// batch immediately (aborting it; per spec.md, the canceled outcome is
// discarded and already-finished per-file work stays valid).
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.cancelBackground()
			return
		case msg, ok := <-s.Messages:
			if !ok {
				return
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *Scheduler) handle(ctx context.Context, msg *classify.Message) {
	s.cancelBackground()

	switch msg.Kind {
	case classify.MsgFullRebuild:
		s.fullRebuild(ctx)
		return
	case classify.MsgCompile:
		s.onCompile(ctx, msg)
	}
}

func (s *Scheduler) cancelBackground() {
	if s.background == nil {
		return
	}
	s.background.cancel()
	<-s.background.done
	s.background = nil
}

// onCompile runs removed-content cleanup, then direct files inline
// (Priority Direct or Active if the page is currently open in a client),
// then spawns the remaining affected files as a cancellable background
// batch (Priority Affected), and finally triggers a throttled active-page
// recompile for asset/output changes.
func (s *Scheduler) onCompile(ctx context.Context, msg *classify.Message) {
	s.batchLog = NewBatchLogger()

	for _, removed := range msg.RemovedQueue {
		s.onContentRemoved(removed)
	}

	active := s.hub.ActiveRoutes()

	direct := msg.Queue
	for _, src := range direct {
		priority := core.PriorityDirect
		if permalink, ok := s.space.PermalinkFor(src); ok && active[permalink] {
			priority = core.PriorityActive
		}
		s.compileOne(ctx, src, priority)
	}

	affected := s.collectAffected(direct)
	if len(affected) > 0 {
		s.spawnBackgroundBatch(affected)
	}

	if len(msg.AssetChanges) > 0 || len(msg.OutputChanges) > 0 {
		s.onAssetOrOutputChange(ctx, msg.AssetChanges, msg.OutputChanges)
	}

	if len(msg.DepsChanges) > 0 {
		for _, dep := range msg.DepsChanges {
			s.recompileDependents(ctx, dep)
		}
	}

	s.runIterativeConvergence(ctx)

	if s.logger != nil {
		s.logger.Info("compile batch complete", zap.String("summary", s.batchLog.Summary()))
	}
}

// collectAffected expands direct into every page that transitively
// depends on one of them, excluding direct itself.
func (s *Scheduler) collectAffected(direct []core.SourcePath) []core.SourcePath {
	seen := make(map[core.SourcePath]bool, len(direct))
	for _, d := range direct {
		seen[d] = true
	}
	var out []core.SourcePath
	queue := append([]core.SourcePath(nil), direct...)
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		for _, dependent := range s.deps.Affected(d) {
			if !seen[dependent] {
				seen[dependent] = true
				out = append(out, dependent)
				queue = append(queue, dependent)
			}
		}
	}
	return out
}

// spawnBackgroundBatch runs affected through a bounded worker pool,
// cancellable by a subsequent onCompile call. A canceled batch's
// in-flight files are allowed to finish; their outcomes are simply
// discarded by the scheduler since no caller awaits this batch's result
// once it's been superseded.
func (s *Scheduler) spawnBackgroundBatch(affected []core.SourcePath) {
	bctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.background = &backgroundBatch{cancel: cancel, done: done}

	go func() {
		defer close(done)
		g, gctx := errgroup.WithContext(bctx)
		g.SetLimit(MaxWorkers)
		for _, src := range affected {
			src := src
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				s.compileOne(bctx, src, core.PriorityAffected)
				return nil
			})
		}
		_ = g.Wait()
		s.runIterativeConvergence(bctx)
	}()
}

// recompileDependents recompiles every page that reads dep, in response
// to a Deps-category change.
func (s *Scheduler) recompileDependents(ctx context.Context, dep core.SourcePath) {
	for _, dependent := range s.deps.Affected(dep) {
		s.compileOne(ctx, dependent, core.PriorityAffected)
	}
}

// onAssetOrOutputChange recomputes asset versions and, for assets whose
// content actually changed, throttles a recompile of every currently
// active page so its references to that asset (e.g. a cache-busted URL)
// stay correct.
func (s *Scheduler) onAssetOrOutputChange(ctx context.Context, assetChanges, outputChanges []core.SourcePath) {
	var changed bool
	for _, a := range assetChanges {
		if s.assets.Changed(a) {
			changed = true
		}
	}
	for _, o := range outputChanges {
		if !isReloadableOutputAsset(o) {
			continue
		}
		changed = true
	}
	if !changed {
		return
	}
	s.recompileActivePages(ctx)
}

// isReloadableOutputAsset excludes HTML output files from triggering a
// page recompile; a change to a compiled page's own .html output is a
// side effect of compiling it, not a cause for recompiling anything.
func isReloadableOutputAsset(path core.SourcePath) bool {
	return filepath.Ext(string(path)) != ".html"
}

// recompileActivePages force-recompiles every page a connected client
// currently has open, throttled per page to ActiveRecompileCooldown.
func (s *Scheduler) recompileActivePages(ctx context.Context) {
	now := time.Now()
	s.activeThrottleMu.Lock()
	var due []core.Permalink
	for permalink := range s.hub.ActiveRoutes() {
		last, ok := s.lastActiveRecompile[permalink]
		if !ok || now.Sub(last) >= ActiveRecompileCooldown {
			s.lastActiveRecompile[permalink] = now
			due = append(due, permalink)
		}
	}
	s.activeThrottleMu.Unlock()

	for _, permalink := range due {
		if src, ok := s.space.Lookup(permalink); ok {
			s.compileOne(ctx, src, core.PriorityActive)
		}
	}
}

// readSource loads a content file's bytes for compiling.
func readSource(path core.SourcePath) ([]byte, error) {
	return os.ReadFile(string(path))
}
