package actor

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tola-rs/tola/internal/address"
	"github.com/tola-rs/tola/internal/asset"
	"github.com/tola-rs/tola/internal/broadcast"
	"github.com/tola-rs/tola/internal/cache"
	"github.com/tola-rs/tola/internal/classify"
	"github.com/tola-rs/tola/internal/compiler"
	"github.com/tola-rs/tola/internal/compiler/markdown"
	"github.com/tola-rs/tola/internal/compiler/typst"
	"github.com/tola-rs/tola/internal/config"
	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/dependency"
	"github.com/tola-rs/tola/internal/diagnostics"
	"github.com/tola-rs/tola/internal/logging"
	"github.com/tola-rs/tola/internal/page"
	"github.com/tola-rs/tola/internal/scheduler"
	"github.com/tola-rs/tola/internal/watch"
)

// Config bundles everything the Coordinator needs to wire up and run the
// actor system for one site, the Go equivalent of the original's
// Coordinator::with_config/with_ws_port builder chain.
type Config struct {
	Root       string
	Cfg        config.Config
	Logger     *zap.Logger
	TypstPath  string // "" disables the typst compiler seam
}

// Coordinator wires up and runs the watch -> classify -> schedule ->
// broadcast pipeline for one site. It creates every collaborator,
// restores whatever the on-disk cache holds, and starts the actors
// concurrently, the same division of responsibility as the original's
// actor::coordinator module.
type Coordinator struct {
	cfg Config

	space  *address.Space
	pages  *page.Map
	links  *page.LinkGraph
	deps   *dependency.Graph
	diag   *diagnostics.Snapshot
	assets *asset.Versions
	store  *cache.Store
	hub    *broadcast.Hub

	index *cache.Index

	watcher    *watch.Watcher
	debouncer  *classify.Debouncer
	classifier *classify.Classifier
	router     *classify.Router
	sched      *scheduler.Scheduler
}

// New builds a Coordinator: it restores the persisted cache (content,
// dependency graph, and pending error snapshot) before wiring the live
// pipeline, so a `tola serve` restart picks up where the last run left
// off instead of re-rendering a cold site on every restart. The restored
// dependency graph holds only what index.json lists; cache.Persist
// records no dependencies, so after a restart it starts empty.
func New(cfg Config) (*Coordinator, error) {
	registry := compiler.NewRegistry()
	registry.Register(core.ContentMarkdown, markdown.New())
	if cfg.TypstPath != "" {
		registry.Register(core.ContentTypst, typst.New(cfg.TypstPath))
	}

	store := cache.NewStore()
	index, err := cache.Restore(cfg.Root, store)
	if err != nil {
		return nil, fmt.Errorf("restore cache: %w", err)
	}
	deps := cache.RestoreDependencyGraph(index)

	diag, err := cache.RestoreErrors(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("restore error snapshot: %w", err)
	}

	space := address.New()
	hub := broadcast.NewHub()
	for path, errMsg := range snapshotErrors(diag) {
		hub.RecordError(path, errMsg)
	}

	pages := page.NewMap()
	links := page.NewLinkGraph()
	assets := asset.NewVersions()

	sched := scheduler.New(scheduler.Config{
		Root:        cfg.Root,
		Registry:    registry,
		CacheStore:  store,
		Space:       space,
		Pages:       pages,
		Links:       links,
		Deps:        deps,
		Diagnostics: diag,
		Assets:      assets,
		Hub:         hub,
		Logger:      logging.For(cfg.Logger, logging.CategoryCompile),
	})

	roots := buildRoots(cfg)
	classifyRoots := classify.Roots{
		ContentRoot: roots.ContentRoot,
		DepRoots:    roots.DepRoots,
		AssetRoots:  roots.AssetRoots,
		ConfigPath:  roots.ConfigPath,
		OutputDir:   roots.OutputDir,
	}
	classifier := classify.New(classifyRoots, space)

	watchPaths, err := watch.CollectWatchPaths(roots)
	if err != nil {
		return nil, fmt.Errorf("collect watch paths: %w", err)
	}
	watcher, err := watch.New(watchPaths)
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Coordinator{
		cfg:        cfg,
		space:      space,
		pages:      pages,
		links:      links,
		deps:       deps,
		diag:       diag,
		assets:     assets,
		hub:        hub,
		store:      store,
		index:      index,
		watcher:    watcher,
		debouncer:  classify.NewDebouncer(),
		classifier: classifier,
		router:     classify.NewRouter(classifier),
		sched:      sched,
	}, nil
}

// Hub exposes the broadcaster so the caller can mount its HTTP handler.
func (c *Coordinator) Hub() *broadcast.Hub { return c.hub }

// WebSocketHandler returns the /__tola/ws upgrade handler for this run.
func (c *Coordinator) WebSocketHandler() http.Handler { return broadcast.Handler(c.hub) }

// Pages exposes the page store so `tola query` and `tola validate` can
// read the compiled site's metadata without going through the pipeline.
func (c *Coordinator) Pages() *page.Map { return c.pages }

// Space exposes the address space so `tola validate` can check internal
// links and permalink conflicts against the live build.
func (c *Coordinator) Space() *address.Space { return c.space }

// Diagnostics exposes the current compile-error snapshot.
func (c *Coordinator) Diagnostics() *diagnostics.Snapshot { return c.diag }

// BuildAll runs an initial full compile of every content file, the step
// the original performs before the watcher's first event can possibly
// matter — Run below only ever attaches the watcher and waits for
// *changes*, it never compiles the initial tree itself.
func (c *Coordinator) BuildAll(ctx context.Context) error {
	contentRoot := core.SourcePath(filepath.Join(c.cfg.Root, c.cfg.Cfg.Build.ContentDir))
	return c.sched.BuildAll(ctx, contentRoot)
}

// Persist flushes the in-memory cache store and the current diagnostics
// snapshot to disk under <root>/.tola/cache. This is the counterpart to
// New's restore-at-startup step; the scheduler itself never calls this,
// so the caller — cmd/tola's build and serve commands — is responsible
// for calling it (serve does so on a timer and once more after Run
// returns).
func (c *Coordinator) Persist() error {
	if err := cache.Persist(c.cfg.Root, c.store, c.index, c.space.All()); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	if err := cache.PersistErrors(c.cfg.Root, c.diag); err != nil {
		return fmt.Errorf("persist error snapshot: %w", err)
	}
	return nil
}

// Run starts the watcher first (so no event during startup is missed),
// starts the scheduler's event loop, and pumps watcher events through the
// debounce/classify/route pipeline until ctx is canceled. On
// cancellation it waits for the event pump to exit, then gives the
// scheduler a bounded grace period to finish its in-flight batch before
// returning (the watcher is stopped on return) — the same shape as the
// original's bounded wait on vdom_handle after sending
// VdomMsg::Shutdown. Run does not persist the cache; its caller does.
func (c *Coordinator) Run(ctx context.Context) error {
	c.watcher.Start()
	defer c.watcher.Stop()

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		c.sched.Run(ctx)
	}()

	pumpDone := make(chan shutdownSignal, 1)
	go c.pumpEvents(ctx, pumpDone)

	<-ctx.Done()
	<-pumpDone

	select {
	case <-schedDone:
	case <-time.After(SchedulerShutdownGrace):
		if c.cfg.Logger != nil {
			c.cfg.Logger.Warn("scheduler did not finish its in-flight batch within the shutdown grace period")
		}
	}
	return nil
}

// pumpEvents is the watcher-to-debouncer-to-router relay: every raw
// fsnotify event that is not editor noise (classify.IsBoringPath) is
// recorded into the debouncer, and every flushed batch is classified,
// routed, and — if it produced a message — handed to the scheduler. It
// exits as soon as ctx is canceled or a watcher channel closes, without
// draining events still buffered, signaling pumpDone so Run knows it's
// safe to start the scheduler's bounded shutdown wait.
func (c *Coordinator) pumpEvents(ctx context.Context, pumpDone chan<- shutdownSignal) {
	defer func() { pumpDone <- shutdownSignal{} }()

	log := logging.For(c.cfg.Logger, logging.CategoryWatch)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if classify.IsBoringPath(ev.Path) {
				continue
			}
			c.debouncer.Record(ev.Path, watchKindToChangeKind(ev.Kind), func(batch classify.DebouncedEvents) {
				c.onBatch(ctx, batch)
			})
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			if log != nil {
				log.Warn("watcher error", zap.Error(err))
			}
		}
	}
}

// onBatch classifies and routes one debounced batch, forwarding the
// resulting message to the scheduler. It runs on the debouncer's own
// timer goroutine (per time.AfterFunc), not on pumpEvents' goroutine, so
// it must not touch anything that isn't itself safe for concurrent use —
// every collaborator it reaches (space, classifier, scheduler.Messages)
// already is.
func (c *Coordinator) onBatch(ctx context.Context, batch classify.DebouncedEvents) {
	classified := c.classifier.Classify(batch)
	msg := c.router.Route(classified)
	if msg == nil {
		return
	}
	select {
	case c.sched.Messages <- msg:
	case <-ctx.Done():
	}
}

func watchKindToChangeKind(k watch.EventKind) classify.ChangeKind {
	switch k {
	case watch.Created:
		return classify.Created
	case watch.Removed:
		return classify.Removed
	default:
		return classify.Modified
	}
}

// buildRoots derives the watcher/classifier root set from the parsed
// config, resolving every configured directory relative to Root.
func buildRoots(cfg Config) watch.RootSet {
	join := func(rel string) core.SourcePath {
		if rel == "" {
			return core.SourcePath(filepath.Clean(cfg.Root))
		}
		return core.SourcePath(filepath.Join(cfg.Root, rel))
	}

	var depRoots, assetRoots []core.SourcePath
	for _, d := range cfg.Cfg.Build.DependencyDirs {
		depRoots = append(depRoots, join(d))
	}
	for _, a := range cfg.Cfg.Build.AssetDirs {
		assetRoots = append(assetRoots, join(a))
	}

	return watch.RootSet{
		ContentRoot: join(cfg.Cfg.Build.ContentDir),
		DepRoots:    depRoots,
		AssetRoots:  assetRoots,
		ConfigPath:  join("tola.toml"),
		OutputDir:   join(cfg.Cfg.Build.OutputDir),
	}
}

// snapshotErrors reads diag's current entries as a path->message map for
// seeding the hub's pending-error replay at startup.
func snapshotErrors(diag *diagnostics.Snapshot) map[core.Permalink]string {
	out := make(map[core.Permalink]string)
	for _, e := range diag.All() {
		out[e.URLPath] = e.Error
	}
	return out
}
