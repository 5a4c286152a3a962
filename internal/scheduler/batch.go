package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tola-rs/tola/internal/address"
	"github.com/tola-rs/tola/internal/broadcast"
	"github.com/tola-rs/tola/internal/cache"
	"github.com/tola-rs/tola/internal/compiler"
	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/diagnostics"
	"github.com/tola-rs/tola/internal/iterative"
	"github.com/tola-rs/tola/internal/page"
	"github.com/tola-rs/tola/internal/vdom"
)

// compileOne compiles a single source file and routes its outcome:
// address-space registration (including conflict short-circuit), the
// no-op skip hook (see shouldSkipNoopChange), the VDOM diff against the
// cached entry, and the resulting broadcast/cache update. If ctx is
// canceled by the time the compile returns, the outcome is discarded.
func (s *Scheduler) compileOne(ctx context.Context, src core.SourcePath, priority core.Priority) {
	kind := core.ContentKindFromPath(string(src))
	pageCompiler, ok := s.registry.For(kind)
	if !ok {
		return
	}

	if skip := s.shouldSkipNoopChange(src); skip {
		s.batchLog.RecordUnchanged()
		return
	}

	content, err := readSource(src)
	if err != nil {
		s.onCompileError(src, err.Error())
		return
	}

	input := compiler.Input{
		Source:   src,
		Content:  content,
		Packages: s.pages.BuildInputs(nil),
	}
	out, err := pageCompiler.Compile(ctx, input)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.onCompileError(src, err.Error())
		return
	}

	permalink := derivePermalink(src, s.root)
	if out.CustomPermalink != "" {
		permalink = core.NewPermalink(out.CustomPermalink)
	}

	update := s.space.Register(src, permalink)
	if update.Kind == address.UpdateConflict {
		s.batchLog.RecordConflict()
		return
	}
	if update.Kind == address.UpdateChanged {
		s.batchLog.RecordPermalinkChange()
		s.cacheStore.Rekey(update.OldURL, permalink)
		s.links.RemovePage(update.OldURL)
		cleanupOldOutput(s.root, update.OldURL)
	}

	s.pages.InsertPage(src, page.Stored{
		Permalink:       permalink,
		Title:           out.Title,
		Draft:           out.Draft,
		CustomPermalink: out.CustomPermalink,
	})
	s.links.Record(permalink, out.Links)
	s.deps.Record(src, out.Dependencies)
	s.pages.InsertHeadings(permalink, toPageHeadings(out.Headings))

	if core.PageKindFromPackages(out.AccessedPackages) == core.PageIterative {
		s.deps.Record(src, append(out.Dependencies, core.SourcePath("@tola/pages")))
	}

	parsed, raw := parseDocument(out.HTML)
	indexed := vdom.AssignStableIDs(raw, stableIDSeedFor(permalink))
	indexed.Source = string(src)

	if err := writeOutputFile(s.root, permalink, parsed); err != nil {
		s.onCompileError(src, err.Error())
		return
	}

	prior, hadPrior := s.cacheStore.Get(permalink)
	var outcome vdom.DiffOutcome
	if hadPrior {
		outcome = vdom.Diff(prior.Doc, indexed)
	} else {
		outcome = vdom.DiffOutcome{Kind: vdom.OutcomeInitial}
	}

	s.routeOutcome(permalink, indexed, outcome, prior)
	s.diag.ClearFor(src)
	s.hub.ClearError(permalink)
}

// writeOutputFile serializes the compiled document back to disk at the
// permalink's index.html, creating any parent directories it needs. The
// dev server's static file handler and a plain `tola build` both depend
// on this tree being kept current on every successful compile, not just
// when the VDOM diff finds a change — a client that hasn't connected yet
// always loads the full file, never a patch.
func writeOutputFile(root string, permalink core.Permalink, doc *html.Node) error {
	if doc == nil {
		return fmt.Errorf("render %s: no parsed document", permalink)
	}
	path := outputPathFor(root, permalink)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir for %s: %w", permalink, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := html.Render(f, doc); err != nil {
		return fmt.Errorf("render %s: %w", permalink, err)
	}
	return nil
}

func (s *Scheduler) routeOutcome(permalink core.Permalink, indexed *vdom.IndexedDocument, outcome vdom.DiffOutcome, prior cache.Entry) {
	switch outcome.Kind {
	case vdom.OutcomeInitial:
		s.hub.Broadcast(broadcast.Reload(string(permalink)))
		s.batchLog.RecordReload("initial")
	case vdom.OutcomeUnchanged:
		s.batchLog.RecordUnchanged()
		return // cache entry unchanged; nothing to persist
	case vdom.OutcomePatches:
		s.hub.Broadcast(broadcast.FromPatches(string(permalink), outcome.Patches))
		s.batchLog.RecordReload("patch")
	case vdom.OutcomeNeedsReload:
		s.hub.Broadcast(broadcast.ReloadWithReason(string(permalink), outcome.Reason))
		s.batchLog.RecordReload(outcome.Reason)
	}
	// Cache is updated only after the broadcast has been accepted for
	// send, so a crash between compiling and broadcasting never leaves
	// the cache ahead of what clients have actually seen.
	s.cacheStore.Set(permalink, cache.Entry{Doc: indexed, Version: prior.Version + 1})
}

func (s *Scheduler) onCompileError(src core.SourcePath, errMsg string) {
	permalink, _ := s.space.PermalinkFor(src)
	wasFirst := s.batchLog.errorCountSnapshot() == 0
	s.diag.Push(diagnostics.Entry{Source: src, URLPath: permalink, Error: errMsg})
	s.cacheStore.Delete(permalink)
	if wasFirst {
		s.hub.RecordError(permalink, errMsg)
	}
	s.batchLog.RecordError(src, errMsg)
	if s.logger != nil {
		s.logger.Warn("compile error", zap.String("source", string(src)), zap.Error(errors.New(errMsg)))
	}
}

// onContentRemoved runs the cleanup cascade for a deleted source: the
// address-space mapping, page record, link-graph entries, dependency
// graph entry, cached VDOM entry, and the compiled output file (plus its
// now-empty parent directories) are all removed together.
func (s *Scheduler) onContentRemoved(src core.SourcePath) {
	permalink, ok := s.space.PermalinkFor(src)
	if !ok {
		return
	}
	s.space.Remove(src)
	s.pages.RemovePage(src)
	s.links.RemovePage(permalink)
	s.deps.Remove(src)
	s.cacheStore.Delete(permalink)
	s.diag.ClearFor(src)
	s.hub.ClearError(permalink)
	s.hub.Broadcast(broadcast.ReloadWithReason(string(permalink), "removed"))
	cleanupOldOutput(s.root, permalink)
}

// cleanupOldOutput removes a permalink's compiled index.html plus any
// parent directory that becomes empty as a result.
func cleanupOldOutput(root string, permalink core.Permalink) {
	outputPath := outputPathFor(root, permalink)
	_ = os.Remove(outputPath)

	dir := filepath.Dir(outputPath)
	for dir != root && dir != "." && dir != string(filepath.Separator) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if os.Remove(dir) != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
}

func outputPathFor(root string, permalink core.Permalink) string {
	p := string(permalink)
	if p == "/" {
		return filepath.Join(root, "index.html")
	}
	return filepath.Join(root, filepath.FromSlash(p), "index.html")
}

// fullRebuild clears the dependency graph, the asset-version cache, and
// the on-disk cache directory, marks the system unhealthy, and recompiles
// the pages connected clients currently have open. It does not reload
// the config, clear the in-memory VDOM store, or walk the content tree:
// nothing calls BuildAll after a FullRebuild message, so pages that no
// client has open are not recompiled and the system stays marked
// unhealthy until the next BuildAll.
func (s *Scheduler) fullRebuild(ctx context.Context) {
	s.deps.Clear()
	s.assets.Clear()
	_ = cache.Clear(s.root)
	core.SetHealthy(false)
	s.recompileActivePages(ctx)
}

// BuildAll walks every content file under contentRoot and compiles it,
// used for the initial cold-start build (fullRebuild does not call it).
func (s *Scheduler) BuildAll(ctx context.Context, contentRoot core.SourcePath) error {
	var sources []core.SourcePath
	err := filepath.Walk(string(contentRoot), func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if core.IsContentFile(p) {
			sources = append(sources, core.SourcePath(p))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, src := range sources {
		s.compileOne(ctx, src, core.PriorityBackground)
	}
	core.SetHealthy(true)
	return nil
}

// runIterativeConvergence recompiles iterative pages round after round
// until the page set's hash stabilizes, using internal/iterative's
// convergence loop.
func (s *Scheduler) runIterativeConvergence(ctx context.Context) {
	iterativeSources := s.deps.Affected(core.SourcePath("@tola/pages"))
	if len(iterativeSources) == 0 {
		return
	}
	result, err := iterative.Converge(func() (uint64, error) {
		for _, src := range iterativeSources {
			s.compileOne(ctx, src, core.PriorityBackground)
		}
		return s.pages.PagesHash(), nil
	})
	if err != nil {
		return
	}
	if s.logger != nil {
		s.logger.Debug("iterative convergence", zap.Int("rounds", result.Rounds), zap.Int("outcome", int(result.Outcome)))
	}
}

// shouldSkipNoopChange is the hook for skipping a no-op save (a source
// whose content and dependency hashes match its last successful
// compile). Scheduler has no cache.Index reference and the output files
// carry no freshness marker, so it always reports false, and no other
// layer performs a no-op skip: every save is recompiled.
func (s *Scheduler) shouldSkipNoopChange(core.SourcePath) bool {
	return false
}

func toPageHeadings(in []compiler.HeadingOut) []page.Heading {
	out := make([]page.Heading, 0, len(in))
	for _, h := range in {
		out = append(out, page.Heading{Level: h.Level, Text: h.Text, ID: h.ID})
	}
	return out
}

// stableIDSeedFor derives a document's StableID starting point from its
// permalink alone, so recompiling the same page always hands out the same
// depth-first ID sequence to its nodes (the diff only realigns correctly
// when a logical node keeps its ID across rebuilds). A global counter
// can't provide that: every recompile would shift the whole range and
// every node would look removed-and-reinserted to the differ.
func stableIDSeedFor(permalink core.Permalink) vdom.StableID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(permalink))
	return vdom.StableID(h.Sum64())
}

func derivePermalink(src core.SourcePath, root string) core.Permalink {
	rel := src.RelativeTo(core.SourcePath(root))
	rel = trimContentExt(rel)
	return core.NewPermalink("/" + filepath.ToSlash(rel))
}

func trimContentExt(rel string) string {
	ext := filepath.Ext(rel)
	switch ext {
	case ".md", ".markdown", ".typ":
		rel = rel[:len(rel)-len(ext)]
	}
	if filepath.Base(rel) == "index" {
		rel = filepath.Dir(rel)
	}
	return rel
}

// parseDocument parses rendered HTML bytes once into both shapes the
// rest of compileOne needs: the raw *html.Node tree (serialized back to
// disk by writeOutputFile) and the vdom.Node tree, ready for StableID
// assignment. Only element/text/comment nodes that matter for diffing
// are kept in the latter; doctype and document nodes are skipped since
// the diff algorithm only ever compares document content.
func parseDocument(htmlBytes []byte) (*html.Node, *vdom.RawDocument) {
	root := &vdom.Node{Kind: vdom.KindElement, Tag: "html"}
	doc, err := html.Parse(bytesReaderOf(htmlBytes))
	if err != nil {
		return nil, &vdom.RawDocument{Root: root}
	}
	if htmlNode := findAtom(doc, atom.Html); htmlNode != nil {
		root = convertNode(htmlNode)
	}
	return doc, &vdom.RawDocument{Root: root}
}

func bytesReaderOf(b []byte) io.Reader { return bytes.NewReader(b) }

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

func convertNode(n *html.Node) *vdom.Node {
	switch n.Type {
	case html.TextNode:
		return &vdom.Node{Kind: vdom.KindText, Text: n.Data}
	case html.CommentNode:
		return &vdom.Node{Kind: vdom.KindComment, Text: n.Data}
	case html.ElementNode:
		attrs := make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		out := &vdom.Node{Kind: vdom.KindElement, Tag: n.Data, Attrs: attrs}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode || c.Type == html.TextNode || c.Type == html.CommentNode {
				out.Children = append(out.Children, convertNode(c))
			}
		}
		return out
	default:
		return &vdom.Node{Kind: vdom.KindComment}
	}
}
