package page

import (
	"encoding/json"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/tola-rs/tola/internal/core"
)

// Stored is a page's compiled metadata, the unit injected into the
// `@tola/pages` package for iterative compilation.
type Stored struct {
	Permalink       core.Permalink
	Title           string
	Date            time.Time
	Tags            []string
	Summary         string
	Draft           bool
	Aliases         []core.Permalink
	CustomPermalink string
	Extra           map[string]any // arbitrary frontmatter fields, flattened into JSON at the call site
}

// DisplayTitle returns the title, falling back to the permalink string
// when no title was set, per spec.md's display-name rule.
func (s Stored) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return string(s.Permalink)
}

// Heading is a single heading entry captured from a compiled page's body,
// used to answer `current.headings` queries for iterative pages.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Map is the page-metadata store: every compiled page's record, its
// headings, and the source-path -> permalink mapping, all guarded by a
// single RWMutex (writes are rare and always batch-scoped to one compile
// cycle; reads happen from many concurrent compile workers).
type Map struct {
	mu            sync.RWMutex
	pages         map[core.Permalink]Stored
	headings      map[core.Permalink][]Heading
	sourceToURL   map[core.SourcePath]core.Permalink
}

// NewMap returns an empty page store.
func NewMap() *Map {
	return &Map{
		pages:       make(map[core.Permalink]Stored),
		headings:    make(map[core.Permalink][]Heading),
		sourceToURL: make(map[core.SourcePath]core.Permalink),
	}
}

// InsertPage records or replaces a page's metadata.
func (m *Map) InsertPage(source core.SourcePath, p Stored) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[p.Permalink] = p
	m.sourceToURL[source] = p.Permalink
}

// RemovePage deletes a page's record, headings, and source mapping.
func (m *Map) RemovePage(source core.SourcePath) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if url, ok := m.sourceToURL[source]; ok {
		delete(m.pages, url)
		delete(m.headings, url)
		delete(m.sourceToURL, source)
	}
}

// InsertHeadings records the heading list extracted from a page's body.
func (m *Map) InsertHeadings(permalink core.Permalink, headings []Heading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headings[permalink] = headings
}

// GetHeadings returns the headings previously recorded for permalink.
func (m *Map) GetHeadings(permalink core.Permalink) []Heading {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.headings[permalink]
}

// Get returns the stored record for permalink, if any.
func (m *Map) Get(permalink core.Permalink) (Stored, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pages[permalink]
	return p, ok
}

// GetPermalinkBySource returns the permalink currently registered for a
// source path.
func (m *Map) GetPermalinkBySource(source core.SourcePath) (core.Permalink, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.sourceToURL[source]
	return p, ok
}

// GetPages returns every non-draft page sorted date-descending, then
// title-ascending for ties — the order injected into `@tola/pages`.
func (m *Map) GetPages() []Stored {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Stored, 0, len(m.pages))
	for _, p := range m.pages {
		if !p.Draft {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].DisplayTitle() < out[j].DisplayTitle()
	})
	return out
}

// AllPages returns every page, draft or not, unsorted — the source
// `tola query --drafts` reads from, since GetPages' draft filter and
// stable ordering exist for the injected `@tola/pages` package, not for
// ad hoc querying.
func (m *Map) AllPages() []Stored {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Stored, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, p)
	}
	return out
}

// PagesHash is an order-independent content fingerprint of every page's
// permalink + metadata (drafts included), used by the iterative-compile
// loop to detect whether another round is needed.
func (m *Map) PagesHash() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	urls := make([]core.Permalink, 0, len(m.pages))
	for url := range m.pages {
		urls = append(urls, url)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i] < urls[j] })

	h := fnv.New64a()
	for _, url := range urls {
		p := m.pages[url]
		h.Write([]byte(url))
		data, _ := json.Marshal(p)
		h.Write(data)
	}
	return h.Sum64()
}

// BuildInputs assembles the `@tola/site` + `@tola/pages` injection context
// that the scheduler hands to every page compile.
func (m *Map) BuildInputs(site map[string]any) map[string]any {
	return map[string]any{
		"@tola/site":  site,
		"@tola/pages": m.pagesToJSONValue(),
		"phase":       "compile",
		"format":      "html",
	}
}

func (m *Map) pagesToJSONValue() []map[string]any {
	pages := m.GetPages()
	out := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		out = append(out, map[string]any{
			"permalink": string(p.Permalink),
			"title":     p.DisplayTitle(),
			"date":      p.Date,
			"tags":      p.Tags,
			"summary":   p.Summary,
		})
	}
	return out
}

// BuildCurrentContext assembles the `__tola_current` injection context for
// an iterative page: its own identity plus the link graph and heading
// list the rest of the page set currently has on record for it.
func (m *Map) BuildCurrentContext(permalink core.Permalink, links *LinkGraph) map[string]any {
	return map[string]any{
		"path":      string(permalink),
		"parent":    string(permalink.Parent()),
		"links_to":  links.LinksFrom(permalink),
		"linked_by": links.LinkedBy(permalink),
		"headings":  m.GetHeadings(permalink),
	}
}
