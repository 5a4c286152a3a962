package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/tola-rs/tola/internal/actor"
	"github.com/tola-rs/tola/internal/diagnostics"
)

// snapshotInterval is how often the dashboard polls the coordinator for
// fresh counters; this mirrors the original's ProgressLine being driven
// by the build loop's own counter increments, but since Go's pipeline
// has no single in-process caller to hook a callback into, the dashboard
// polls instead.
const snapshotInterval = 500 * time.Millisecond

// snapshot is the point-in-time read of everything the dashboard shows.
type snapshot struct {
	pageCount   int
	connections int
	errors      []diagnostics.Entry
}

func takeSnapshot(coord *actor.Coordinator) snapshot {
	return snapshot{
		pageCount:   len(coord.Pages().GetPages()),
		connections: coord.Hub().ConnectionCount(),
		errors:      coord.Diagnostics().All(),
	}
}

type tickMsg time.Time

type snapshotMsg snapshot

// Model is the bubbletea root model for `tola serve --dashboard`.
type Model struct {
	coord  *actor.Coordinator
	styles Styles

	width, height int
	startedAt     time.Time
	snap          snapshot
	quitting      bool

	// errors holds the rendered failing-pages list, scrollable once it
	// outgrows the status block's remaining screen height.
	errors viewport.Model
}

// New builds a dashboard model bound to a running Coordinator.
func New(coord *actor.Coordinator) Model {
	return Model{
		coord:     coord,
		styles:    NewStyles(),
		startedAt: time.Now(),
		width:     80,
		height:    24,
		errors:    viewport.New(80, 20),
	}
}

// statusLines is the number of lines the header/status block occupies
// above the scrollable error viewport, reserved out of the window height.
const statusLines = 9

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), snapshotCmd(m.coord))
}

func tickCmd() tea.Cmd {
	return tea.Tick(snapshotInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func snapshotCmd(coord *actor.Coordinator) tea.Cmd {
	return func() tea.Msg { return snapshotMsg(takeSnapshot(coord)) }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.errors.Width = msg.Width
		m.errors.Height = msg.Height - statusLines
		return m, nil
	case tickMsg:
		return m, tea.Batch(tickCmd(), snapshotCmd(m.coord))
	case snapshotMsg:
		m.snap = snapshot(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.errors, cmd = m.errors.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	header := m.styles.Header
	if m.width > 0 {
		header = header.Width(m.width)
	}
	b.WriteString(header.Render("tola — serving"))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Title.Render("status"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  uptime:      %s\n", time.Since(m.startedAt).Round(time.Second)))
	b.WriteString(fmt.Sprintf("  pages:       %d\n", m.snap.pageCount))
	b.WriteString(fmt.Sprintf("  connections: %d\n", m.snap.connections))

	errLine := fmt.Sprintf("  errors:      %d", len(m.snap.errors))
	if len(m.snap.errors) > 0 {
		b.WriteString(m.styles.Error.Render(errLine))
	} else {
		b.WriteString(m.styles.Success.Render(errLine))
	}
	b.WriteString("\n")

	if len(m.snap.errors) > 0 {
		b.WriteString("\n")
		m.errors.SetContent(m.renderErrorsContent())
		b.WriteString(m.errors.View())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("q to quit"))
	return b.String()
}

// renderErrorsContent builds the failing-pages viewport's content,
// preferring a glamour-rendered Markdown list and falling back to a plain
// one if the renderer can't be constructed at the current width.
func (m Model) renderErrorsContent() string {
	rendered, err := renderErrorsMarkdown(m.snap.errors, m.width)
	if err != nil {
		return m.styles.Title.Render("failing pages") + "\n" + renderErrorsPlain(m.styles, m.snap.errors)
	}
	return rendered
}

// renderErrorsMarkdown formats the current failing pages as a Markdown
// document and renders it through glamour, so long compiler error
// messages (which often contain their own code spans) get readable
// wrapping and syntax highlighting instead of a single unbroken line.
func renderErrorsMarkdown(entries []diagnostics.Entry, width int) (string, error) {
	sorted := sortedEntries(entries)

	var md strings.Builder
	md.WriteString("## failing pages\n\n")
	for _, e := range sorted {
		fmt.Fprintf(&md, "- **%s**: %s\n", e.Source, e.Error)
	}

	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md.String())
}

func renderErrorsPlain(styles Styles, entries []diagnostics.Entry) string {
	sorted := sortedEntries(entries)
	var b strings.Builder
	for _, e := range sorted {
		b.WriteString(fmt.Sprintf("  %s: %s\n", styles.Muted.Render(string(e.Source)), e.Error))
	}
	return b.String()
}

func sortedEntries(entries []diagnostics.Entry) []diagnostics.Entry {
	sorted := make([]diagnostics.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })
	return sorted
}
