// Package tui implements the optional `tola serve --dashboard` terminal
// status display. Grounded on
// _examples/theRebelliousNerd-codenerd/cmd/nerd/ui's Styles/Theme shape
// (styles.go) and SimpleTable component (simple_table.go), adapted from
// a chat-session palette to a build-status one.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6b7280")
	border  = lipgloss.Color("#2a3850")
	success = lipgloss.Color("#8BC34A")
	failure = lipgloss.Color("#e53935")
	warning = lipgloss.Color("#FFC107")
)

// Styles holds every lipgloss style the dashboard renders with.
type Styles struct {
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Title   lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Badge   lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles returns the dashboard's fixed style set.
func NewStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(primary).
			Foreground(lipgloss.Color("#0b0f14")).
			Bold(true).
			Padding(0, 2),

		Footer: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().Foreground(muted),

		Success: lipgloss.NewStyle().Foreground(success).Bold(true),

		Error: lipgloss.NewStyle().Foreground(failure).Bold(true),

		Warning: lipgloss.NewStyle().Foreground(warning).Bold(true),

		Badge: lipgloss.NewStyle().
			Background(primary).
			Foreground(lipgloss.Color("#0b0f14")).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().Foreground(border),
	}
}
