package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tola-rs/tola/internal/actor"
)

// Run drives the dashboard program until ctx is canceled or the user
// quits it directly (q / ctrl+c), whichever happens first.
func Run(ctx context.Context, coord *actor.Coordinator) error {
	program := tea.NewProgram(New(coord), tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err := program.Run()
	return err
}
