// Package tui provides the primary terminal user interface implementation: a
// status dashboard over a running coordinator rather than a content browser.
package tui

import (
	"github.com/driftplay/player/coordinator"
	tea "github.com/charmbracelet/bubbletea"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Coordinator *coordinator.Coordinator
	Title       string
	Continue    bool
}

// Run initializes and executes the primary Bubble Tea application loop,
// subscribing the dashboard model to the coordinator for the lifetime of the
// program and unregistering it on exit.
func Run(options *Options) error {
	model := newModel(options)

	options.Coordinator.AddListener(model.bridge)
	defer options.Coordinator.RemoveListener(model.bridge)

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
