// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the channel commands flow out on
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/pkg/transport"
)

// Action names a user request raised from the keyboard
type Action int

const (
	ActionRecord Action = iota
	ActionPreview
	ActionStopPlayback
	ActionToggle
	ActionStop
	ActionSeekBy
	ActionCycleSource
	ActionClear
)

// Command is one user request for the controller
type Command struct {
	Action    Action
	Kind      app.Kind
	Track     transport.TrackID
	Selection transport.Selection
	Delta     float64
}

// QuitMsg signals the user asked to quit
type QuitMsg struct{}

// StateMsg delivers a new view model to the TUI
type StateMsg app.State

// Control holds the channels the TUI talks to the application on
type Control struct {
	Commands chan Command
	Quit     chan QuitMsg
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Commands: make(chan Command, 10),
		Quit:     make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control) Model {
	return Model{
		ctrl: ctrl,
	}
}

// Run creates the TUI program; the caller runs it
func Run(ctrl *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
