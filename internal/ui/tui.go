// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg carries a volume or mute change from the TUI to the player
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg signals that the user asked to quit
type QuitMsg struct{}

// VolumeControl holds channels for volume control communication
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(volCtrl *VolumeControl) Model {
	return Model{
		volume:     100,
		state:      StateIdle,
		volumeCtrl: volCtrl,
	}
}

// Run creates the TUI program; the caller starts it with Run on its own goroutine
// and feeds it StatusMsg values through Send.
func Run(volCtrl *VolumeControl, initial StatusMsg) (*tea.Program, error) {
	model := NewModel(volCtrl)
	model.applyStatus(initial)
	p := tea.NewProgram(model, tea.WithAltScreen())
	return p, nil
}
