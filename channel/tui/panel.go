// Package tui provides the terminal user interface for interactive chat.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linanwx/scout/session"
)

// Panel is a composable TUI region with its own state, update logic, and view.
// The root App model orchestrates panels without knowing their internals.
type Panel interface {
	Update(tea.Msg) (Panel, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Session is the part of the session manager the UI drives.
type Session interface {
	SendMessage(text string) bool
	Cancel()
	Close()
}

// LogLineMsg carries a single log line from the logger writer.
type LogLineMsg struct{ Line string }

// SnapshotMsg carries fresh session state.
type SnapshotMsg struct{ Snapshot session.Snapshot }

// InputSubmitMsg is emitted when the user presses Enter in the input panel.
type InputSubmitMsg struct{ Text string }
