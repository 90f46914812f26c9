package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/scout/session"
	"github.com/linanwx/scout/view"
)

// StatusPanel is a one-line summary of the session state.
type StatusPanel struct {
	snap  session.Snapshot
	width int
}

// NewStatusPanel creates a status panel.
func NewStatusPanel() *StatusPanel {
	return &StatusPanel{snap: session.Snapshot{Status: session.StatusReady}}
}

func (p *StatusPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	if m, ok := msg.(SnapshotMsg); ok {
		p.snap = m.Snapshot
	}
	return p, nil
}

func (p *StatusPanel) View() string {
	left := view.StatusLine(p.snap)
	hint := "enter ask · ctrl+c quit"
	if p.snap.Streaming() {
		hint = "esc stop · ctrl+c quit"
	}
	right := hintStyle.Render(hint)
	gap := max(p.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}

func (p *StatusPanel) SetSize(width, _ int) {
	p.width = width
}
