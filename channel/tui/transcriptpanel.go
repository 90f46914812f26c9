package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/scout/session"
	"github.com/linanwx/scout/view"
)

var hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

const emptyHint = "Ask a question to start researching. Esc stops a running answer, Ctrl+C quits."

// TranscriptPanel shows every turn of the session in a scrollable viewport.
// It follows the bottom while the user has not scrolled up.
type TranscriptPanel struct {
	viewport viewport.Model
	snap     session.Snapshot
	opts     view.Options
}

// NewTranscriptPanel creates a transcript panel.
func NewTranscriptPanel(opts view.Options) *TranscriptPanel {
	vp := viewport.New(0, 0)
	vp.SetContent(hintStyle.Render(emptyHint))
	return &TranscriptPanel{viewport: vp, opts: opts}
}

func (p *TranscriptPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		p.snap = msg.Snapshot
		p.refresh()
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *TranscriptPanel) refresh() {
	follow := p.viewport.AtBottom()
	if len(p.snap.Turns) == 0 {
		p.viewport.SetContent(hintStyle.Render(emptyHint))
		return
	}
	opts := p.opts
	opts.Width = p.viewport.Width
	p.viewport.SetContent(view.RenderTranscript(p.snap, opts))
	if follow {
		p.viewport.GotoBottom()
	}
}

func (p *TranscriptPanel) View() string {
	return p.viewport.View()
}

func (p *TranscriptPanel) SetSize(width, height int) {
	resized := p.viewport.Width != width
	p.viewport.Width = width
	p.viewport.Height = height
	if resized {
		p.refresh()
	}
}
