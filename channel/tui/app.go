package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/scout/session"
	"github.com/linanwx/scout/view"
)

const defaultLogRatio = 0.25

var separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// Options configure the App.
type Options struct {
	Prompt string
	View   view.Options
}

// App is the root bubbletea model that orchestrates panels and layout.
// Snapshots arrive through a session.Relay so the session never blocks on
// the UI.
type App struct {
	session Session
	relay   *session.Relay

	transcript *TranscriptPanel
	logs       *LogPanel
	status     *StatusPanel
	input      *InputPanel

	width, height int
	logRatio      float64
	showLogs      bool
	streaming     bool
}

// NewApp creates the root TUI model. relay must be the observer of s.
func NewApp(s Session, relay *session.Relay, opts Options) *App {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = "> "
	}
	return &App{
		session:    s,
		relay:      relay,
		transcript: NewTranscriptPanel(opts.View),
		logs:       NewLogPanel(),
		status:     NewStatusPanel(),
		input:      NewInputPanel(prompt),
		logRatio:   defaultLogRatio,
		showLogs:   true,
	}
}

func (m *App) Init() tea.Cmd {
	return m.waitSnapshot()
}

// waitSnapshot blocks until the relay has a fresh snapshot.
func (m *App) waitSnapshot() tea.Cmd {
	return func() tea.Msg {
		for range m.relay.Ready() {
			if s, ok := m.relay.Take(); ok {
				return SnapshotMsg{Snapshot: s}
			}
		}
		return nil
	}
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.session.Close()
			return m, tea.Quit
		case tea.KeyEsc:
			m.session.Cancel()
			return m, nil
		case tea.KeyCtrlL:
			m.showLogs = !m.showLogs
			m.recalcLayout()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			p, cmd := m.transcript.Update(msg)
			m.transcript = p.(*TranscriptPanel)
			return m, cmd
		}
		p, cmd := m.input.Update(msg)
		m.input = p.(*InputPanel)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		p, cmd := m.transcript.Update(msg)
		m.transcript = p.(*TranscriptPanel)
		cmds = append(cmds, cmd)

	case InputSubmitMsg:
		text := strings.TrimSpace(msg.Text)
		if text == "exit" || text == "quit" || text == "/exit" || text == "/quit" {
			m.session.Close()
			return m, tea.Quit
		}
		m.session.SendMessage(msg.Text)

	case SnapshotMsg:
		m.streaming = msg.Snapshot.Streaming()
		m.input.SetLocked(m.streaming)
		m.transcript.Update(msg)
		m.status.Update(msg)
		cmds = append(cmds, m.waitSnapshot())

	case LogLineMsg:
		m.logs.Update(msg)

	default:
		p, cmd := m.input.Update(msg)
		m.input = p.(*InputPanel)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *App) View() string {
	if m.width == 0 || m.height == 0 {
		return "initializing..."
	}

	sep := separatorStyle.Render(strings.Repeat("─", m.width))
	parts := []string{}
	if m.showLogs {
		parts = append(parts, m.logs.View(), sep)
	}
	parts = append(parts,
		m.transcript.View(),
		sep,
		m.status.View(),
		m.input.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *App) recalcLayout() {
	const inputH, statusH = 1, 1

	seps := 1
	if m.showLogs {
		seps = 2
	}
	usable := max(m.height-inputH-statusH-seps, 2)
	logH := 0
	if m.showLogs {
		logH = max(int(float64(usable)*m.logRatio), 1)
	}
	mainH := max(usable-logH, 1)

	m.logs.SetSize(m.width, logH)
	m.transcript.SetSize(m.width, mainH)
	m.status.SetSize(m.width, statusH)
	m.input.SetSize(m.width, inputH)
}
