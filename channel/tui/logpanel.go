package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxLogLines = 500

var (
	logDebugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	logInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	logWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type logEntry struct {
	text   string
	repeat int
}

// LogPanel shows slog text records, coloured by level. Identical
// consecutive records are folded into one line with a counter.
type LogPanel struct {
	viewport viewport.Model
	entries  []logEntry
}

// NewLogPanel creates a log panel.
func NewLogPanel() *LogPanel {
	return &LogPanel{viewport: viewport.New(0, 0)}
}

func (p *LogPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case LogLineMsg:
		p.add(strings.TrimRight(msg.Line, "\r\n"))
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *LogPanel) add(line string) {
	if line == "" {
		return
	}
	if n := len(p.entries); n > 0 && stripTime(p.entries[n-1].text) == stripTime(line) {
		p.entries[n-1].repeat++
	} else {
		p.entries = append(p.entries, logEntry{text: line, repeat: 1})
		if len(p.entries) > maxLogLines {
			p.entries = p.entries[len(p.entries)-maxLogLines:]
		}
	}

	rendered := make([]string, len(p.entries))
	for i, e := range p.entries {
		s := levelStyle(e.text).Render(e.text)
		if e.repeat > 1 {
			s += logDebugStyle.Render(fmt.Sprintf(" (x%d)", e.repeat))
		}
		rendered[i] = s
	}
	p.viewport.SetContent(strings.Join(rendered, "\n"))
	p.viewport.GotoBottom()
}

func (p *LogPanel) View() string {
	return p.viewport.View()
}

func (p *LogPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}

// Len returns the number of distinct buffered records.
func (p *LogPanel) Len() int { return len(p.entries) }

func levelStyle(line string) lipgloss.Style {
	switch {
	case strings.Contains(line, "level=ERROR"):
		return logErrorStyle
	case strings.Contains(line, "level=WARN"):
		return logWarnStyle
	case strings.Contains(line, "level=DEBUG"):
		return logDebugStyle
	default:
		return logInfoStyle
	}
}

// stripTime drops the leading time=... attribute of a text record.
func stripTime(line string) string {
	if strings.HasPrefix(line, "time=") {
		if i := strings.IndexByte(line, ' '); i >= 0 {
			return line[i+1:]
		}
	}
	return line
}
