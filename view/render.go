package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/scout/markdown"
	"github.com/linanwx/scout/protocol"
	"github.com/linanwx/scout/session"
)

const snippetWidth = 120

// Options tune rendering.
type Options struct {
	Width        int // wrap width; <= 0 disables wrapping
	PreviewLimit int // fetched-page previews; <= 0 means DefaultPreviewLimit
}

// Styles used by the terminal renderers.
type Styles struct {
	Question lipgloss.Style
	Pending  lipgloss.Style
	Active   lipgloss.Style
	Complete lipgloss.Style
	Muted    lipgloss.Style
	Section  lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Question: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Active:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Complete: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Section:  lipgloss.NewStyle().Bold(true).Underline(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

var styles = DefaultStyles()

// QuestionHeader returns the literal question of a turn.
func QuestionHeader(t session.Turn) string {
	return t.Question
}

// StepIcon is the glyph shown for a step status.
func StepIcon(s StepStatus) string {
	switch s {
	case StepActive:
		return "●"
	case StepComplete:
		return "✓"
	default:
		return "○"
	}
}

// RenderStep draws one timeline row.
func RenderStep(s Step) string {
	st := styles.Pending
	switch s.Status {
	case StepActive:
		st = styles.Active
	case StepComplete:
		st = styles.Complete
	}
	line := st.Render(StepIcon(s.Status) + " " + s.Title)
	if s.Description != "" {
		line += styles.Muted.Render(" · " + s.Description)
	}
	return line
}

// RenderTimeline draws the step timeline, one step per line.
func RenderTimeline(steps []Step) string {
	lines := make([]string, len(steps))
	for i, s := range steps {
		lines[i] = "  " + RenderStep(s)
	}
	return strings.Join(lines, "\n")
}

// RenderPreviews draws fetched-page previews.
func RenderPreviews(pages []protocol.Page) string {
	lines := make([]string, 0, len(pages))
	for _, p := range pages {
		line := "  ↳ " + PageLabel(p) + styles.Muted.Render(" ("+Host(p.URL)+")")
		if sn := CleanSnippet(p.Snippet, snippetWidth); sn != "" {
			line += "\n    " + styles.Muted.Render(sn)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderReferences draws the numbered reference list.
func RenderReferences(pages []protocol.Page) string {
	lines := []string{styles.Section.Render("References")}
	for i, p := range pages {
		lines = append(lines, fmt.Sprintf("%2d. %s %s", i+1, PageLabel(p), styles.Muted.Render(p.URL)))
	}
	return strings.Join(lines, "\n")
}

// RenderAnswer renders answer markdown for a terminal.
func RenderAnswer(answer string, width int) string {
	return markdown.Render(markdown.Parse(answer), width)
}

// RenderTurn composes the full view of one turn: question, timeline,
// previews while the answer is pending, answer body and references.
func RenderTurn(t session.Turn, v protocol.Version, opts Options) string {
	parts := []string{
		styles.Question.Render("❯ " + QuestionHeader(t)),
		RenderTimeline(DeriveSteps(v, t.Messages)),
	}

	_, final := FinalAnswer(t.Messages)
	if !final {
		if previews := FetchPreviews(t.Messages, opts.PreviewLimit); len(previews) > 0 {
			parts = append(parts, RenderPreviews(previews))
		}
	}

	if answer := ResolveAnswer(t.Messages); strings.TrimSpace(answer) != "" {
		parts = append(parts, RenderAnswer(answer, opts.Width))
	}

	if refs := References(t.Messages); len(refs) > 0 {
		parts = append(parts, RenderReferences(refs))
	}
	return strings.Join(parts, "\n\n")
}

// RenderTranscript renders every turn of a snapshot.
func RenderTranscript(s session.Snapshot, opts Options) string {
	turns := make([]string, len(s.Turns))
	for i, t := range s.Turns {
		turns[i] = RenderTurn(t, s.Version, opts)
	}
	return strings.Join(turns, "\n\n"+styles.Muted.Render(strings.Repeat("─", 24))+"\n\n")
}

// StatusLine summarises the session state in one line.
func StatusLine(s session.Snapshot) string {
	switch s.Status {
	case session.StatusStreaming:
		tokens := 0
		if t, ok := s.LastTurn(); ok {
			tokens = TokenCount(ResolveAnswer(t.Messages))
		}
		return styles.Active.Render(fmt.Sprintf("streaming · %d tokens", tokens))
	case session.StatusError:
		return styles.Error.Render("error: " + s.Err)
	default:
		return styles.Muted.Render("ready")
	}
}
