package markdown

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by Render.
type Styles struct {
	Heading lipgloss.Style
	Bold    lipgloss.Style
	Italic  lipgloss.Style
	Code    lipgloss.Style
	Fence   lipgloss.Style
	Bullet  lipgloss.Style
}

// DefaultStyles returns the terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Italic:  lipgloss.NewStyle().Italic(true),
		Code:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Fence: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("240")).
			PaddingLeft(1),
		Bullet: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Render draws blocks for a terminal. Text wraps at width; width <= 0
// disables wrapping.
func Render(blocks []Block, width int) string {
	return RenderWith(blocks, width, DefaultStyles())
}

// RenderWith is Render with explicit styles.
func RenderWith(blocks []Block, width int, st Styles) string {
	var out []string
	for _, b := range blocks {
		switch b.Kind {
		case KindHeading:
			out = append(out, wrap(st.Heading.Render(spanText(b.Spans)), width))

		case KindCode:
			out = append(out, st.Fence.Render(b.Code))

		case KindList:
			var lines []string
			for _, it := range b.Items {
				indent := strings.Repeat("  ", it.Depth)
				bullet := indent + st.Bullet.Render("•") + " "
				body := wrap(styled(it.Spans, st), width-lipgloss.Width(bullet))
				lines = append(lines, bullet+hang(body, lipgloss.Width(bullet)))
			}
			out = append(out, strings.Join(lines, "\n"))

		default:
			out = append(out, wrap(styled(b.Spans, st), width))
		}
	}
	return strings.Join(out, "\n\n")
}

func styled(spans []Span, st Styles) string {
	var b strings.Builder
	for _, s := range spans {
		style := lipgloss.NewStyle()
		switch {
		case s.Code:
			style = st.Code
		case s.Bold && s.Italic:
			style = st.Bold.Inherit(st.Italic)
		case s.Bold:
			style = st.Bold
		case s.Italic:
			style = st.Italic
		}
		// Styles are applied per line so breaks survive rendering.
		lines := strings.Split(s.Text, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	return b.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// hang indents every line after the first by n columns.
func hang(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return strings.ReplaceAll(s, "\n", "\n"+pad)
}
