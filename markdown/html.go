package markdown

import (
	"fmt"
	"html"
	"strings"
)

// HTML renders blocks as an HTML fragment for the browser mirror. All text
// is escaped.
func HTML(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		switch blk.Kind {
		case KindHeading:
			level := min(max(blk.Level, 1), 6)
			fmt.Fprintf(&b, "<h%d>", level)
			writeSpans(&b, blk.Spans)
			fmt.Fprintf(&b, "</h%d>\n", level)

		case KindCode:
			if blk.Lang != "" {
				fmt.Fprintf(&b, "<pre><code class=\"language-%s\">", html.EscapeString(blk.Lang))
			} else {
				b.WriteString("<pre><code>")
			}
			b.WriteString(html.EscapeString(blk.Code))
			b.WriteString("</code></pre>\n")

		case KindList:
			b.WriteString("<ul>\n")
			for _, it := range blk.Items {
				fmt.Fprintf(&b, "<li class=\"depth-%d\">", it.Depth)
				writeSpans(&b, it.Spans)
				b.WriteString("</li>\n")
			}
			b.WriteString("</ul>\n")

		default:
			b.WriteString("<p>")
			writeSpans(&b, blk.Spans)
			b.WriteString("</p>\n")
		}
	}
	return b.String()
}

func writeSpans(b *strings.Builder, spans []Span) {
	for _, s := range spans {
		text := strings.ReplaceAll(html.EscapeString(s.Text), "\n", "<br>")
		if s.Code {
			text = "<code>" + text + "</code>"
		}
		if s.Italic {
			text = "<i>" + text + "</i>"
		}
		if s.Bold {
			text = "<b>" + text + "</b>"
		}
		b.WriteString(text)
	}
}
