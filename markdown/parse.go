// Package markdown renders the small markdown subset used in research
// answers: headings, bold, italic, inline code, fenced code blocks,
// unordered lists and paragraphs.
//
// Anything else degrades to plain text inside the nearest supported block:
//   - Ordered lists become unordered items
//   - Links and images keep their label
//   - Block quotes are unwrapped
//   - Raw HTML is kept as literal text
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Kind identifies a block.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading   Kind = "heading"
	KindList      Kind = "list"
	KindCode      Kind = "code"
)

// Span is a run of text with one style.
type Span struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Code   bool   `json:"code,omitempty"`
}

// Item is one list entry. Depth is 0 for top-level items.
type Item struct {
	Depth int    `json:"depth,omitempty"`
	Spans []Span `json:"spans"`
}

// Block is one rendered unit.
type Block struct {
	Kind  Kind   `json:"kind"`
	Level int    `json:"level,omitempty"` // heading level
	Lang  string `json:"lang,omitempty"`  // code fence info
	Code  string `json:"code,omitempty"`
	Spans []Span `json:"spans,omitempty"`
	Items []Item `json:"items,omitempty"`
}

var parser = goldmark.New().Parser()

// Parse splits src into blocks.
func Parse(src string) []Block {
	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))

	p := &blockParser{source: source}
	p.walk(doc)
	return p.blocks
}

type blockParser struct {
	source []byte
	blocks []Block
}

func (p *blockParser) walk(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.block(c)
	}
}

func (p *blockParser) block(node ast.Node) {
	switch n := node.(type) {
	case *ast.Heading:
		p.add(Block{Kind: KindHeading, Level: n.Level, Spans: p.spans(n)})

	case *ast.Paragraph, *ast.TextBlock:
		p.add(Block{Kind: KindParagraph, Spans: p.spans(n)})

	case *ast.List:
		var items []Item
		p.list(n, 0, &items)
		if len(items) > 0 {
			p.blocks = append(p.blocks, Block{Kind: KindList, Items: items})
		}

	case *ast.FencedCodeBlock:
		p.blocks = append(p.blocks, Block{
			Kind: KindCode,
			Lang: string(n.Language(p.source)),
			Code: p.lines(n),
		})

	case *ast.CodeBlock:
		p.blocks = append(p.blocks, Block{Kind: KindCode, Code: p.lines(n)})

	case *ast.HTMLBlock:
		p.add(Block{Kind: KindParagraph, Spans: []Span{{Text: p.lines(n)}}})

	case *ast.ThematicBreak:

	default:
		if node.HasChildren() {
			p.walk(node)
		}
	}
}

// add appends b unless it has no visible text.
func (p *blockParser) add(b Block) {
	for _, s := range b.Spans {
		if strings.TrimSpace(s.Text) != "" {
			p.blocks = append(p.blocks, b)
			return
		}
	}
}

func (p *blockParser) list(n *ast.List, depth int, items *[]Item) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		li, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		var (
			spans  []Span
			nested []*ast.List
		)
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch cn := c.(type) {
			case *ast.List:
				nested = append(nested, cn)
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				spans = append(spans, Span{Text: p.lines(cn), Code: true})
			default:
				if len(spans) > 0 {
					spans = append(spans, Span{Text: " "})
				}
				spans = append(spans, p.spans(c)...)
			}
		}
		*items = append(*items, Item{Depth: depth, Spans: merge(spans)})
		for _, sub := range nested {
			p.list(sub, depth+1, items)
		}
	}
}

func (p *blockParser) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(p.source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

type style struct {
	bold, italic bool
}

func (p *blockParser) spans(n ast.Node) []Span {
	var out []Span
	p.inlines(n, style{}, &out)
	return merge(out)
}

func (p *blockParser) inlines(n ast.Node, st style, out *[]Span) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.inline(c, st, out)
	}
}

func (p *blockParser) inline(node ast.Node, st style, out *[]Span) {
	emit := func(s string) {
		if s != "" {
			*out = append(*out, Span{Text: s, Bold: st.bold, Italic: st.italic})
		}
	}

	switch n := node.(type) {
	case *ast.Text:
		emit(string(n.Segment.Value(p.source)))
		if n.SoftLineBreak() || n.HardLineBreak() {
			emit("\n")
		}

	case *ast.String:
		emit(string(n.Value))

	case *ast.Emphasis:
		next := st
		if n.Level >= 2 {
			next.bold = true
		} else {
			next.italic = true
		}
		p.inlines(n, next, out)

	case *ast.CodeSpan:
		var buf bytes.Buffer
		p.collectText(n, &buf)
		*out = append(*out, Span{Text: buf.String(), Code: true, Bold: st.bold, Italic: st.italic})

	case *ast.AutoLink:
		emit(string(n.Label(p.source)))

	case *ast.Image:
		var buf bytes.Buffer
		p.collectText(n, &buf)
		emit(buf.String())

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			emit(string(seg.Value(p.source)))
		}

	default:
		if node.HasChildren() {
			p.inlines(node, st, out)
		}
	}
}

func (p *blockParser) collectText(node ast.Node, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(p.source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			p.collectText(c, buf)
		}
	}
}

// merge joins neighbouring spans that share a style.
func merge(spans []Span) []Span {
	var out []Span
	for _, s := range spans {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Bold == s.Bold && last.Italic == s.Italic && last.Code == s.Code {
				last.Text += s.Text
				continue
			}
		}
		out = append(out, s)
	}
	return trimTrailingBreaks(out)
}

// trimTrailingBreaks drops line breaks left behind by the last soft break.
func trimTrailingBreaks(spans []Span) []Span {
	for len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRight(last.Text, "\n")
		if last.Text != "" {
			break
		}
		spans = spans[:len(spans)-1]
	}
	return spans
}

// PlainText flattens blocks into unstyled text, one block per paragraph.
func PlainText(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		switch b.Kind {
		case KindCode:
			parts = append(parts, b.Code)
		case KindList:
			var lines []string
			for _, it := range b.Items {
				lines = append(lines, strings.Repeat("  ", it.Depth)+"- "+spanText(it.Spans))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		default:
			parts = append(parts, spanText(b.Spans))
		}
	}
	return strings.Join(parts, "\n\n")
}

func spanText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
