package view

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/linanwx/scout/protocol"
)

// DefaultPreviewLimit caps the fetched-page previews shown while a turn
// streams.
const DefaultPreviewLimit = 4

// DedupPages keeps the first page for each URL, in order, and stops after
// limit pages. limit <= 0 means no cap.
func DedupPages(pages []protocol.Page, limit int) []protocol.Page {
	seen := make(map[string]struct{}, len(pages))
	out := make([]protocol.Page, 0, len(pages))
	for _, p := range pages {
		if _, dup := seen[p.URL]; dup {
			continue
		}
		seen[p.URL] = struct{}{}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// FetchPreviews returns the pages of the most recent fetch event that
// carries any, deduplicated and capped at limit (DefaultPreviewLimit when
// limit <= 0).
func FetchPreviews(msgs []protocol.Message, limit int) []protocol.Page {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		var pages []protocol.Page
		switch m := msgs[i].(type) {
		case protocol.FetchStart:
			pages = m.Pages
		case protocol.FetchEnd:
			pages = m.Pages
		case protocol.StepFetchStart:
			pages = m.Pages
		case protocol.StepFetchEnd:
			pages = m.Pages
		}
		if len(pages) > 0 {
			return DedupPages(pages, limit)
		}
	}
	return nil
}

// References returns the final answer's citations, deduplicated and
// uncapped.
func References(msgs []protocol.Message) []protocol.Page {
	a, ok := FinalAnswer(msgs)
	if !ok {
		return nil
	}
	return DedupPages(a.Citations, 0)
}

// CleanSnippet reduces an HTML or plain snippet to one line of text of at
// most limit runes. limit <= 0 disables truncation.
func CleanSnippet(s string, limit int) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	s = strings.Join(strings.Fields(s), " ")
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		r := []rune(s)
		s = strings.TrimRight(string(r[:limit-1]), " ") + "…"
	}
	return s
}

// Host returns the page's host without a leading "www.", or the raw URL when
// it has none.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// PageLabel is the title when present, else the host.
func PageLabel(p protocol.Page) string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	return Host(p.URL)
}
