package view

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/linanwx/scout/protocol"
	"github.com/linanwx/scout/session"
)

func urls(pages []protocol.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.URL
	}
	return out
}

func TestResolveAnswer(t *testing.T) {
	msgs := []protocol.Message{protocol.AnswerDelta{Delta: "Hel"}, protocol.AnswerDelta{Delta: "lo"}}
	if got := ResolveAnswer(msgs); got != "Hello" {
		t.Fatalf("ResolveAnswer(deltas) = %q, want Hello", got)
	}

	msgs = append(msgs, protocol.Answer{Answer: "Hi"})
	if got := ResolveAnswer(msgs); got != "Hi" {
		t.Fatalf("ResolveAnswer(final) = %q, want Hi", got)
	}

	msgs = append(msgs, protocol.AnswerDelta{Delta: " late"})
	if got := ResolveAnswer(msgs); got != "Hi" {
		t.Fatalf("ResolveAnswer(delta after final) = %q, want Hi", got)
	}

	v2 := []protocol.Message{protocol.StepAnswerDelta{Title: "A", Delta: "It "}, protocol.StepAnswerDelta{Title: "A", Delta: "rains"}}
	if got := ResolveAnswer(v2); got != "It rains" {
		t.Fatalf("ResolveAnswer(v2) = %q", got)
	}
	if got := ResolveAnswer(nil); got != "" {
		t.Fatalf("ResolveAnswer(nil) = %q", got)
	}
}

func TestDedupPages(t *testing.T) {
	pages := []protocol.Page{{URL: "a", Title: "first"}, {URL: "b"}, {URL: "a", Title: "second"}}
	got := DedupPages(pages, 0)
	if !reflect.DeepEqual(urls(got), []string{"a", "b"}) {
		t.Fatalf("DedupPages() = %v, want [a b]", urls(got))
	}
	if got[0].Title != "first" {
		t.Fatalf("first occurrence should win, got %+v", got[0])
	}
	if got := DedupPages(pages, 1); !reflect.DeepEqual(urls(got), []string{"a"}) {
		t.Fatalf("DedupPages(limit 1) = %v", urls(got))
	}
}

func TestFetchPreviews(t *testing.T) {
	var many []protocol.Page
	for _, u := range []string{"a", "b", "a", "c", "d", "e", "f"} {
		many = append(many, protocol.Page{URL: u})
	}
	msgs := []protocol.Message{
		protocol.FetchStart{Pages: []protocol.Page{{URL: "old"}}},
		protocol.FetchStart{Pages: many},
	}
	if got := FetchPreviews(msgs, 0); !reflect.DeepEqual(urls(got), []string{"a", "b", "c", "d"}) {
		t.Fatalf("FetchPreviews() = %v, want first four unique", urls(got))
	}

	msgs = append(msgs, protocol.FetchEnd{})
	if got := FetchPreviews(msgs, 2); !reflect.DeepEqual(urls(got), []string{"a", "b"}) {
		t.Fatalf("FetchPreviews() after empty fetch.end = %v", urls(got))
	}

	v2 := []protocol.Message{protocol.StepFetchEnd{Title: "Read", Pages: []protocol.Page{{URL: "x"}}}}
	if got := FetchPreviews(v2, 0); !reflect.DeepEqual(urls(got), []string{"x"}) {
		t.Fatalf("FetchPreviews(v2) = %v", urls(got))
	}
}

func TestReferencesAreUncapped(t *testing.T) {
	var cites []protocol.Page
	for _, u := range []string{"a", "b", "a", "c", "d", "e", "f"} {
		cites = append(cites, protocol.Page{URL: u})
	}
	msgs := []protocol.Message{protocol.Answer{Answer: "x", Citations: cites}}
	if got := References(msgs); !reflect.DeepEqual(urls(got), []string{"a", "b", "c", "d", "e", "f"}) {
		t.Fatalf("References() = %v", urls(got))
	}
	if got := References(nil); got != nil {
		t.Fatalf("References(nil) = %v", got)
	}
}

func TestCleanSnippet(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  plain\n text  ", 0, "plain text"},
		{"<p>Taipei <b>weather</b> &amp; forecast</p><script>x()</script>", 0, "Taipei weather & forecast"},
		{"abcdefghij", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := CleanSnippet(tt.in, tt.limit); got != tt.want {
			t.Errorf("CleanSnippet(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestHostAndLabel(t *testing.T) {
	if got := Host("https://www.cwa.gov.tw/V8/E/W/County/County.html"); got != "cwa.gov.tw" {
		t.Fatalf("Host() = %q", got)
	}
	if got := PageLabel(protocol.Page{URL: "https://example.com/x"}); got != "example.com" {
		t.Fatalf("PageLabel() = %q", got)
	}
	if got := PageLabel(protocol.Page{URL: "https://example.com/x", Title: "Example"}); got != "Example" {
		t.Fatalf("PageLabel() = %q", got)
	}
}

func TestTokenCount(t *testing.T) {
	if TokenCount("") != 0 {
		t.Fatal("TokenCount(\"\") != 0")
	}
	if n := TokenCount("It is sunny in Taipei today."); n < 5 || n > 12 {
		t.Fatalf("TokenCount() = %d, want a plausible token count", n)
	}
}

func weatherTurn() session.Turn {
	return session.Turn{
		Question: "what is today weather in taipai",
		Messages: []protocol.Message{
			protocol.TurnStart{ConversationID: "c1"},
			protocol.SearchStart{Query: "taipei weather"},
			protocol.SearchEnd{Query: "taipei weather", Results: 5},
			protocol.Answer{Answer: "It is sunny.", Citations: []protocol.Page{}},
		},
	}
}

func TestRenderTurn(t *testing.T) {
	out := RenderTurn(weatherTurn(), protocol.V1, Options{})
	for _, want := range []string{"what is today weather in taipai", "Search the web", "It is sunny."} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTurn() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "References") {
		t.Errorf("RenderTurn() shows references without citations:\n%s", out)
	}
}

func TestRenderTurnPreviewsUntilAnswer(t *testing.T) {
	turn := session.Turn{
		Question: "q",
		Messages: []protocol.Message{
			protocol.FetchStart{Pages: []protocol.Page{{URL: "https://a.example/1", Title: "Page A", Snippet: "<b>bold</b> snippet"}}},
		},
	}
	out := RenderTurn(turn, protocol.V1, Options{})
	if !strings.Contains(out, "Page A") || !strings.Contains(out, "bold snippet") {
		t.Fatalf("previews missing:\n%s", out)
	}

	turn.Messages = append(turn.Messages, protocol.Answer{Answer: "done", Citations: []protocol.Page{{URL: "https://a.example/1", Title: "Page A"}}})
	out = RenderTurn(turn, protocol.V1, Options{})
	if strings.Contains(out, "bold snippet") {
		t.Fatalf("previews shown after final answer:\n%s", out)
	}
	if !strings.Contains(out, "References") || !strings.Contains(out, "https://a.example/1") {
		t.Fatalf("references missing:\n%s", out)
	}
}

func TestStatusLine(t *testing.T) {
	if got := StatusLine(session.Snapshot{Status: session.StatusError, Err: "connection failed"}); !strings.Contains(got, "connection failed") {
		t.Fatalf("StatusLine(error) = %q", got)
	}
	if got := StatusLine(session.Snapshot{Status: session.StatusReady}); !strings.Contains(got, "ready") {
		t.Fatalf("StatusLine(ready) = %q", got)
	}
}

func TestSessionModelJSON(t *testing.T) {
	snap := session.Snapshot{
		Status:         session.StatusReady,
		ConversationID: "c1",
		Version:        protocol.V1,
		Turns:          []session.Turn{weatherTurn()},
	}
	data, err := json.Marshal(NewSessionModel(snap, Options{}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got SessionModel
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Status != "ready" || got.ConversationID != "c1" || len(got.Turns) != 1 {
		t.Fatalf("model = %+v", got)
	}
	turn := got.Turns[0]
	if turn.Answer != "It is sunny." || !turn.Final || turn.AnswerHTML != "<p>It is sunny.</p>\n" {
		t.Fatalf("turn = %+v", turn)
	}
	if len(turn.Steps) != 4 || turn.Steps[0].Status != StepComplete {
		t.Fatalf("steps = %+v", turn.Steps)
	}
}
