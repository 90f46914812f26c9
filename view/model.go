package view

import (
	"github.com/linanwx/scout/markdown"
	"github.com/linanwx/scout/protocol"
	"github.com/linanwx/scout/session"
)

// PageModel is a page as shown in the browser.
type PageModel struct {
	URL     string `json:"url"`
	Label   string `json:"label"`
	Host    string `json:"host"`
	Snippet string `json:"snippet,omitempty"`
	Favicon string `json:"favicon,omitempty"`
}

// TurnModel is the JSON projection of one turn.
type TurnModel struct {
	Question   string           `json:"question"`
	TurnID     string           `json:"turnId,omitempty"`
	Steps      []Step           `json:"steps"`
	Previews   []PageModel      `json:"previews,omitempty"`
	Answer     string           `json:"answer"`
	AnswerHTML string           `json:"answerHtml,omitempty"`
	Blocks     []markdown.Block `json:"blocks,omitempty"`
	References []PageModel      `json:"references,omitempty"`
	Tokens     int              `json:"tokens"`
	Final      bool             `json:"final"`
}

// SessionModel is the JSON projection of a snapshot.
type SessionModel struct {
	Status         string      `json:"status"`
	Error          string      `json:"error,omitempty"`
	ConversationID string      `json:"conversationId,omitempty"`
	Version        string      `json:"version"`
	Turns          []TurnModel `json:"turns"`
}

// NewTurnModel projects t.
func NewTurnModel(t session.Turn, v protocol.Version, opts Options) TurnModel {
	_, final := FinalAnswer(t.Messages)
	answer := ResolveAnswer(t.Messages)
	blocks := markdown.Parse(answer)

	m := TurnModel{
		Question:   QuestionHeader(t),
		TurnID:     t.TurnID,
		Steps:      DeriveSteps(v, t.Messages),
		Answer:     answer,
		AnswerHTML: markdown.HTML(blocks),
		Blocks:     blocks,
		References: pageModels(References(t.Messages)),
		Tokens:     TokenCount(answer),
		Final:      final,
	}
	if !final {
		m.Previews = pageModels(FetchPreviews(t.Messages, opts.PreviewLimit))
	}
	return m
}

// NewSessionModel projects s.
func NewSessionModel(s session.Snapshot, opts Options) SessionModel {
	m := SessionModel{
		Status:         string(s.Status),
		Error:          s.Err,
		ConversationID: s.ConversationID,
		Version:        string(s.Version),
		Turns:          make([]TurnModel, len(s.Turns)),
	}
	for i, t := range s.Turns {
		m.Turns[i] = NewTurnModel(t, s.Version, opts)
	}
	return m
}

func pageModels(pages []protocol.Page) []PageModel {
	if len(pages) == 0 {
		return nil
	}
	out := make([]PageModel, len(pages))
	for i, p := range pages {
		out[i] = PageModel{
			URL:     p.URL,
			Label:   PageLabel(p),
			Host:    Host(p.URL),
			Snippet: CleanSnippet(p.Snippet, snippetWidth),
			Favicon: p.Favicon,
		}
	}
	return out
}
