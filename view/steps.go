// Package view derives everything the frontends display from a turn's
// message list. Every function here is pure.
package view

import (
	"fmt"

	"github.com/linanwx/scout/protocol"
)

// StepStatus is the progress of one workflow step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepActive   StepStatus = "active"
	StepComplete StepStatus = "complete"
)

// Step is one phase of the backend's workflow.
type Step struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      StepStatus `json:"status"`
}

// Fixed v1 step keys, in display order.
const (
	StepSearch = "search"
	StepRank   = "rank"
	StepFetch  = "fetch"
	StepAnswer = "answer"
)

var v1Steps = []Step{
	{Key: StepSearch, Title: "Search the web"},
	{Key: StepRank, Title: "Rank results"},
	{Key: StepFetch, Title: "Read pages"},
	{Key: StepAnswer, Title: "Write answer"},
}

// DeriveSteps computes the step timeline for msgs. A step becomes complete
// as soon as any completion event for it is seen and never goes back to
// active. The final answer completes every step that is still active.
func DeriveSteps(v protocol.Version, msgs []protocol.Message) []Step {
	if v == protocol.V2 {
		return deriveV2(msgs)
	}
	return deriveV1(msgs)
}

type timeline struct {
	steps []Step
	index map[string]int
}

func (tl *timeline) step(key string) *Step {
	i, ok := tl.index[key]
	if !ok {
		tl.index[key] = len(tl.steps)
		tl.steps = append(tl.steps, Step{Key: key, Title: key, Status: StepPending})
		i = len(tl.steps) - 1
	}
	return &tl.steps[i]
}

func (tl *timeline) activate(key, desc string) {
	s := tl.step(key)
	if s.Status != StepComplete {
		s.Status = StepActive
	}
	if desc != "" {
		s.Description = desc
	}
}

func (tl *timeline) complete(key, desc string) {
	s := tl.step(key)
	s.Status = StepComplete
	if desc != "" {
		s.Description = desc
	}
}

func (tl *timeline) finish() {
	for i := range tl.steps {
		if tl.steps[i].Status == StepActive {
			tl.steps[i].Status = StepComplete
		}
	}
}

func deriveV1(msgs []protocol.Message) []Step {
	tl := &timeline{index: make(map[string]int)}
	for _, s := range v1Steps {
		st := s
		st.Status = StepPending
		tl.index[st.Key] = len(tl.steps)
		tl.steps = append(tl.steps, st)
	}

	for _, msg := range msgs {
		switch m := msg.(type) {
		case protocol.SearchStart:
			tl.activate(StepSearch, fmt.Sprintf("Searching for %q", m.Query))
		case protocol.SearchEnd:
			tl.complete(StepSearch, fmt.Sprintf("%s for %q", plural(m.Results, "result"), m.Query))
		case protocol.RankStart:
			tl.activate(StepRank, "")
		case protocol.RankEnd:
			tl.complete(StepRank, plural(len(DedupPages(m.Pages, 0)), "page")+" selected")
		case protocol.FetchStart:
			tl.activate(StepFetch, "Reading "+plural(len(DedupPages(m.Pages, 0)), "page"))
		case protocol.FetchEnd:
			desc := ""
			if len(m.Pages) > 0 {
				desc = plural(len(DedupPages(m.Pages, 0)), "page") + " read"
			}
			tl.complete(StepFetch, desc)
		case protocol.AnswerDelta:
			tl.activate(StepAnswer, "")
		case protocol.Answer:
			tl.complete(StepAnswer, "")
			tl.finish()
		}
	}
	return tl.steps
}

func deriveV2(msgs []protocol.Message) []Step {
	tl := &timeline{index: make(map[string]int)}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case protocol.StepStart:
			tl.activate(m.Title, m.Description)
		case protocol.StepStatus:
			tl.activate(m.Title, m.Description)
		case protocol.StepEnd:
			tl.complete(m.Title, m.Description)
		case protocol.StepFetchStart:
			tl.activate(m.Title, "Reading "+plural(len(DedupPages(m.Pages, 0)), "page"))
		case protocol.StepFetchEnd:
			tl.complete(m.Title, plural(len(DedupPages(m.Pages, 0)), "page")+" read")
		case protocol.StepAnswerStart:
			tl.activate(m.Title, m.Description)
		case protocol.StepAnswerDelta:
			tl.activate(m.Title, "")
		case protocol.StepAnswerEnd:
			tl.complete(m.Title, "")
		case protocol.Answer:
			tl.finish()
		}
	}
	return tl.steps
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
