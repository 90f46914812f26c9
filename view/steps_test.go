package view

import (
	"testing"

	"github.com/linanwx/scout/protocol"
)

func statuses(steps []Step) map[string]StepStatus {
	out := make(map[string]StepStatus, len(steps))
	for _, s := range steps {
		out[s.Key] = s.Status
	}
	return out
}

func TestDeriveStepsV1(t *testing.T) {
	pages := []protocol.Page{{URL: "a"}, {URL: "b"}}
	tests := []struct {
		name string
		msgs []protocol.Message
		want map[string]StepStatus
	}{
		{
			name: "empty",
			want: map[string]StepStatus{StepSearch: StepPending, StepRank: StepPending, StepFetch: StepPending, StepAnswer: StepPending},
		},
		{
			name: "searching",
			msgs: []protocol.Message{protocol.TurnStart{ConversationID: "c1"}, protocol.SearchStart{Query: "q"}},
			want: map[string]StepStatus{StepSearch: StepActive, StepRank: StepPending, StepFetch: StepPending, StepAnswer: StepPending},
		},
		{
			name: "fetching",
			msgs: []protocol.Message{
				protocol.SearchStart{Query: "q"}, protocol.SearchEnd{Query: "q", Results: 5},
				protocol.RankStart{}, protocol.RankEnd{Pages: pages},
				protocol.FetchStart{Pages: pages},
			},
			want: map[string]StepStatus{StepSearch: StepComplete, StepRank: StepComplete, StepFetch: StepActive, StepAnswer: StepPending},
		},
		{
			name: "completion is sticky",
			msgs: []protocol.Message{
				protocol.SearchStart{Query: "q"}, protocol.SearchEnd{Query: "q"}, protocol.SearchStart{Query: "q2"},
			},
			want: map[string]StepStatus{StepSearch: StepComplete, StepRank: StepPending, StepFetch: StepPending, StepAnswer: StepPending},
		},
		{
			name: "answer completes active steps",
			msgs: []protocol.Message{
				protocol.SearchStart{Query: "q"}, protocol.FetchStart{Pages: pages},
				protocol.AnswerDelta{Delta: "x"}, protocol.Answer{Answer: "x"},
			},
			want: map[string]StepStatus{StepSearch: StepComplete, StepRank: StepPending, StepFetch: StepComplete, StepAnswer: StepComplete},
		},
		{
			name: "streaming answer",
			msgs: []protocol.Message{protocol.AnswerDelta{Delta: "Hel"}},
			want: map[string]StepStatus{StepSearch: StepPending, StepRank: StepPending, StepFetch: StepPending, StepAnswer: StepActive},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := DeriveSteps(protocol.V1, tt.msgs)
			if len(steps) != 4 {
				t.Fatalf("got %d steps, want 4", len(steps))
			}
			for i, key := range []string{StepSearch, StepRank, StepFetch, StepAnswer} {
				if steps[i].Key != key {
					t.Fatalf("step %d = %q, want %q", i, steps[i].Key, key)
				}
			}
			got := statuses(steps)
			for key, want := range tt.want {
				if got[key] != want {
					t.Errorf("%s = %s, want %s", key, got[key], want)
				}
			}
		})
	}
}

func TestDeriveStepsV1Descriptions(t *testing.T) {
	steps := DeriveSteps(protocol.V1, []protocol.Message{
		protocol.SearchStart{Query: "taipei weather"},
		protocol.SearchEnd{Query: "taipei weather", Results: 5},
		protocol.RankEnd{Pages: []protocol.Page{{URL: "a"}, {URL: "b"}, {URL: "a"}}},
	})
	if got := steps[0].Description; got != `5 results for "taipei weather"` {
		t.Fatalf("search description = %q", got)
	}
	if got := steps[1].Description; got != "2 pages selected" {
		t.Fatalf("rank description = %q", got)
	}
}

func TestDeriveStepsV2(t *testing.T) {
	msgs := []protocol.Message{
		protocol.TurnStart{ConversationID: "c1"},
		protocol.StepStart{Title: "Plan", Description: "thinking"},
		protocol.StepStatus{Title: "Plan", Description: "drafting queries"},
		protocol.StepEnd{Title: "Plan"},
		protocol.StepStart{Title: "Search"},
		protocol.StepFetchStart{Title: "Read", Pages: []protocol.Page{{URL: "a"}}},
		protocol.StepStart{Title: "Plan"},
		protocol.StepAnswerStart{Title: "Answer"},
		protocol.StepAnswerDelta{Title: "Answer", Delta: "It"},
	}
	steps := DeriveSteps(protocol.V2, msgs)

	wantOrder := []string{"Plan", "Search", "Read", "Answer"}
	if len(steps) != len(wantOrder) {
		t.Fatalf("got %d steps, want %d: %+v", len(steps), len(wantOrder), steps)
	}
	for i, title := range wantOrder {
		if steps[i].Title != title {
			t.Fatalf("step %d = %q, want %q", i, steps[i].Title, title)
		}
	}
	got := statuses(steps)
	want := map[string]StepStatus{"Plan": StepComplete, "Search": StepActive, "Read": StepActive, "Answer": StepActive}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %s, want %s", k, got[k], v)
		}
	}
	if steps[0].Description != "drafting queries" {
		t.Fatalf("Plan description = %q, want latest", steps[0].Description)
	}

	steps = DeriveSteps(protocol.V2, append(msgs, protocol.StepAnswerEnd{Title: "Answer"}, protocol.Answer{Answer: "It is sunny."}))
	for _, s := range steps {
		if s.Status != StepComplete {
			t.Fatalf("%s = %s after answer, want complete", s.Title, s.Status)
		}
	}
}

func TestDeriveStepsIgnoresOtherVersion(t *testing.T) {
	steps := DeriveSteps(protocol.V2, []protocol.Message{protocol.SearchStart{Query: "q"}})
	if len(steps) != 0 {
		t.Fatalf("v2 timeline from v1 messages = %+v", steps)
	}
}
