package view

import (
	"strings"

	"github.com/linanwx/scout/protocol"
)

// ResolveAnswer returns the text to display for a turn. Once a final answer
// has arrived it wins; until then the streamed deltas are joined in arrival
// order.
func ResolveAnswer(msgs []protocol.Message) string {
	if a, ok := FinalAnswer(msgs); ok {
		return a.Answer
	}
	var b strings.Builder
	for _, msg := range msgs {
		switch m := msg.(type) {
		case protocol.AnswerDelta:
			b.WriteString(m.Delta)
		case protocol.StepAnswerDelta:
			b.WriteString(m.Delta)
		}
	}
	return b.String()
}

// FinalAnswer returns the last answer message, if any.
func FinalAnswer(msgs []protocol.Message) (protocol.Answer, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if a, ok := msgs[i].(protocol.Answer); ok {
			return a, true
		}
	}
	return protocol.Answer{}, false
}
