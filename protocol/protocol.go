// Package protocol defines the messages a research backend pushes over its
// event stream, and the strict decoder that turns raw frames into them.
//
// Two wire revisions exist. V1 names each pipeline phase directly
// (search.*, rank.*, fetch.*, answer-delta, answer). V2 reports generic
// titled steps (step.*) followed by the same final answer. A client picks one
// version up front and decodes every frame of every stream with it; a frame
// from the other revision is rejected like any unknown message.
package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Version selects the wire revision used to decode a stream.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"

	DefaultVersion = V1
)

// ErrMalformed marks a frame that is not valid JSON or does not match a known
// message shape for the active version.
var ErrMalformed = errors.New("malformed stream message")

// DoneMarker is the payload of the end-of-stream frame.
const DoneMarker = "[DONE]"

// ParseVersion accepts "v1", "v2" (case-insensitive) or an empty string,
// which selects DefaultVersion.
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultVersion, nil
	case string(V1), "1":
		return V1, nil
	case string(V2), "2":
		return V2, nil
	default:
		return "", fmt.Errorf("unknown protocol version %q (want v1 or v2)", s)
	}
}

// Page is a citation candidate. URL is its identity.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Favicon string `json:"favicon,omitempty"`
}

// Message is one decoded stream message. The set of implementations is closed;
// callers switch on the concrete type.
type Message interface {
	Type() string
	isMessage()
}
