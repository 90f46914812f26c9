package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Frame is one Server-Sent Event.
type Frame struct {
	Event string // "message" when the server sent no event field
	ID    string
	Data  []byte
}

// Reader parses Server-Sent Events from a byte stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next dispatched frame. Multiple data lines are joined with
// "\n". Comments and retry fields are skipped; frames without data are not
// dispatched. It returns io.EOF once the stream ends; a partially received
// frame at EOF is discarded.
func (s *Reader) Next() (Frame, error) {
	var (
		event   string
		id      string
		data    [][]byte
		hasData bool
	)

	for {
		line, err := s.r.ReadBytes('\n')
		if err != nil && (err != io.EOF || len(line) == 0) {
			return Frame{}, err
		}
		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 {
			if !hasData {
				event = ""
				continue
			}
			if event == "" {
				event = "message"
			}
			return Frame{Event: event, ID: id, Data: bytes.Join(data, []byte("\n"))}, nil
		}

		if line[0] == ':' {
			continue
		}

		name, value := line, []byte(nil)
		if i := bytes.IndexByte(line, ':'); i >= 0 {
			name, value = line[:i], line[i+1:]
			value = bytes.TrimPrefix(value, []byte(" "))
		}

		switch string(name) {
		case "event":
			event = string(value)
		case "data":
			data = append(data, append([]byte(nil), value...))
			hasData = true
		case "id":
			id = string(value)
		}

		if err == io.EOF {
			return Frame{}, io.EOF
		}
	}
}

// WriteFrame writes f in wire format, one data line per line of f.Data.
func WriteFrame(w io.Writer, f Frame) error {
	var b strings.Builder
	if f.Event != "" && f.Event != "message" {
		fmt.Fprintf(&b, "event: %s\n", f.Event)
	}
	if f.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", f.ID)
	}
	for _, line := range strings.Split(string(f.Data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
