package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string) []Frame {
	t.Helper()
	r := NewReader(strings.NewReader(input))
	var frames []Frame
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return frames
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		frames = append(frames, f)
	}
}

func TestReaderDefaultAndNamedEvents(t *testing.T) {
	input := "data: {\"message\":{\"type\":\"rank.start\"}}\n\n" +
		"event: end\n" +
		"data: {\"message\": \"[DONE]\"}\n\n"

	frames := readAll(t, input)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Event != "message" {
		t.Fatalf("frames[0].Event = %q, want message", frames[0].Event)
	}
	if string(frames[0].Data) != `{"message":{"type":"rank.start"}}` {
		t.Fatalf("frames[0].Data = %q", frames[0].Data)
	}
	if frames[1].Event != "end" || string(frames[1].Data) != `{"message": "[DONE]"}` {
		t.Fatalf("frames[1] = %+v", frames[1])
	}
}

func TestReaderJoinsDataLinesAndSkipsComments(t *testing.T) {
	input := ": keepalive\r\n" +
		"retry: 3000\r\n" +
		"id: 7\r\n" +
		"data: first\r\n" +
		"data:second\r\n" +
		"\r\n"

	frames := readAll(t, input)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if got := string(frames[0].Data); got != "first\nsecond" {
		t.Fatalf("Data = %q, want %q", got, "first\nsecond")
	}
	if frames[0].ID != "7" {
		t.Fatalf("ID = %q, want 7", frames[0].ID)
	}
}

func TestReaderDropsFramesWithoutData(t *testing.T) {
	input := "event: ping\n\n" + "data: x\n\n"
	frames := readAll(t, input)
	if len(frames) != 1 || frames[0].Event != "message" || string(frames[0].Data) != "x" {
		t.Fatalf("frames = %+v, want one message frame", frames)
	}
}

func TestReaderDiscardsPartialFrameAtEOF(t *testing.T) {
	frames := readAll(t, "data: complete\n\ndata: partial")
	if len(frames) != 1 || string(frames[0].Data) != "complete" {
		t.Fatalf("frames = %+v, want only the complete frame", frames)
	}
}

func TestWriteFrameReadsBack(t *testing.T) {
	var buf bytes.Buffer
	in := []Frame{
		{Event: "message", Data: []byte(`{"a":1}`)},
		{Event: "end", Data: []byte(`{"message":"[DONE]"}`)},
		{Event: "message", Data: []byte("two\nlines")},
	}
	for _, f := range in {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}

	got := readAll(t, buf.String())
	if len(got) != len(in) {
		t.Fatalf("got %d frames, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i].Event != in[i].Event || !bytes.Equal(got[i].Data, in[i].Data) {
			t.Fatalf("frame %d = %+v, want %+v", i, got[i], in[i])
		}
	}
}
