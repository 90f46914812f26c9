package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func collect(t *testing.T, cn Conn) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-cn.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for stream to finish; got %d events", len(events))
		}
	}
}

func sseHandler(t *testing.T, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, body)
	}
}

func TestClientEndpointQuery(t *testing.T) {
	c := NewClient("http://backend.local/api", WithChatPath("/chat"))
	got, err := c.Endpoint(Request{Question: "what is today weather in taipai", ConversationID: "c1"})
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	want := "http://backend.local/api/chat?conversation_id=c1&question=what+is+today+weather+in+taipai"
	if got != want {
		t.Fatalf("Endpoint() = %q, want %q", got, want)
	}

	got, err = c.Endpoint(Request{Question: "q"})
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	if strings.Contains(got, "conversation_id") {
		t.Fatalf("Endpoint() = %q, should omit empty conversation id", got)
	}
}

func TestClientOpenWithoutBaseURL(t *testing.T) {
	cn, err := NewClient("  ").Open(context.Background(), Request{Question: "q"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Open() error = %v, want ErrNotConfigured", err)
	}
	if cn != nil {
		t.Fatal("Open() returned a connection without configuration")
	}
}

func TestClientOpenRejectsRelativeURL(t *testing.T) {
	if _, err := NewClient("backend:8000").Open(context.Background(), Request{Question: "q"}); err == nil {
		t.Fatal("Open() should reject a URL without scheme and host")
	}
}

func TestClientStreamsMessagesThenEnd(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("question")
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		sseHandler(t, "data: {\"message\":{\"type\":\"turn.start\",\"conversation_id\":\"c1\"}}\n\n"+
			"data: {\"message\":{\"type\":\"rank.start\"}}\n\n"+
			"event: end\ndata: {\"message\":\"[DONE]\"}\n\n")(w, r)
	}))
	defer srv.Close()

	cn, err := NewClient(srv.URL).Open(context.Background(), Request{Question: "hi there"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cn.Close()

	events := collect(t, cn)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	kinds := []Kind{events[0].Kind, events[1].Kind, events[2].Kind}
	if kinds[0] != KindMessage || kinds[1] != KindMessage || kinds[2] != KindEnd {
		t.Fatalf("kinds = %v, want [message message end]", kinds)
	}
	if gotQuery != "hi there" {
		t.Fatalf("question param = %q", gotQuery)
	}
}

func TestClientErrorFrame(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "event: error\ndata: {\"error\":\"boom\"}\n\n"))
	defer srv.Close()

	cn, err := NewClient(srv.URL).Open(context.Background(), Request{Question: "q"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	events := collect(t, cn)
	if len(events) != 1 || events[0].Kind != KindError || string(events[0].Data) != `{"error":"boom"}` {
		t.Fatalf("events = %+v, want one error event with payload", events)
	}
}

func TestClientNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail":"question must not be empty"}`)
	}))
	defer srv.Close()

	cn, err := NewClient(srv.URL).Open(context.Background(), Request{Question: " "})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	events := collect(t, cn)
	if len(events) != 1 || events[0].Kind != KindError {
		t.Fatalf("events = %+v, want one error event", events)
	}
	if string(events[0].Data) != `{"detail":"question must not be empty"}` {
		t.Fatalf("error payload = %q", events[0].Data)
	}
}

func TestClientUnexpectedEOF(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, "data: {\"type\":\"rank.start\"}\n\n"))
	defer srv.Close()

	cn, err := NewClient(srv.URL).Open(context.Background(), Request{Question: "q"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	events := collect(t, cn)
	if len(events) != 2 || events[0].Kind != KindMessage || events[1].Kind != KindError {
		t.Fatalf("events = %+v, want message then error", events)
	}
	if len(events[1].Data) != 0 {
		t.Fatalf("transport error should carry no payload, got %q", events[1].Data)
	}
}

func TestClientCloseStopsDelivery(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"rank.start\"}\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	cn, err := NewClient(srv.URL).Open(context.Background(), Request{Question: "q"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	select {
	case ev := <-cn.Events():
		if ev.Kind != KindMessage {
			t.Fatalf("first event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first event")
	}

	cn.Close()
	cn.Close()

	if rest := collect(t, cn); len(rest) != 0 {
		t.Fatalf("events after Close = %+v, want none", rest)
	}
}

func TestReplayDialer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turn.sse")
	capture := "data: {\"type\":\"answer\",\"answer\":\"It is sunny.\"}\n\nevent: end\ndata: {\"message\":\"[DONE]\"}\n\n"
	if err := os.WriteFile(path, []byte(capture), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewReplayDialer(path)
	for i := 0; i < 2; i++ {
		cn, err := d.Open(context.Background(), Request{Question: "ignored"})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		events := collect(t, cn)
		if len(events) != 2 || events[0].Kind != KindMessage || events[1].Kind != KindEnd {
			t.Fatalf("replay %d events = %+v", i, events)
		}
	}

	if _, err := NewReplayDialer(filepath.Join(t.TempDir(), "missing.sse")).Open(context.Background(), Request{}); err == nil {
		t.Fatal("Open() should fail for a missing capture")
	}
}
