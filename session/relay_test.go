package session

import "testing"

func TestRelayKeepsLatest(t *testing.T) {
	r := NewRelay()
	if _, ok := r.Take(); ok {
		t.Fatal("Take() on empty relay = true")
	}

	r.Publish(Snapshot{Status: StatusStreaming})
	r.Publish(Snapshot{Status: StatusReady})

	select {
	case <-r.Ready():
	default:
		t.Fatal("Ready() not signalled")
	}
	s, ok := r.Take()
	if !ok || s.Status != StatusReady {
		t.Fatalf("Take() = %+v, %v; want latest ready snapshot", s, ok)
	}
	if _, ok := r.Take(); ok {
		t.Fatal("snapshot taken twice")
	}
}
