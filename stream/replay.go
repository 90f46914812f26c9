package stream

import (
	"context"
	"fmt"
	"os"
)

// ReplayDialer serves a recorded SSE capture instead of contacting a backend.
// Every Open replays the same file from the start; the request is ignored.
type ReplayDialer struct {
	path string
}

// NewReplayDialer returns a dialer for the capture at path.
func NewReplayDialer(path string) *ReplayDialer {
	return &ReplayDialer{path: path}
}

func (d *ReplayDialer) Open(ctx context.Context, _ Request) (Conn, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}

	cn := newConn(ctx)
	go func() {
		defer close(cn.events)
		defer f.Close()
		cn.pump(f)
	}()
	return cn, nil
}
