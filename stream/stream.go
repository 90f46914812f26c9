// Package stream opens event streams against the research backend and turns
// their Server-Sent Events into an ordered sequence of typed events.
package stream

import (
	"context"
	"errors"
	"io"

	"github.com/linanwx/scout/logger"
)

// ErrNotConfigured is returned by Open when no backend URL is configured.
var ErrNotConfigured = errors.New("backend URL is not configured")

// Kind classifies an Event.
type Kind int

const (
	KindMessage Kind = iota // payload on the default channel
	KindEnd                 // successful end of stream
	KindError               // transport failure or error frame
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindEnd:
		return "end"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one discrete update from an open stream.
type Event struct {
	Kind Kind
	Data []byte // raw JSON payload; empty for transport errors without a body
}

// Request describes one question to stream.
type Request struct {
	Question       string
	ConversationID string
}

// Conn is an open stream. Events are delivered in transmission order and the
// channel is closed once the stream is finished. Close is idempotent and stops
// delivery.
type Conn interface {
	Events() <-chan Event
	Close()
}

// Dialer opens streams. Open must not block on the network: it validates the
// request, starts the stream in the background and returns. Failures after
// that point arrive as a KindError event.
type Dialer interface {
	Open(ctx context.Context, req Request) (Conn, error)
}

// conn is the Conn shared by the HTTP and replay dialers: a goroutine pumps
// frames into events until the source ends or the connection is closed.
type conn struct {
	events chan Event
	cancel context.CancelFunc
	ctx    context.Context
}

func newConn(parent context.Context) *conn {
	ctx, cancel := context.WithCancel(parent)
	return &conn{
		events: make(chan Event),
		cancel: cancel,
		ctx:    ctx,
	}
}

func (c *conn) Events() <-chan Event { return c.events }

func (c *conn) Close() { c.cancel() }

// emit delivers ev unless the connection has been closed.
func (c *conn) emit(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// pump reads frames from body until an end or error frame, EOF, or Close.
// It always finishes with exactly one terminal event unless closed first.
func (c *conn) pump(body io.Reader) {
	r := NewReader(body)
	for {
		f, err := r.Next()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				logger.Warn("stream closed without end frame")
			} else {
				logger.Warn("stream read failed", "err", err)
			}
			c.emit(Event{Kind: KindError})
			return
		}

		switch f.Event {
		case "message":
			if !c.emit(Event{Kind: KindMessage, Data: f.Data}) {
				return
			}
		case "end":
			c.emit(Event{Kind: KindEnd, Data: f.Data})
			return
		case "error":
			c.emit(Event{Kind: KindError, Data: f.Data})
			return
		default:
			logger.Debug("ignoring stream frame", "event", f.Event)
		}
	}
}
