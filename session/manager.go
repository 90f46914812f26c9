// Package session owns the transcript of one conversation with the research
// backend. A Manager turns each submitted question into exactly one stream,
// folds the stream's events into the open turn, and closes the stream exactly
// once however it ends.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/linanwx/scout/logger"
	"github.com/linanwx/scout/protocol"
	"github.com/linanwx/scout/stream"
)

// Status is the manager's connection state.
type Status string

const (
	StatusReady     Status = "ready"
	StatusStreaming Status = "streaming"
	StatusError     Status = "error"
)

// Messages recorded when a stream fails without a usable explanation.
const (
	MsgMalformedEvent   = "received a malformed stream event"
	MsgConnectionFailed = "connection failed"
)

// Turn is one question and every message streamed back for it, in arrival
// order.
type Turn struct {
	Question string
	TurnID   string // backend turn id, when the envelope carries one
	Messages []protocol.Message
}

// Snapshot is a read-only copy of the manager state.
type Snapshot struct {
	Status         Status
	Err            string
	ConversationID string
	Version        protocol.Version
	Turns          []Turn
}

// Streaming reports whether a stream is open.
func (s Snapshot) Streaming() bool { return s.Status == StatusStreaming }

// LastTurn returns the most recent turn, if any.
func (s Snapshot) LastTurn() (Turn, bool) {
	if len(s.Turns) == 0 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

// Option configures a Manager.
type Option func(*Manager)

// WithVersion selects the wire protocol version. The default is v1.
func WithVersion(v protocol.Version) Option {
	return func(m *Manager) {
		if v != "" {
			m.version = v
		}
	}
}

// WithObserver registers fn to receive a snapshot after every state change.
// Snapshots are delivered in order and never while the manager's lock is
// held, so fn may call back into the manager.
func WithObserver(fn func(Snapshot)) Option {
	return func(m *Manager) { m.observer = fn }
}

// WithContext sets the parent context for every stream.
func WithContext(ctx context.Context) Option {
	return func(m *Manager) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithLogFields adds fields to every record the manager logs.
func WithLogFields(args ...any) Option {
	return func(m *Manager) { m.log = logger.With(args...) }
}

// Manager is safe for concurrent use.
type Manager struct {
	dialer   stream.Dialer
	version  protocol.Version
	observer func(Snapshot)
	ctx      context.Context
	log      logger.Fields

	mu             sync.Mutex
	status         Status
	errMsg         string
	conversationID string
	turns          []Turn
	current        *link // open stream, nil when none
	last           *link // most recent stream, for Wait
	seq            int

	pending  []Snapshot
	flushing bool
}

// link ties one open stream to the manager. Events from a link that is no
// longer current are discarded.
type link struct {
	seq  int
	conn stream.Conn
	done chan struct{}
}

// New creates a Manager that opens streams through dialer.
func New(dialer stream.Dialer, opts ...Option) *Manager {
	m := &Manager{
		dialer:  dialer,
		version: protocol.DefaultVersion,
		ctx:     context.Background(),
		status:  StatusReady,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Version returns the protocol version used for every stream.
func (m *Manager) Version() protocol.Version { return m.version }

// SendMessage submits text as a new question. It returns false without
// changing anything when text is blank or a stream is already open. When the
// stream cannot be opened at all (missing backend configuration) no turn is
// added, the status becomes error and SendMessage returns false.
func (m *Manager) SendMessage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	m.mu.Lock()
	if m.current != nil {
		m.mu.Unlock()
		return false
	}

	req := stream.Request{Question: text, ConversationID: m.conversationID}
	conn, err := m.dialer.Open(m.ctx, req)
	if err != nil {
		m.log.Error("stream open failed", "err", err)
		m.status = StatusError
		m.errMsg = err.Error()
		m.enqueueLocked()
		m.mu.Unlock()
		m.flush()
		return false
	}

	m.seq++
	l := &link{seq: m.seq, conn: conn, done: make(chan struct{})}
	m.current, m.last = l, l
	m.turns = append(m.turns, Turn{Question: text, Messages: []protocol.Message{}})
	m.status = StatusStreaming
	m.errMsg = ""
	m.log.Info("stream opened", "turn", len(m.turns), "conversation", m.conversationID)
	m.enqueueLocked()
	m.mu.Unlock()

	go m.consume(l)
	m.flush()
	return true
}

// Cancel closes the open stream without recording an error. It does nothing
// when no stream is open.
func (m *Manager) Cancel() {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.closeLocked("cancelled")
	m.status = StatusReady
	m.errMsg = ""
	m.enqueueLocked()
	m.mu.Unlock()
	m.flush()
}

// Close tears the manager down. It is equivalent to Cancel.
func (m *Manager) Close() { m.Cancel() }

// Wait blocks until the consumer of the most recent stream, as of the call,
// has exited. A stream opened by an observer before Wait is called becomes
// the one waited on, so callers whose observer resubmits should poll
// Snapshot instead.
func (m *Manager) Wait() {
	m.mu.Lock()
	l := m.last
	m.mu.Unlock()
	if l != nil {
		<-l.done
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) consume(l *link) {
	defer close(l.done)
	for ev := range l.conn.Events() {
		if !m.apply(l, ev) {
			return
		}
	}
	// The event channel closed without a terminal event.
	m.apply(l, stream.Event{Kind: stream.KindError})
}

// apply reduces one event into the open turn. It reports whether the
// consumer should keep reading.
func (m *Manager) apply(l *link, ev stream.Event) bool {
	m.mu.Lock()
	if m.current != l {
		m.mu.Unlock()
		return false
	}

	keep := true
	switch ev.Kind {
	case stream.KindMessage:
		env, err := protocol.DecodeEnvelope(m.version, ev.Data)
		if err != nil {
			m.log.Error("stream event rejected", "err", err, "data", string(ev.Data))
			m.failLocked(MsgMalformedEvent)
			keep = false
			break
		}
		if ts, ok := env.Message.(protocol.TurnStart); ok && ts.ConversationID != "" {
			m.conversationID = ts.ConversationID
		}
		turn := &m.turns[len(m.turns)-1]
		if turn.TurnID == "" {
			turn.TurnID = env.TurnID
		}
		turn.Messages = append(turn.Messages, env.Message)

	case stream.KindEnd:
		m.closeLocked("end")
		m.status = StatusReady
		keep = false

	default:
		msg := protocol.DecodeError(ev.Data)
		if msg == "" {
			msg = MsgConnectionFailed
		}
		m.log.Warn("stream failed", "reason", msg)
		m.failLocked(msg)
		keep = false
	}

	m.enqueueLocked()
	m.mu.Unlock()
	m.flush()
	return keep
}

func (m *Manager) failLocked(msg string) {
	m.closeLocked("error")
	m.status = StatusError
	m.errMsg = msg
}

// closeLocked closes the current stream. Each stream is closed at most once
// because it stops being current here.
func (m *Manager) closeLocked(reason string) {
	l := m.current
	if l == nil {
		return
	}
	m.current = nil
	l.conn.Close()
	m.log.Debug("stream closed", "reason", reason, "seq", l.seq)
}

func (m *Manager) snapshotLocked() Snapshot {
	turns := make([]Turn, len(m.turns))
	for i, t := range m.turns {
		t.Messages = append([]protocol.Message(nil), t.Messages...)
		turns[i] = t
	}
	return Snapshot{
		Status:         m.status,
		Err:            m.errMsg,
		ConversationID: m.conversationID,
		Version:        m.version,
		Turns:          turns,
	}
}

func (m *Manager) enqueueLocked() {
	if m.observer == nil {
		return
	}
	m.pending = append(m.pending, m.snapshotLocked())
}

// flush delivers queued snapshots. Only one goroutine delivers at a time;
// snapshots queued meanwhile are picked up by that goroutine, preserving
// order.
func (m *Manager) flush() {
	if m.observer == nil {
		return
	}
	m.mu.Lock()
	if m.flushing {
		m.mu.Unlock()
		return
	}
	m.flushing = true
	for len(m.pending) > 0 {
		snap := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()
		m.observer(snap)
		m.mu.Lock()
	}
	m.flushing = false
	m.mu.Unlock()
}
