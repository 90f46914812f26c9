package session

import "sync"

// Relay hands snapshots from a Manager observer to a consumer that may fall
// behind. Only the latest unread snapshot is kept.
type Relay struct {
	mu     sync.Mutex
	latest Snapshot
	fresh  bool
	ready  chan struct{}
}

// NewRelay creates an empty Relay.
func NewRelay() *Relay {
	return &Relay{ready: make(chan struct{}, 1)}
}

// Publish stores s and wakes the consumer. Use it as a Manager observer.
func (r *Relay) Publish(s Snapshot) {
	r.mu.Lock()
	r.latest = s
	r.fresh = true
	r.mu.Unlock()

	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after Publish.
func (r *Relay) Ready() <-chan struct{} { return r.ready }

// Take returns the latest unread snapshot.
func (r *Relay) Take() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.fresh {
		return Snapshot{}, false
	}
	r.fresh = false
	return r.latest, true
}
