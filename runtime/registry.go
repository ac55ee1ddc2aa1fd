package runtime

import (
	"sync"

	"github.com/venturehub/community-chat/contract"
)

// Registry is the live connection set, the one piece of shared mutable
// state on the server. All access goes through the mutex; Publish never
// iterates the map directly, it works from a Snapshot.
type Registry struct {
	mu       sync.RWMutex
	Sessions map[string]contract.EventSink // connection id -> sink
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions: make(map[string]contract.EventSink),
	}
}

// Subscribe registers a connection's sink. Subscribing an already present
// connection id replaces its sink, so the call is idempotent and no two
// entries ever share a handle.
func (r *Registry) Subscribe(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[connID] = sink
}

// Unsubscribe removes a connection. No-op if the id is absent.
func (r *Registry) Unsubscribe(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Sessions, connID)
}

// Snapshot returns the current subscriptions. A connection registering
// concurrently with a publish may or may not appear in the snapshot; it
// backfills through its own history fetch.
func (r *Registry) Snapshot() []contract.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]contract.Subscription, 0, len(r.Sessions))
	for id, sink := range r.Sessions {
		subs = append(subs, contract.Subscription{ID: id, Sink: sink})
	}
	return subs
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Sessions)
}
