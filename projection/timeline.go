// Package projection builds local timelines from observed messages.
// Handles ordering, deduplication, and the isSender tagging the UI needs.
// Does not emit events or talk to any transport.
package projection

import (
	"github.com/google/uuid"

	"github.com/venturehub/community-chat/domain"
)

// Entry is one row of the view: the delivered message plus whether the
// local participant sent it.
type Entry struct {
	domain.EnrichedMessage
	IsSender bool
}

// Timeline holds the reconciled local view. A message can arrive through
// both the history fetch and the live feed; the message id is the
// deduplication key, and entries stay non-decreasing in CreatedAt.
//
// Timeline is not safe for concurrent use. The session applies every
// mutation from a single goroutine, which removes any need for locking.
type Timeline struct {
	Owner   string // internal user id of the local participant
	entries []Entry
	seen    map[uuid.UUID]struct{}
}

func NewTimeline(owner string) *Timeline {
	return &Timeline{
		Owner: owner,
		seen:  make(map[uuid.UUID]struct{}),
	}
}

// Apply inserts a message into the view unless its id was already observed.
// Reports whether the view changed.
func (t *Timeline) Apply(msg domain.EnrichedMessage) bool {
	if _, ok := t.seen[msg.ID]; ok {
		return false
	}
	t.seen[msg.ID] = struct{}{}

	entry := Entry{
		EnrichedMessage: msg,
		IsSender:        msg.SenderID == t.Owner,
	}

	// Live messages normally land at the tail; walk back only when a late
	// history message has to slot in before newer live ones.
	i := len(t.entries)
	for i > 0 && t.entries[i-1].CreatedAt.After(msg.CreatedAt) {
		i--
	}
	t.entries = append(t.entries, Entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = entry
	return true
}

// Entries returns a copy of the current view, oldest first.
func (t *Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Len() int {
	return len(t.entries)
}
