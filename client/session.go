package client

import (
	"context"
	"log/slog"

	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/projection"
)

// Session reconciles the one-shot history fetch with the live feed. Both
// sources run concurrently from connection start, so a message persisted
// around the fetch can arrive through both paths; the timeline's id-keyed
// deduplication makes that harmless.
//
// Every view mutation happens inside Run's goroutine. That single
// serialized path is what lets the timeline stay lock-free.
type Session struct {
	log      *slog.Logger
	timeline *projection.Timeline
	history  HistoryFetcher
	feed     <-chan domain.EnrichedMessage

	// OnApply, when set, observes each entry as it lands in the view.
	OnApply func(projection.Entry)
}

// NewSession builds a session for the local participant identified by its
// internal user id.
func NewSession(log *slog.Logger, owner string, history HistoryFetcher,
	feed <-chan domain.EnrichedMessage) *Session {
	return &Session{
		log:      log,
		timeline: projection.NewTimeline(owner),
		history:  history,
		feed:     feed,
	}
}

// Run drives the session until the feed closes or the context is canceled.
// The history fetch runs concurrently with live consumption; a failed fetch
// is surfaced as a warning and the session stays usable on the live feed
// alone.
func (s *Session) Run(ctx context.Context) error {
	historyCh := make(chan []domain.EnrichedMessage, 1)
	go func() {
		messages, err := s.history.FetchHistory(ctx)
		if err != nil {
			s.log.Warn("history unavailable, view starts empty", "error", err)
		}
		historyCh <- messages
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case messages := <-historyCh:
			for _, msg := range messages {
				s.apply(msg)
			}
			historyCh = nil // one-shot; disable this case
		case msg, ok := <-s.feed:
			if !ok {
				s.log.Debug("live feed closed")
				return nil
			}
			s.apply(msg)
		}
	}
}

func (s *Session) apply(msg domain.EnrichedMessage) {
	if !s.timeline.Apply(msg) {
		s.log.Debug("duplicate discarded", "message_id", msg.ID)
		return
	}
	if s.OnApply != nil {
		s.OnApply(projection.Entry{
			EnrichedMessage: msg,
			IsSender:        msg.SenderID == s.timeline.Owner,
		})
	}
}

// Entries returns the reconciled view, oldest first. Call only after Run
// has returned, or from OnApply; the timeline is not concurrency-safe.
func (s *Session) Entries() []projection.Entry {
	return s.timeline.Entries()
}
