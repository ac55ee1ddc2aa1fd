package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/venturehub/community-chat/contract"
	"github.com/venturehub/community-chat/domain/event"
)

// FanoutWorker broadcasts published events to every registered connection.
//
// It provides best-effort fan-out: delivery to one connection failing (a
// full buffer, a race with disconnection) is logged and skipped, never
// retried, and never blocks delivery to the others. A client that missed a
// message catches up through its history fetch on reconnect.
//
// A single FanoutWorker instance drains the queue, so connections observe
// messages in publish order.
type FanoutWorker struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      <-chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewFanoutWorker(log *slog.Logger, registry contract.IRegistry,
	events <-chan event.DomainEvent, sinkTimeout time.Duration) FanoutWorker {
	return FanoutWorker{log: log, registry: registry, events: events, sinkTimeout: sinkTimeout}
}

func (w FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to the current registry snapshot. Failures are
// isolated per connection.
func (w FanoutWorker) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sub := range w.registry.Snapshot() {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sub.Sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("delivery dropped for connection",
				"connection_id", sub.ID,
				"error", err)
		}
		cancel()
	}
}
