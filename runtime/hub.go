// Package runtime owns the broadcast side of the chat core: the connection
// registry, the hub that accepts published messages, and the fan-out path
// that delivers them. It contains no business rules.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/venturehub/community-chat/contract"
	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/domain/event"
	"github.com/venturehub/community-chat/runtime/workers"
)

// Hub is the process-scoped coordination point. Publish pushes onto a FIFO
// channel consumed by a single fan-out worker, so messages reach every
// registered connection in publish order.
type Hub struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewHub(log *slog.Logger, registry contract.IRegistry, bufferSize int, sinkTimeout time.Duration) *Hub {
	return &Hub{
		log:         log,
		registry:    registry,
		events:      make(chan event.DomainEvent, bufferSize),
		sinkTimeout: sinkTimeout,
	}
}

// Register adds a connection to the live set. Idempotent.
func (h *Hub) Register(connID string, sink contract.EventSink) {
	h.registry.Subscribe(connID, sink)
	h.log.Debug("connection registered", "connection_id", connID, "live", h.registry.Len())
}

// Unregister removes a connection. No-op if absent.
func (h *Hub) Unregister(connID string) {
	h.registry.Unsubscribe(connID)
	h.log.Debug("connection unregistered", "connection_id", connID, "live", h.registry.Len())
}

// Publish enqueues the message for delivery to every currently registered
// connection, the origin included. Blocks only when the queue is full, and
// then gives up on context expiry rather than hanging the caller.
func (h *Hub) Publish(ctx context.Context, msg domain.EnrichedMessage) error {
	select {
	case h.events <- event.MessageBroadcast{Message: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Worker returns the fan-out worker draining the publish queue. Run exactly
// one instance; a second would break the ordering guarantee.
func (h *Hub) Worker() contract.Worker {
	return workers.NewFanoutWorker(h.log, h.registry, h.events, h.sinkTimeout)
}
