package ws

import (
	"context"

	"github.com/venturehub/community-chat/domain/event"
	"github.com/venturehub/community-chat/errors"
)

// ConnSink buffers broadcast events for one connection. Consume never
// blocks the fan-out loop: a full buffer drops the event for this
// connection only, and the owner backfills via a history fetch on
// reconnect.
type ConnSink struct {
	Events chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Events: make(chan event.DomainEvent, bufferSize)}
}

func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrDeliveryDropped
	}
}
