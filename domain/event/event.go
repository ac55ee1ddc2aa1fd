package event

import (
	"github.com/venturehub/community-chat/domain"
)

// DomainEvent is anything the hub can fan out to connected sessions.
type DomainEvent interface {
	Kind() string
}

// MessageBroadcast carries one enriched message to every live connection,
// the origin included.
type MessageBroadcast struct {
	Message domain.EnrichedMessage
}

func (MessageBroadcast) Kind() string {
	return "message.broadcast"
}
