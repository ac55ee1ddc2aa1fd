// Package domain contains core concepts of the chat system.
// This file defines Message and its projections.
// Messages are immutable once persisted and are never edited or deleted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. The store assigns ID and
// CreatedAt at persist time; CreatedAt is the canonical ordering key.
type Message struct {
	ID        uuid.UUID
	SenderID  string // internal user identifier
	Body      string
	CreatedAt time.Time
}

// UserView is the denormalized sender display projection.
type UserView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// EnrichedMessage joins a Message with its sender view. It is rebuilt on
// every read or broadcast and never persisted, so directory changes show up
// in future enrichments only.
type EnrichedMessage struct {
	ID        uuid.UUID `json:"id"`
	SenderID  string    `json:"senderId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Sender    UserView  `json:"sender"`
}

// Enrich composes a persisted message with an already resolved sender view.
func Enrich(msg Message, sender UserView) EnrichedMessage {
	return EnrichedMessage{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
		Sender:    sender,
	}
}
