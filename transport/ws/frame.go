package ws

import (
	"github.com/venturehub/community-chat/domain"
)

// InboundFrame is a submission sent by a client on its live connection.
type InboundFrame struct {
	SenderID string `json:"senderId"`
	Body     string `json:"body"`
}

// OutboundFrame is what the server pushes: either a broadcast message or a
// submission failure addressed to this connection only.
type OutboundFrame struct {
	Type    string                  `json:"type"` // "message" or "error"
	Message *domain.EnrichedMessage `json:"message,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

const (
	frameTypeMessage = "message"
	frameTypeError   = "error"
)

func messageFrame(msg domain.EnrichedMessage) OutboundFrame {
	return OutboundFrame{Type: frameTypeMessage, Message: &msg}
}

func errorFrame(err error) OutboundFrame {
	return OutboundFrame{Type: frameTypeError, Error: err.Error()}
}
