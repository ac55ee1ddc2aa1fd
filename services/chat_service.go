//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/venturehub/community-chat/contract"
	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/identity"
	"github.com/venturehub/community-chat/moderation"
	"github.com/venturehub/community-chat/repositories"
)

var validate = validator.New()

// SubmitRequest is the submission shape coming off a live connection.
type SubmitRequest struct {
	SenderID string `validate:"required"` // external identity
	Body     string `validate:"required"`
}

type IChatService interface {
	Submit(ctx context.Context, req SubmitRequest) (domain.EnrichedMessage, error)
	History(ctx context.Context) ([]domain.EnrichedMessage, error)
}

// ChatService is the ingest pipeline: resolve, persist, enrich, publish.
// Strictly persist-then-publish; a broadcast never happens without a prior
// successful append.
type ChatService struct {
	log           *slog.Logger
	resolver      identity.IResolver
	messages      repositories.IMessageRepository
	publisher     contract.IPublisher
	moderator     *moderation.Moderator // nil disables moderation
	submitTimeout time.Duration
}

func NewChatService(log *slog.Logger, resolver identity.IResolver,
	messages repositories.IMessageRepository, publisher contract.IPublisher,
	moderator *moderation.Moderator, submitTimeout time.Duration) *ChatService {
	return &ChatService{
		log:           log,
		resolver:      resolver,
		messages:      messages,
		publisher:     publisher,
		moderator:     moderator,
		submitTimeout: submitTimeout,
	}
}

// Submit runs one submission through the pipeline. On any failure no
// message is persisted and nothing is broadcast; the error goes back to the
// submitting connection only. Exactly one durable write and one fan-out per
// success.
func (s *ChatService) Submit(ctx context.Context, req SubmitRequest) (domain.EnrichedMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	if err := validate.Struct(req); err != nil {
		return domain.EnrichedMessage{}, err
	}

	// Unknown sender aborts before any write.
	sender, err := s.resolver.Resolve(req.SenderID)
	if err != nil {
		return domain.EnrichedMessage{}, err
	}

	body := req.Body
	if s.moderator != nil {
		body = s.moderator.Censor(body)
	}

	msg, err := s.messages.Append(sender.ID, body)
	if err != nil {
		return domain.EnrichedMessage{}, err
	}

	// The view from step one is reused; no second directory lookup.
	enriched := domain.Enrich(msg, sender)

	if err := s.publisher.Publish(ctx, enriched); err != nil {
		// The message is durable but was not broadcast. Clients recover it
		// through their next history fetch; there is no redelivery.
		s.log.Error("persisted message not broadcast",
			"message_id", msg.ID,
			"error", err)
		return domain.EnrichedMessage{}, fmt.Errorf("broadcast failed: %w", err)
	}
	return enriched, nil
}

// History returns every message, oldest first, enriched with the current
// directory state. A sender missing from the directory keeps its message in
// the feed with an empty display view rather than failing the whole read.
func (s *ChatService) History(ctx context.Context) ([]domain.EnrichedMessage, error) {
	messages, err := s.messages.ListAll()
	if err != nil {
		return nil, err
	}

	return lo.Map(messages, func(msg domain.Message, _ int) domain.EnrichedMessage {
		enriched, err := s.resolver.Enrich(msg)
		if err != nil {
			s.log.Warn("sender no longer resolvable", "message_id", msg.ID, "sender_id", msg.SenderID)
			return domain.Enrich(msg, domain.UserView{})
		}
		return enriched
	}), nil
}
