//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=../mocks/mock_resolver.go -package=mocks

// Package identity maps external auth identities to internal user records.
// Resolution is a pure lookup against the user directory: it never creates
// users and has no side effects.
package identity

import (
	"log/slog"

	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/repositories"
)

type IResolver interface {
	Resolve(externalID string) (domain.UserView, error)
	Enrich(msg domain.Message) (domain.EnrichedMessage, error)
}

type Resolver struct {
	users repositories.IUserRepository
	log   *slog.Logger
}

func NewResolver(users repositories.IUserRepository, log *slog.Logger) *Resolver {
	return &Resolver{users: users, log: log}
}

// Resolve maps an external identity to the sender display view.
// Returns errors.ErrUnknownSender when the directory has no such entry.
func (r *Resolver) Resolve(externalID string) (domain.UserView, error) {
	user, err := r.users.GetUserByExternalID(externalID)
	if err != nil {
		return domain.UserView{}, err
	}
	return toView(user), nil
}

// Enrich joins a persisted message with its sender view, looked up by the
// internal id the message carries. Used by the history read; the ingest
// path composes with the view it already resolved instead.
func (r *Resolver) Enrich(msg domain.Message) (domain.EnrichedMessage, error) {
	user, err := r.users.GetUserByID(msg.SenderID)
	if err != nil {
		return domain.EnrichedMessage{}, err
	}
	return domain.Enrich(msg, toView(user)), nil
}

func toView(user repositories.User) domain.UserView {
	return domain.UserView{
		ID:     user.ID,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
}
