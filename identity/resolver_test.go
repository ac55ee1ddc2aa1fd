package identity

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/errors"
	"github.com/venturehub/community-chat/repositories"
)

func newResolver(t *testing.T) (*Resolver, repositories.IUserRepository) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	return NewResolver(users, slog.Default()), users
}

func TestResolver_Resolve(t *testing.T) {
	req := require.New(t)
	resolver, users := newResolver(t)

	id, err := users.CreateUser("ext-bob", "Bob", "bob.png")
	req.NoError(err)

	view, err := resolver.Resolve("ext-bob")
	req.NoError(err)
	req.Equal(domain.UserView{ID: id, Name: "Bob", Avatar: "bob.png"}, view)

	// Pure lookup: resolving twice yields the same view, creates nothing.
	again, err := resolver.Resolve("ext-bob")
	req.NoError(err)
	req.Equal(view, again)
}

func TestResolver_Resolve_Unknown(t *testing.T) {
	req := require.New(t)
	resolver, _ := newResolver(t)

	_, err := resolver.Resolve("ghost-id")
	req.ErrorIs(err, errors.ErrUnknownSender)
}

func TestResolver_Enrich(t *testing.T) {
	req := require.New(t)
	resolver, users := newResolver(t)

	id, err := users.CreateUser("ext-bob", "Bob", "bob.png")
	req.NoError(err)

	msg := domain.Message{
		ID:        uuid.New(),
		SenderID:  id,
		Body:      "hello",
		CreatedAt: time.Now().UTC(),
	}

	enriched, err := resolver.Enrich(msg)
	req.NoError(err)
	req.Equal(msg.ID, enriched.ID)
	req.Equal(msg.Body, enriched.Body)
	req.Equal("Bob", enriched.Sender.Name)

	_, err = resolver.Enrich(domain.Message{ID: uuid.New(), SenderID: "unknown"})
	req.ErrorIs(err, errors.ErrUnknownSender)
}
