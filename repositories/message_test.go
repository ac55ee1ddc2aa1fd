package repositories

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/venturehub/community-chat/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Append_Then_ListAll(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), 4000)

	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		msg, err := repository.Append("sender-1", body)
		req.NoError(err)
		req.NotEqual(uuid.Nil, msg.ID)
		req.False(msg.CreatedAt.IsZero())
		time.Sleep(time.Millisecond)
	}

	fetched, err := repository.ListAll()
	req.NoError(err)
	req.Len(fetched, len(bodies))

	// Oldest first, ids unique.
	seen := make(map[uuid.UUID]struct{})
	for i, msg := range fetched {
		req.Equal(bodies[i], msg.Body)
		req.Equal("sender-1", msg.SenderID)
		req.NotContains(seen, msg.ID)
		seen[msg.ID] = struct{}{}
		if i > 0 {
			req.False(msg.CreatedAt.Before(fetched[i-1].CreatedAt))
		}
	}
}

func Test_ListAll_Empty_Store(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), 4000)

	fetched, err := repository.ListAll()
	req.NoError(err)
	req.Empty(fetched)
}

func Test_Append_Rejects_Empty_Body(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), 4000)

	_, err := repository.Append("sender-1", "")
	req.ErrorIs(err, errors.ErrEmptyBody)

	_, err = repository.Append("sender-1", "   ")
	req.ErrorIs(err, errors.ErrEmptyBody)

	fetched, err := repository.ListAll()
	req.NoError(err)
	req.Empty(fetched)
}

func Test_Append_Rejects_Over_Length_Body(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), 10)

	_, err := repository.Append("sender-1", strings.Repeat("x", 11))
	req.ErrorIs(err, errors.ErrBodyTooLong)

	// Length counts code points, not bytes.
	_, err = repository.Append("sender-1", strings.Repeat("é", 10))
	req.NoError(err)
}

func Test_Append_Concurrent_Writers(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), 4000)

	const writers = 8
	done := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			_, err := repository.Append("sender-1", "concurrent append")
			done <- err
		}()
	}
	for i := 0; i < writers; i++ {
		req.NoError(<-done)
	}

	fetched, err := repository.ListAll()
	req.NoError(err)
	req.Len(fetched, writers)
}
