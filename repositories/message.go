//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/venturehub/community-chat/domain"
	"github.com/venturehub/community-chat/errors"
)

type IMessageRepository interface {
	Append(senderID, body string) (domain.Message, error)
	ListAll() ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	maxBodyLength int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, maxBodyLength int) MessageRepository {
	return MessageRepository{db: db, log: log, maxBodyLength: maxBodyLength}
}

const messagePrefix = "msg:"

// diskMessage is the msgpack shape written to BadgerDB.
type diskMessage struct {
	ID        string `msgpack:"id"`
	SenderID  string `msgpack:"sender_id"`
	Body      string `msgpack:"body"`
	CreatedAt int64  `msgpack:"created_at"` // unix nanoseconds, UTC
}

// Append validates the body, then persists the message atomically with a
// store-assigned id and timestamp.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// Each append writes its own key, so concurrent calls never conflict.
func (m MessageRepository) Append(senderID, body string) (domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Message{}, errors.ErrEmptyBody
	}
	if m.maxBodyLength > 0 && len([]rune(body)) > m.maxBodyLength {
		return domain.Message{}, errors.ErrBodyTooLong
	}

	msg := domain.Message{
		ID:        uuid.New(),
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	key := fmt.Sprintf("%s%019d:%s", messagePrefix, msg.CreatedAt.UnixNano(), msg.ID)
	bytes, err := msgpack.Marshal(fromMessage(msg))
	if err != nil {
		return domain.Message{}, fmt.Errorf("marshal failed: %w", err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return msg, nil
}

// ListAll retrieves every message, oldest first, via a forward prefix scan.
// Thanks to the padded timestamp in the key, no sort pass is needed.
// An empty store yields an empty slice, not an error.
func (m MessageRepository) ListAll() ([]domain.Message, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var dm diskMessage
		if err = msgpack.Unmarshal(b, &dm); err != nil {
			return nil, fmt.Errorf("unmarshal failed: %w", err)
		}
		message, err := toMessage(dm)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	m.log.Debug(fmt.Sprintf("%d messages listed", len(messages)))
	return messages, nil
}

func fromMessage(msg domain.Message) diskMessage {
	return diskMessage{
		ID:        msg.ID.String(),
		SenderID:  msg.SenderID,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt.UnixNano(),
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		SenderID:  dm.SenderID,
		Body:      dm.Body,
		CreatedAt: time.Unix(0, dm.CreatedAt).UTC(),
	}, nil
}
