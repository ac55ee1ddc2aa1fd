//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/venturehub/community-chat/errors"
)

type IUserRepository interface {
	CreateUser(externalID, name, avatar string) (string, error)
	GetUserByExternalID(externalID string) (User, error)
	GetUserByID(id string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-level representation of a directory entry.
// Provisioning it is an external concern; the write path exists so that
// deployments and tests can seed the directory.
type User struct {
	ID         string
	ExternalID string
	Name       string
	Avatar     string
	CreatedAt  time.Time
}

type diskUser struct {
	ID         string `msgpack:"id"`
	ExternalID string `msgpack:"external_id"`
	Name       string `msgpack:"name"`
	Avatar     string `msgpack:"avatar"`
	CreatedAt  int64  `msgpack:"created_at"`
}

// CreateUser persists a directory entry under two keys:
// "user:{externalID}" holds the record, "uid:{id}" points back to the
// external id so messages (which carry internal ids) can be enriched.
// It returns the newly generated internal user ID.
func (u UserRepository) CreateUser(externalID, name, avatar string) (string, error) {
	newID := uuid.New().String()
	record := diskUser{
		ID:         newID,
		ExternalID: externalID,
		Name:       name,
		Avatar:     avatar,
		CreatedAt:  time.Now().Unix(),
	}

	data, err := msgpack.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte("user:" + externalID)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err = txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte("uid:"+newID), []byte(externalID))
	})

	return newID, err
}

// GetUserByExternalID retrieves a directory entry by its external identity.
func (u UserRepository) GetUserByExternalID(externalID string) (User, error) {
	var record diskUser

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + externalID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &record)
		})
	})

	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUnknownSender
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return toUser(record), nil
}

// GetUserByID resolves an internal id through the "uid:" pointer key.
func (u UserRepository) GetUserByID(id string) (User, error) {
	var externalID string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("uid:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			externalID = string(val)
			return nil
		})
	})

	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUnknownSender
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return u.GetUserByExternalID(externalID)
}

func toUser(record diskUser) User {
	return User{
		ID:         record.ID,
		ExternalID: record.ExternalID,
		Name:       record.Name,
		Avatar:     record.Avatar,
		CreatedAt:  time.Unix(record.CreatedAt, 0).UTC(),
	}
}
