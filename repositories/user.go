//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-relay/errors"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userPrefix   = "user:"
	userIDPrefix = "user_id:"
)

type IUserRepository interface {
	CreateUser(email, fullName, hashedPassword string) (User, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	UpdatePassword(id, hashedPassword string) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the stored representation of an account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"password_hash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser persists a new account under two keys:
// user:<email> holds the record, user_id:<id> points back to the email.
func (u UserRepository) CreateUser(email, fullName, hashedPassword string) (User, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte(userPrefix + email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(userIDPrefix+user.ID), []byte(email))
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getByEmail(txn, email)
		return err
	})
	return user, err
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		email, err := emailOf(txn, id)
		if err != nil {
			return err
		}
		user, err = getByEmail(txn, email)
		return err
	})
	return user, err
}

func (u UserRepository) UpdatePassword(id, hashedPassword string) error {
	return u.db.Update(func(txn *badger.Txn) error {
		email, err := emailOf(txn, id)
		if err != nil {
			return err
		}
		user, err := getByEmail(txn, email)
		if err != nil {
			return err
		}
		user.PasswordHash = hashedPassword

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set([]byte(userPrefix+email), data)
	})
}

func emailOf(txn *badger.Txn, id string) (string, error) {
	item, err := txn.Get([]byte(userIDPrefix + id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return "", errors.ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func getByEmail(txn *badger.Txn, email string) (User, error) {
	item, err := txn.Get([]byte(userPrefix + email))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}

	var user User
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	})
	return user, err
}

// ScanUsers walks every stored account in key order.
func ScanUsers(db *badger.DB, fn func(User) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(userPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if err := fn(user); err != nil {
				return err
			}
		}
		return nil
	})
}
