package repositories

import (
	"chat-relay/errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	// When a user is created
	created, err := repository.CreateUser("alice@example.com", "Alice", "$argon2id$hash")
	req.NoError(err)
	_, err = uuid.Parse(created.ID)
	req.NoError(err)
	req.Equal([]string{"user"}, created.Roles)

	// Then it can be fetched by email and by id
	byEmail, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)
	req.Equal("Alice", byEmail.FullName)
	req.Equal("$argon2id$hash", byEmail.PasswordHash)
	req.True(created.CreatedAt.Equal(byEmail.CreatedAt))

	byID, err := repository.GetUserByID(created.ID)
	req.NoError(err)
	req.Equal(created.Email, byID.Email)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	_, err := repository.CreateUser("bob@example.com", "Bob", "hash")
	req.NoError(err)

	_, err = repository.CreateUser("bob@example.com", "Another Bob", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_NotFound(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	_, err := repository.GetUserByEmail("ghost@example.com")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repository.GetUserByID(uuid.NewString())
	req.ErrorIs(err, errors.ErrUserNotFound)

	err = repository.UpdatePassword(uuid.NewString(), "hash")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	created, err := repository.CreateUser("clara@example.com", "Clara", "old-hash")
	req.NoError(err)

	req.NoError(repository.UpdatePassword(created.ID, "new-hash"))

	user, err := repository.GetUserByEmail("clara@example.com")
	req.NoError(err)
	req.Equal("new-hash", user.PasswordHash)
	req.Equal("Clara", user.FullName)
}

func TestScanUsers(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	repository := NewUserRepository(db)

	for _, email := range []string{"b@example.com", "a@example.com", "c@example.com"} {
		_, err := repository.CreateUser(email, "Someone", "hash")
		req.NoError(err)
	}

	var emails []string
	err := ScanUsers(db, func(user User) error {
		emails = append(emails, user.Email)
		return nil
	})

	req.NoError(err)
	req.Equal([]string{"a@example.com", "b@example.com", "c@example.com"}, emails)
}
