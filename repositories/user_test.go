package repositories

import (
	"testing"

	"krishi-mitra/errors"

	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndFetch(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	id, err := repo.CreateUser("ramesh", "ramesh@example.com", "$argon2id$fake-hash")
	req.NoError(err)
	req.NotEmpty(id)

	byEmail, err := repo.GetUserByEmail("ramesh@example.com")
	req.NoError(err)
	req.Equal(id, byEmail.ID)
	req.Equal("ramesh", byEmail.Username)
	req.Equal([]string{"user"}, byEmail.Roles)

	byID, err := repo.GetUserByID(id)
	req.NoError(err)
	req.Equal(byEmail, byID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.CreateUser("ramesh", "ramesh@example.com", "hash-1")
	req.NoError(err)

	_, err = repo.CreateUser("suresh", "ramesh@example.com", "hash-2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_UnknownUser(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.GetUserByEmail("nobody@example.com")
	req.Error(err)

	_, err = repo.GetUserByID("no-such-id")
	req.Error(err)
}
