package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE email = ").
		WithArgs("ops@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "email", "name", "password_hash"}).
			AddRow(int64(1), "", "ops@example.com", "Ops", "$2a$10$hash"))
	mock.ExpectQuery("FROM users WHERE email = ").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "email", "name", "password_hash"}))

	repo := NewUserRepository(db)

	user, found, err := repo.GetByEmail(context.Background(), "ops@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)

	_, found, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateAndLinkGoogle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ops@example.com", "Ops", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("UPDATE users").
		WithArgs("google-sub", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepository(db)

	id, err := repo.Create(context.Background(), &models.User{Email: "ops@example.com", Name: "Ops", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	require.NoError(t, repo.SetGoogleID(context.Background(), id, "google-sub"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
