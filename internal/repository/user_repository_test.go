package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(email, phone string, verified bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "phone_number", "role", "phone_verified", "created_at", "updated_at"}).
		AddRow("1", email, "hash", "Budi Santoso", phone, string(models.RoleStudent), verified, now, now)
}

func TestUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("budi@example.com").
		WillReturnRows(userRows("budi@example.com", "628123456789", false))

	user, err := repo.FindByEmail(context.Background(), "budi@example.com")
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByPhoneNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE phone_number").
		WithArgs("628123456789").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPhone(context.Background(), "628123456789")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows), "no-rows passes through untyped for the service layer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateStampsTimestamps(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{ID: "1", Email: "budi@example.com", PhoneNumber: "628123456789", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserMarkPhoneVerified(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET phone_verified = TRUE").
		WithArgs("1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPhoneVerified(context.Background(), "1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
