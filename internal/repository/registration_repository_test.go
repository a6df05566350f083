package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-api/internal/models"
)

func registrationRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "registration_number", "wave", "status", "checklist",
		"student", "father", "mother", "guardian", "documents", "section_times",
		"created_at", "updated_at",
	}).AddRow(
		"reg-1", "user-1", nil, "Gelombang 1", string(models.StatusDraft), []byte(`{"biodata":false,"documents":false,"payment":false}`),
		[]byte(`{"full_name":"Budi Santoso","address":{}}`), []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`{}`),
		now, now,
	)
}

func TestRegistrationFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM registrations WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(registrationRows())

	reg, err := repo.FindByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "reg-1", reg.ID)
	assert.Equal(t, "Budi Santoso", reg.Student.FullName)
	assert.Nil(t, reg.RegistrationNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationFindByUserIDNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM registrations WHERE user_id").
		WithArgs("user-9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUserID(context.Background(), "user-9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationListDetailsDefaultExcludesDrafts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "registration_number", "wave", "status", "checklist",
		"student", "father", "mother", "guardian", "documents", "section_times",
		"created_at", "updated_at", "applicant_name", "applicant_email", "applicant_phone",
	})
	mock.ExpectQuery(`WHERE r\.status <> 'draft'`).WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationListDetailsWithStatusFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "registration_number", "wave", "status", "checklist",
		"student", "father", "mother", "guardian", "documents", "section_times",
		"created_at", "updated_at", "applicant_name", "applicant_email", "applicant_phone",
	}).AddRow(
		"reg-1", "user-1", "PPDB-2026-001", "Gelombang 1", string(models.StatusPending), []byte(`{}`),
		[]byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`{}`), []byte(`{}`),
		time.Now(), time.Now(), "Budi Santoso", "budi@example.com", "628123456789",
	)
	mock.ExpectQuery(`WHERE r\.status = \$1`).
		WithArgs(string(models.StatusPending)).
		WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), models.StatusPending)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Budi Santoso", details[0].ApplicantName)
	require.NotNil(t, details[0].RegistrationNumber)
	assert.Equal(t, "PPDB-2026-001", *details[0].RegistrationNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationSave(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectExec("UPDATE registrations").WillReturnResult(sqlmock.NewResult(0, 1))

	reg := &models.Registration{ID: "reg-1", UserID: "user-1", Status: models.StatusPending}
	require.NoError(t, repo.Save(context.Background(), reg))
	assert.False(t, reg.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationNextRegistrationNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT nextval").
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(7))

	seq, err := repo.NextRegistrationNumber(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}
