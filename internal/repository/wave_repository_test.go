package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-api/internal/models"
)

func TestWaveListReturnsPositionOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWaveRepository(db)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"name", "start_date", "end_date", "fee_items", "position"}).
		AddRow("Gelombang 1", start, end, []byte(`{"registration":150000}`), 0).
		AddRow("Gelombang 2", nil, nil, []byte(`{}`), 1)
	mock.ExpectQuery("SELECT (.+) FROM waves ORDER BY position").WillReturnRows(rows)

	waves, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, waves, 2)
	assert.Equal(t, "Gelombang 1", waves[0].Name)
	assert.EqualValues(t, 150000, waves[0].FeeItems["registration"])
	assert.True(t, waves[0].Bounded())
	assert.False(t, waves[1].Bounded())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaveReplaceAllCommitsDeleteAndInserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWaveRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM waves").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO waves").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO waves").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	waves := []models.Wave{
		{Name: "Gelombang 1", FeeItems: models.FeeItems{}},
		{Name: "Gelombang 2", FeeItems: models.FeeItems{}},
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), waves))
	assert.Equal(t, 0, waves[0].Position)
	assert.Equal(t, 1, waves[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaveReplaceAllRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWaveRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM waves").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO waves").WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), []models.Wave{{Name: "Gelombang 1", FeeItems: models.FeeItems{}}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaveCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWaveRepository(db)

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
