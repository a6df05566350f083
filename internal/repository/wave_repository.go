package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ppdb-api/internal/models"
)

// WaveRepository persists the enrollment wave catalog.
type WaveRepository struct {
	db *sqlx.DB
}

// NewWaveRepository constructs the repository.
func NewWaveRepository(db *sqlx.DB) *WaveRepository {
	return &WaveRepository{db: db}
}

// List returns the catalog in administrator order.
func (r *WaveRepository) List(ctx context.Context) ([]models.Wave, error) {
	const query = `SELECT name, start_date, end_date, fee_items, position FROM waves ORDER BY position ASC`
	var waves []models.Wave
	if err := r.db.SelectContext(ctx, &waves, query); err != nil {
		return nil, fmt.Errorf("list waves: %w", err)
	}
	return waves, nil
}

// Count returns the number of configured waves.
func (r *WaveRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM waves`); err != nil {
		return 0, fmt.Errorf("count waves: %w", err)
	}
	return count, nil
}

// ReplaceAll swaps the stored catalog for the provided one inside a single
// transaction. Validation happens before this is called; the write is all
// or nothing.
func (r *WaveRepository) ReplaceAll(ctx context.Context, waves []models.Wave) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin wave replacement tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM waves`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear waves: %w", err)
	}
	const query = `INSERT INTO waves (name, start_date, end_date, fee_items, position)
VALUES (:name, :start_date, :end_date, :fee_items, :position)`
	for i := range waves {
		waves[i].Position = i
		if _, err := tx.NamedExecContext(ctx, query, waves[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert wave %q: %w", waves[i].Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit wave replacement tx: %w", err)
	}
	return nil
}
