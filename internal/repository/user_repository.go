package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ppdb-api/internal/models"
)

// UserRepository persists applicant and administrator accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, phone_number, role, phone_verified, created_at, updated_at`

// FindByID fetches a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail fetches a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhone fetches a user by phone number.
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE phone_number = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, phone); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (id, email, password_hash, full_name, phone_number, role, phone_verified, created_at, updated_at)
VALUES (:id, :email, :password_hash, :full_name, :phone_number, :role, :phone_verified, :created_at, :updated_at)`
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update writes account settings back to storage.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	const query = `UPDATE users
SET email = :email, password_hash = :password_hash, full_name = :full_name,
    phone_number = :phone_number, phone_verified = :phone_verified, updated_at = :updated_at
WHERE id = :id`
	user.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// MarkPhoneVerified flags the account's phone number as verified.
func (r *UserRepository) MarkPhoneVerified(ctx context.Context, id string) error {
	const query = `UPDATE users SET phone_verified = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark phone verified: %w", err)
	}
	return nil
}
