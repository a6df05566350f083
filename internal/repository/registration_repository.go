package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ppdb-api/internal/models"
)

// RegistrationRepository persists admission records. Records are written
// whole after the service-level merge; there is no field-level patching
// here.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, user_id, registration_number, wave, status, checklist,
student, father, mother, guardian, documents, section_times, created_at, updated_at`

// FindByUserID fetches the account's registration.
func (r *RegistrationRepository) FindByUserID(ctx context.Context, userID string) (*models.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE user_id = $1`, registrationColumns)
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, userID); err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindDetailByID joins the owning account onto the registration.
func (r *RegistrationRepository) FindDetailByID(ctx context.Context, id string) (*models.RegistrationDetail, error) {
	const query = `SELECT r.id, r.user_id, r.registration_number, r.wave, r.status, r.checklist,
r.student, r.father, r.mother, r.guardian, r.documents, r.section_times, r.created_at, r.updated_at,
u.full_name AS applicant_name, u.email AS applicant_email, u.phone_number AS applicant_phone
FROM registrations r JOIN users u ON u.id = r.user_id
WHERE r.id = $1`
	var detail models.RegistrationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListDetails returns registrations for the admin verification queue.
// An empty status filter excludes drafts; drafts only surface when asked
// for explicitly.
func (r *RegistrationRepository) ListDetails(ctx context.Context, status models.RegistrationStatus) ([]models.RegistrationDetail, error) {
	query := `SELECT r.id, r.user_id, r.registration_number, r.wave, r.status, r.checklist,
r.student, r.father, r.mother, r.guardian, r.documents, r.section_times, r.created_at, r.updated_at,
u.full_name AS applicant_name, u.email AS applicant_email, u.phone_number AS applicant_phone
FROM registrations r JOIN users u ON u.id = r.user_id`

	var args []interface{}
	if status != "" {
		query += ` WHERE r.status = $1`
		args = append(args, status)
	} else {
		query += ` WHERE r.status <> 'draft'`
	}
	query += ` ORDER BY r.created_at DESC`

	var details []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return details, nil
}

// Create inserts a fresh draft record.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	const query = `INSERT INTO registrations (id, user_id, registration_number, wave, status, checklist,
student, father, mother, guardian, documents, section_times, created_at, updated_at)
VALUES (:id, :user_id, :registration_number, :wave, :status, :checklist,
:student, :father, :mother, :guardian, :documents, :section_times, :created_at, :updated_at)`
	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// Save writes the merged record back in full.
func (r *RegistrationRepository) Save(ctx context.Context, reg *models.Registration) error {
	const query = `UPDATE registrations
SET registration_number = :registration_number, wave = :wave, status = :status, checklist = :checklist,
    student = :student, father = :father, mother = :mother, guardian = :guardian,
    documents = :documents, section_times = :section_times, updated_at = :updated_at
WHERE id = :id`
	reg.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}

// NextRegistrationNumber draws the next sequence value for numbering a
// submitted registration.
func (r *RegistrationRepository) NextRegistrationNumber(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, `SELECT nextval('registration_number_seq')`); err != nil {
		return 0, fmt.Errorf("next registration number: %w", err)
	}
	return seq, nil
}
