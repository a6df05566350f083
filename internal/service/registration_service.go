package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-api/internal/dto"
	"github.com/noah-isme/ppdb-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
)

const schoolDisplayName = "SMA Methodist 1 Palembang"

type registrationRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Registration, error)
	FindDetailByID(ctx context.Context, id string) (*models.RegistrationDetail, error)
	ListDetails(ctx context.Context, status models.RegistrationStatus) ([]models.RegistrationDetail, error)
	Create(ctx context.Context, reg *models.Registration) error
	Save(ctx context.Context, reg *models.Registration) error
	NextRegistrationNumber(ctx context.Context) (int64, error)
}

type waveCatalog interface {
	List(ctx context.Context) ([]models.Wave, error)
}

type decisionNotifier interface {
	Enqueue(to, message string)
}

// RegistrationService owns the admission lifecycle: merging partial section
// submissions, recomputing the checklist, driving the status state machine
// and keeping a draft's wave assignment current. Every operation is one
// read-merge-validate-write sequence; concurrent writers are not
// serialized, the last merged view wins.
type RegistrationService struct {
	repo      registrationRepository
	waves     waveCatalog
	notifier  decisionNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo registrationRepository, waves waveCatalog, notifier decisionNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		repo:      repo,
		waves:     waves,
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the account's registration, provisioning the draft
// record on first read. While the registration is still a draft its wave
// always reflects the wave active now, because fees are charged at
// submission time, not creation time.
func (s *RegistrationService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	waves, err := s.waves.List(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
		}
		reg = &models.Registration{
			ID:     uuid.NewString(),
			UserID: userID,
			Status: models.StatusDraft,
			Wave:   AssignWave(s.now(), waves),
		}
		if err := s.repo.Create(ctx, reg); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
		}
	} else if reg.Status == models.StatusDraft {
		if current := AssignWave(s.now(), waves); current != reg.Wave {
			reg.Wave = current
			if err := s.repo.Save(ctx, reg); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh wave assignment")
			}
		}
	}

	return &dto.ProfileResponse{
		Registration: reg,
		WaveFees:     feesFor(reg.Wave, waves),
	}, nil
}

// UpdateSections merges a partial patch into the stored record, recomputes
// the checklist and applies the automatic status transitions: submitting
// payment proof moves a draft to pending, explicitly clearing it moves
// pending back to draft. Verified and rejected are never entered or left
// here.
func (s *RegistrationService) UpdateSections(ctx context.Context, userID string, patch dto.SectionPatch) (*models.Registration, error) {
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patch must carry at least one section")
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	waves, err := s.waves.List(ctx)
	if err != nil {
		return nil, err
	}

	created := false
	reg, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
		}
		created = true
		reg = &models.Registration{
			ID:     uuid.NewString(),
			UserID: userID,
			Status: models.StatusDraft,
		}
	}

	now := s.now()
	s.merge(reg, patch, now)
	reg.Checklist = EvaluateChecklist(reg)

	// A draft keeps tracking the currently active wave right up to the
	// moment it leaves draft, freezing the fee schedule at submission.
	if reg.Status == models.StatusDraft {
		reg.Wave = AssignWave(now, waves)
	}

	switch {
	case reg.Documents.PaymentProof != "" && reg.Status == models.StatusDraft:
		reg.Status = models.StatusPending
		if reg.RegistrationNumber == nil {
			if err := s.assignNumber(ctx, reg, now); err != nil {
				return nil, err
			}
		}
	case reg.Documents.PaymentProof == "" && reg.Status == models.StatusPending:
		// Pending means "payment evidence submitted and awaiting
		// review"; removing the evidence invalidates that claim.
		reg.Status = models.StatusDraft
	}

	if created {
		if err := s.repo.Create(ctx, reg); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
		}
	} else if err := s.repo.Save(ctx, reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}
	return reg, nil
}

// Verify applies an administrator decision. Re-review is always permitted
// regardless of the current status, the checklist is untouched, and the
// applicant is notified best-effort after the status is committed.
func (s *RegistrationService) Verify(ctx context.Context, registrationID string, req dto.VerificationActionRequest) (*models.RegistrationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	detail, err := s.repo.FindDetailByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	detail.Status = req.Status
	if err := s.repo.Save(ctx, &detail.Registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}

	if s.notifier != nil && detail.ApplicantPhone != "" {
		s.notifier.Enqueue(detail.ApplicantPhone, decisionMessage(detail.ApplicantName, req.Status, req.RejectionReason))
	}
	return detail, nil
}

// ListVerifications returns the admin queue, excluding drafts unless a
// status is requested explicitly.
func (s *RegistrationService) ListVerifications(ctx context.Context, status string) ([]models.RegistrationDetail, error) {
	filter := models.RegistrationStatus(status)
	if status != "" && !filter.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}
	start := time.Now()
	details, err := s.repo.ListDetails(ctx, filter)
	s.metrics.ObserveDBQuery("registrations_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return details, nil
}

// GetVerification returns one registration with its applicant for review.
func (s *RegistrationService) GetVerification(ctx context.Context, registrationID string) (*models.RegistrationDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return detail, nil
}

// merge applies the patch section by section. A present section replaces
// the stored one wholesale; an absent section keeps the stored value, so a
// field is only ever blanked when the patch supplies it empty explicitly.
func (s *RegistrationService) merge(reg *models.Registration, patch dto.SectionPatch, now time.Time) {
	if patch.Student != nil {
		reg.Student = *patch.Student
		reg.SectionTimes.Biodata = &now
	}
	if patch.Father != nil {
		reg.Father = *patch.Father
	}
	if patch.Mother != nil {
		reg.Mother = *patch.Mother
	}
	if patch.Guardian != nil {
		reg.Guardian = *patch.Guardian
	}
	if patch.Documents != nil {
		prev := reg.Documents
		reg.Documents = *patch.Documents
		if reg.Documents.FamilyCard != prev.FamilyCard {
			reg.SectionTimes.FamilyCard = &now
		}
		if reg.Documents.BirthCertificate != prev.BirthCertificate {
			reg.SectionTimes.BirthCertificate = &now
		}
		if reg.Documents.PaymentProof != prev.PaymentProof {
			reg.SectionTimes.PaymentProof = &now
		}
	}
}

func (s *RegistrationService) assignNumber(ctx context.Context, reg *models.Registration, now time.Time) error {
	seq, err := s.repo.NextRegistrationNumber(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign registration number")
	}
	number := fmt.Sprintf("PPDB-%d-%03d", now.Year(), seq)
	reg.RegistrationNumber = &number
	return nil
}

func validatePatch(patch dto.SectionPatch) error {
	if patch.Student != nil {
		switch patch.Student.Gender {
		case "", "L", "P":
		default:
			return appErrors.Clone(appErrors.ErrValidation, "gender must be L or P")
		}
	}
	return nil
}

func feesFor(waveName string, waves []models.Wave) models.FeeItems {
	for _, wave := range waves {
		if wave.Name == waveName {
			return wave.FeeItems
		}
	}
	return nil
}

func decisionMessage(name string, status models.RegistrationStatus, reason string) string {
	if status == models.StatusVerified {
		return fmt.Sprintf("Halo %s,\n\nSelamat! Pendaftaran PPDB Anda di %s telah DITERIMA / TERVERIFIKASI.\n\nSilahkan login ke dashboard untuk melihat informasi selanjutnya.\n\nTerima Kasih.", name, schoolDisplayName)
	}
	if reason == "" {
		reason = "Data belum lengkap"
	}
	return fmt.Sprintf("Halo %s,\n\nMohon maaf, pendaftaran Anda belum dapat kami verifikasi karena:\n%s\n\nSilahkan perbaiki data/dokumen Anda di dashboard dan lakukan konfirmasi ulang.\n\nTerima Kasih.", name, reason)
}
