package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-api/internal/dto"
	"github.com/noah-isme/ppdb-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
)

type waveRepository interface {
	List(ctx context.Context) ([]models.Wave, error)
	Count(ctx context.Context) (int, error)
	ReplaceAll(ctx context.Context, waves []models.Wave) error
}

// WaveService manages the enrollment wave catalog. Replacement is wholesale
// and atomic: the incoming set is validated in full before anything is
// persisted.
type WaveService struct {
	repo      waveRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWaveService constructs a WaveService.
func NewWaveService(repo waveRepository, validate *validator.Validate, logger *zap.Logger) *WaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaveService{repo: repo, validator: validate, logger: logger}
}

// List returns the catalog in administrator order.
func (s *WaveService) List(ctx context.Context) ([]models.Wave, error) {
	waves, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waves")
	}
	return waves, nil
}

// Replace validates and persists the full replacement catalog, returning it
// in the caller's order.
func (s *WaveService) Replace(ctx context.Context, req dto.ReplaceWavesRequest) ([]models.Wave, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid wave payload")
	}
	waves := req.ToModels()
	if err := ValidateWaves(waves); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAll(ctx, waves); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace waves")
	}
	return waves, nil
}

// ValidateWaves checks internal catalog consistency: non-empty unique
// names, non-negative fees, coherent bounds, and no overlap among fully
// bounded waves. Waves missing a bound are exempt from the overlap check;
// coexistence of open-ended waves is the administrator's call.
func ValidateWaves(waves []models.Wave) error {
	seen := make(map[string]struct{}, len(waves))
	for _, wave := range waves {
		if wave.Name == "" {
			return appErrors.Clone(appErrors.ErrValidation, "wave name must not be empty")
		}
		if _, dup := seen[wave.Name]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate wave name %q", wave.Name))
		}
		seen[wave.Name] = struct{}{}

		for key, amount := range wave.FeeItems {
			if amount < 0 {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("wave %q: fee %q must not be negative", wave.Name, key))
			}
		}
		if wave.Bounded() && wave.EndDate.Before(*wave.StartDate) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("wave %q ends before it starts", wave.Name))
		}
	}

	bounded := make([]models.Wave, 0, len(waves))
	for _, wave := range waves {
		if wave.Bounded() {
			bounded = append(bounded, wave)
		}
	}
	sort.SliceStable(bounded, func(i, j int) bool {
		return bounded[i].StartDate.Before(*bounded[j].StartDate)
	})

	// Bounds are inclusive, so touching on the same instant is a
	// collision; only a strictly later start is permitted.
	for i := 0; i+1 < len(bounded); i++ {
		a, b := bounded[i], bounded[i+1]
		if !a.EndDate.Before(*b.StartDate) {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("wave %q overlaps wave %q", a.Name, b.Name))
		}
	}
	return nil
}

// AssignWave selects the wave an applicant belongs to at the given instant:
// the first wave in catalog order whose range contains now, else the first
// wave, else the fixed default. Catalog order is the tie-break when several
// waves match; the position column makes that order explicit.
func AssignWave(now time.Time, waves []models.Wave) string {
	for _, wave := range waves {
		if wave.Contains(now) {
			return wave.Name
		}
	}
	if len(waves) > 0 {
		return waves[0].Name
	}
	return models.DefaultWaveName
}
