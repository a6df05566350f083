package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/ppdb-api/internal/models"
	"github.com/noah-isme/ppdb-api/pkg/config"
)

type seedUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type seedWaveRepository interface {
	Count(ctx context.Context) (int, error)
	ReplaceAll(ctx context.Context, waves []models.Wave) error
}

// SeedService provisions the bootstrap admin account and a default wave
// catalog on startup. Both steps are idempotent; existing data is never
// overwritten.
type SeedService struct {
	users  seedUserRepository
	waves  seedWaveRepository
	cfg    config.SeedConfig
	logger *zap.Logger
}

// NewSeedService constructs a SeedService.
func NewSeedService(users seedUserRepository, waves seedWaveRepository, cfg config.SeedConfig, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, waves: waves, cfg: cfg, logger: logger}
}

// Run executes the seeding steps.
func (s *SeedService) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}
	if err := s.seedAdmin(ctx); err != nil {
		return err
	}
	return s.seedWaves(ctx)
}

func (s *SeedService) seedAdmin(ctx context.Context) error {
	if _, err := s.users.FindByEmail(ctx, s.cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		ID:            uuid.NewString(),
		Email:         s.cfg.AdminEmail,
		PasswordHash:  string(hash),
		FullName:      "Administrator",
		PhoneNumber:   s.cfg.AdminPhone,
		Role:          models.RoleAdmin,
		PhoneVerified: true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("seeded admin account", zap.String("email", admin.Email))
	return nil
}

func (s *SeedService) seedWaves(ctx context.Context) error {
	count, err := s.waves.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	fees := models.FeeItems{}
	for _, key := range models.FeeKeys {
		fees[key] = 0
	}
	defaultCatalog := []models.Wave{{
		Name:     models.DefaultWaveName,
		FeeItems: fees,
		Position: 0,
	}}
	if err := s.waves.ReplaceAll(ctx, defaultCatalog); err != nil {
		return err
	}
	s.logger.Info("seeded default wave catalog", zap.String("wave", models.DefaultWaveName))
	return nil
}
