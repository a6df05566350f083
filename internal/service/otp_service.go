package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
)

type otpStore interface {
	Put(ctx context.Context, phone string, code models.OneTimeCode) error
	Get(ctx context.Context, phone string) (*models.OneTimeCode, error)
	Delete(ctx context.Context, phone string) error
}

type otpUserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	MarkPhoneVerified(ctx context.Context, id string) error
}

// OTPService issues and verifies six-digit phone verification codes. At
// most one code is live per phone number; issuing again overwrites the
// previous code, invalidating it.
type OTPService struct {
	store    otpStore
	users    otpUserRepository
	notifier decisionNotifier
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewOTPService constructs an OTPService. ttl is the code validity window.
func NewOTPService(store otpStore, users otpUserRepository, notifier decisionNotifier, ttl time.Duration, logger *zap.Logger) *OTPService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OTPService{
		store:    store,
		users:    users,
		notifier: notifier,
		ttl:      ttl,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Issue generates a fresh code for the phone number, stores it and sends it
// over WhatsApp. Any previously issued code stops being valid immediately.
func (s *OTPService) Issue(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate verification code")
	}
	now := s.now()
	otp := models.OneTimeCode{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, phone, otp); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store verification code")
	}
	if s.notifier != nil {
		s.notifier.Enqueue(phone, fmt.Sprintf("Kode verifikasi PPDB Anda: %s\n\nKode berlaku %d menit. Jangan bagikan kode ini kepada siapa pun.", code, int(s.ttl.Minutes())))
	}
	s.logger.Info("otp issued", zap.String("phone", phone))
	return nil
}

// Resend issues a new code for a registered, still-unverified phone number.
func (s *OTPService) Resend(ctx context.Context, phone string) error {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "phone number is not registered")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up account")
	}
	if user.PhoneVerified {
		return appErrors.Clone(appErrors.ErrConflict, "phone number is already verified")
	}
	return s.Issue(ctx, phone)
}

// Verify checks the submitted code against the stored one. A wrong code is
// reported as a mismatch even when the stored code has also expired; expiry
// is only reported for the right code arriving too late. On success the
// code is cleared so it cannot be replayed, and the account's phone is
// marked verified.
func (s *OTPService) Verify(ctx context.Context, phone, submitted string) error {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "phone number is not registered")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up account")
	}

	stored, err := s.store.Get(ctx, phone)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load verification code")
	}
	if stored == nil || stored.Code != submitted {
		return appErrors.Clone(appErrors.ErrOTPMismatch, "")
	}
	if stored.Expired(s.now()) {
		return appErrors.Clone(appErrors.ErrOTPExpired, "")
	}

	if err := s.users.MarkPhoneVerified(ctx, user.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark phone verified")
	}
	if err := s.store.Delete(ctx, phone); err != nil {
		// The code has expiry anyway; a leftover key only risks replay
		// until then, which the verified flag already neutralizes.
		s.logger.Warn("failed to clear verified otp", zap.String("phone", phone), zap.Error(err))
	}
	s.logger.Info("phone verified", zap.String("phone", phone), zap.String("user_id", user.ID))
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
