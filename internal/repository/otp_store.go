package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/ppdb-api/internal/models"
)

// OTPStore keeps one-time verification codes in Redis keyed by phone
// number. The Redis key outlives the code's expiry by a retention window so
// verification can tell an expired code apart from a wrong one; the stored
// expiry instant is authoritative, not the key TTL.
type OTPStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewOTPStore constructs the store.
func NewOTPStore(client *redis.Client, retention time.Duration) *OTPStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &OTPStore{client: client, retention: retention}
}

// Put stores the code for the phone number, overwriting any previous
// issuance.
func (s *OTPStore) Put(ctx context.Context, phone string, code models.OneTimeCode) error {
	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode otp: %w", err)
	}
	ttl := time.Until(code.ExpiresAt) + s.retention
	if err := s.client.Set(ctx, otpKey(phone), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Get returns the stored code for the phone number, or nil when none
// exists.
func (s *OTPStore) Get(ctx context.Context, phone string) (*models.OneTimeCode, error) {
	raw, err := s.client.Get(ctx, otpKey(phone)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch otp: %w", err)
	}
	var code models.OneTimeCode
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, fmt.Errorf("decode otp: %w", err)
	}
	return &code, nil
}

// Delete clears the stored code after successful verification.
func (s *OTPStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("clear otp: %w", err)
	}
	return nil
}

func otpKey(phone string) string {
	return "otp:" + phone
}
