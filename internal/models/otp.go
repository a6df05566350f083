package models

import "time"

// OneTimeCode is an ephemeral verification artifact bound to a phone number.
// A code is single-use: it is cleared on successful verification and
// overwritten on resend.
type OneTimeCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Expired reports whether the code is past its expiry instant.
func (o OneTimeCode) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
