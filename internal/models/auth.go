package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the applicant sign-up payload.
type RegisterRequest struct {
	FullName    string `json:"full_name" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,min=10"`
	Password    string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UpdateAccountRequest updates profile and credential settings. All fields
// are optional; changing the password requires the current one.
type UpdateAccountRequest struct {
	FullName        string `json:"full_name" validate:"omitempty,min=3"`
	Email           string `json:"email" validate:"omitempty,email"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,min=10"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"omitempty,min=6"`
}

// VerifyOTPRequest submits a one-time code for a phone number.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10"`
	Code        string `json:"code" validate:"required,len=6"`
}

// ResendOTPRequest asks for a fresh one-time code.
type ResendOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=10"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	FullName      string   `json:"full_name"`
	PhoneNumber   string   `json:"phone_number"`
	Role          UserRole `json:"role"`
	PhoneVerified bool     `json:"phone_verified"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
