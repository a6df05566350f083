package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/ppdb-api/internal/models"
	"github.com/noah-isme/ppdb-api/pkg/config"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type codeIssuer interface {
	Issue(ctx context.Context, phone string) error
}

// AuthService handles account registration, credential login and JWT
// issuance.
type AuthService struct {
	repo      userRepository
	otp       codeIssuer
	jwtCfg    config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo userRepository, otp codeIssuer, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		repo:      repo,
		otp:       otp,
		jwtCfg:    jwtCfg,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a student account and sends a phone verification code.
// Signing up again with a phone number that was registered but never
// verified re-issues the code instead of failing, so an applicant who lost
// the first message is not locked out of their own number.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if existing, err := s.repo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	if existing, err := s.repo.FindByPhone(ctx, req.PhoneNumber); err == nil && existing != nil {
		if existing.PhoneVerified {
			return nil, appErrors.Clone(appErrors.ErrConflict, "phone number is already registered")
		}
		if err := s.otp.Issue(ctx, req.PhoneNumber); err != nil {
			return nil, err
		}
		return userInfo(existing), nil
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check phone number")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		Role:         models.RoleStudent,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	if err := s.otp.Issue(ctx, user.PhoneNumber); err != nil {
		// The account exists; the applicant can request a resend.
		s.logger.Warn("failed to issue verification code at signup", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return userInfo(user), nil
}

// Login authenticates credentials and issues a signed JWT.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	now := s.now()
	expiresAt := now.Add(s.jwtCfg.Expiration)
	claims := models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	s.logger.Info("login", zap.String("user_id", user.ID))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtCfg.Expiration.Seconds()),
		User:        *userInfo(user),
		IssuedAt:    now,
	}, nil
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// Me returns the authenticated account's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	return userInfo(user), nil
}

// UpdateAccount applies profile and credential changes. Changing the email,
// phone number or password requires the current password; a changed phone
// number drops the verified flag and triggers a fresh code.
func (s *AuthService) UpdateAccount(ctx context.Context, userID string, req models.UpdateAccountRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account payload")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	sensitive := req.NewPassword != "" ||
		(req.Email != "" && req.Email != user.Email) ||
		(req.PhoneNumber != "" && req.PhoneNumber != user.PhoneNumber)
	if sensitive {
		if req.CurrentPassword == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "current password is required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
		}
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" && req.Email != user.Email {
		if existing, err := s.repo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email is already in use")
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		user.Email = req.Email
	}

	phoneChanged := req.PhoneNumber != "" && req.PhoneNumber != user.PhoneNumber
	if phoneChanged {
		if existing, err := s.repo.FindByPhone(ctx, req.PhoneNumber); err == nil && existing != nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "phone number is already in use")
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check phone number")
		}
		user.PhoneNumber = req.PhoneNumber
		user.PhoneVerified = false
	}

	if req.NewPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account")
	}

	if phoneChanged {
		if err := s.otp.Issue(ctx, user.PhoneNumber); err != nil {
			s.logger.Warn("failed to issue verification code after phone change", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return userInfo(user), nil
}

func userInfo(user *models.User) *models.UserInfo {
	return &models.UserInfo{
		ID:            user.ID,
		Email:         user.Email,
		FullName:      user.FullName,
		PhoneNumber:   user.PhoneNumber,
		Role:          user.Role,
		PhoneVerified: user.PhoneVerified,
	}
}
