package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/ppdb-api/internal/models"
	"github.com/noah-isme/ppdb-api/pkg/config"
	appErrors "github.com/noah-isme/ppdb-api/pkg/errors"
)

type userRepoStub struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
	byPhone map[string]*models.User
	created []*models.User
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	stub := &userRepoStub{
		byID:    map[string]*models.User{},
		byEmail: map[string]*models.User{},
		byPhone: map[string]*models.User{},
	}
	for _, user := range users {
		stub.index(user)
	}
	return stub
}

func (s *userRepoStub) index(user *models.User) {
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	s.byPhone[user.PhoneNumber] = user
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	if user, ok := s.byPhone[phone]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	copied := *user
	s.created = append(s.created, &copied)
	s.index(&copied)
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	copied := *user
	s.index(&copied)
	return nil
}

type codeIssuerStub struct {
	issued []string
	err    error
}

func (s *codeIssuerStub) Issue(ctx context.Context, phone string) error {
	if s.err != nil {
		return s.err
	}
	s.issued = append(s.issued, phone)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterCreatesStudentAndIssuesCode(t *testing.T) {
	repo := newUserRepoStub()
	issuer := &codeIssuerStub{}
	svc := NewAuthService(repo, issuer, testJWTConfig(), validator.New(), nil)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:    "Budi Santoso",
		Email:       "budi@example.com",
		PhoneNumber: "628123456789",
		Password:    "rahasia1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, info.Role)
	assert.False(t, info.PhoneVerified)
	require.Len(t, repo.created, 1)
	assert.NotEqual(t, "rahasia1", repo.created[0].PasswordHash)
	assert.Equal(t, []string{"628123456789"}, issuer.issued)
}

func TestRegisterVerifiedPhoneConflicts(t *testing.T) {
	existing := &models.User{ID: "user-1", Email: "lama@example.com", PhoneNumber: "628123456789", PhoneVerified: true}
	repo := newUserRepoStub(existing)
	svc := NewAuthService(repo, &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:    "Budi Santoso",
		Email:       "budi@example.com",
		PhoneNumber: "628123456789",
		Password:    "rahasia1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterUnverifiedPhoneReissuesCode(t *testing.T) {
	existing := &models.User{ID: "user-1", Email: "lama@example.com", PhoneNumber: "628123456789"}
	repo := newUserRepoStub(existing)
	issuer := &codeIssuerStub{}
	svc := NewAuthService(repo, issuer, testJWTConfig(), validator.New(), nil)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:    "Budi Santoso",
		Email:       "budi@example.com",
		PhoneNumber: "628123456789",
		Password:    "rahasia1",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.ID, "no second account is created")
	assert.Empty(t, repo.created)
	assert.Equal(t, []string{"628123456789"}, issuer.issued)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	existing := &models.User{ID: "user-1", Email: "budi@example.com", PhoneNumber: "628999999999"}
	svc := NewAuthService(newUserRepoStub(existing), &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName:    "Budi Santoso",
		Email:       "budi@example.com",
		PhoneNumber: "628123456789",
		Password:    "rahasia1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginIssuesValidToken(t *testing.T) {
	user := &models.User{
		ID:           "user-1",
		Email:        "budi@example.com",
		PasswordHash: mustHash(t, "rahasia1"),
		FullName:     "Budi Santoso",
		PhoneNumber:  "628123456789",
		Role:         models.RoleStudent,
	}
	svc := NewAuthService(newUserRepoStub(user), &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "budi@example.com", Password: "rahasia1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "budi@example.com", PasswordHash: mustHash(t, "rahasia1")}
	svc := NewAuthService(newUserRepoStub(user), &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "budi@example.com", Password: "salah"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newUserRepoStub(), &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "rahasia1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(newUserRepoStub(), &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)
	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestUpdateAccountPasswordChangeNeedsCurrentPassword(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "budi@example.com", PasswordHash: mustHash(t, "rahasia1")}
	svc := NewAuthService(newUserRepoStub(user), &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)

	_, err := svc.UpdateAccount(context.Background(), "user-1", models.UpdateAccountRequest{NewPassword: "rahasia2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateAccount(context.Background(), "user-1", models.UpdateAccountRequest{
		CurrentPassword: "salah",
		NewPassword:     "rahasia2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestUpdateAccountPhoneChangeDropsVerification(t *testing.T) {
	user := &models.User{
		ID:            "user-1",
		Email:         "budi@example.com",
		PasswordHash:  mustHash(t, "rahasia1"),
		PhoneNumber:   "628111111111",
		PhoneVerified: true,
	}
	repo := newUserRepoStub(user)
	issuer := &codeIssuerStub{}
	svc := NewAuthService(repo, issuer, testJWTConfig(), validator.New(), nil)

	info, err := svc.UpdateAccount(context.Background(), "user-1", models.UpdateAccountRequest{
		PhoneNumber:     "628222222222",
		CurrentPassword: "rahasia1",
	})
	require.NoError(t, err)
	assert.Equal(t, "628222222222", info.PhoneNumber)
	assert.False(t, info.PhoneVerified)
	assert.Equal(t, []string{"628222222222"}, issuer.issued)
}

func TestUpdateAccountFullNameOnlyNeedsNoPassword(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "budi@example.com", PasswordHash: mustHash(t, "rahasia1"), FullName: "Budi"}
	svc := NewAuthService(newUserRepoStub(user), &codeIssuerStub{}, testJWTConfig(), validator.New(), nil)

	info, err := svc.UpdateAccount(context.Background(), "user-1", models.UpdateAccountRequest{FullName: "Budi Santoso"})
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", info.FullName)
}
