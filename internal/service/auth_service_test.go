package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(expiry time.Duration) *AuthService {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  expiry,
		BcryptCost: bcrypt.MinCost,
	}
	// Admin tokens never touch Redis, so nil is fine here.
	return NewAuthService(cfg, nil)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	s := newTestAuthService(time.Hour)

	hash, err := s.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, s.CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, s.CheckPassword(hash, "wrong-password"), ErrInvalidCredentials)
}

func TestAdminTokenRoundTrip(t *testing.T) {
	s := newTestAuthService(time.Hour)
	admin := &model.User{ID: uuid.New(), Email: "boss@example.com", Role: model.RoleAdmin}

	token, err := s.GenerateToken(context.Background(), admin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAdmin, claims.TokenType)
	assert.Equal(t, admin.ID, claims.UserID)
	assert.Equal(t, admin.ID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := newTestAuthService(-time.Minute)
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	token, err := s.GenerateToken(context.Background(), admin)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	s := newTestAuthService(time.Hour)
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	token, err := s.GenerateToken(context.Background(), admin)
	require.NoError(t, err)

	other := NewAuthService(&config.Config{JWTSecret: "different-secret", JWTExpiry: time.Hour}, nil)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	s := newTestAuthService(time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenType: TokenTypeAdmin,
		UserID:    uuid.New(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	s := newTestAuthService(time.Hour)

	_, err := s.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
