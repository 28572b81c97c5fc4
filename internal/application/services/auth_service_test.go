package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

func newAuthService(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return NewAuthService(config.AuthConfig{
		PasswordHash: string(hash),
		JWTSecret:    "test-secret",
		ExpiresIn:    time.Hour,
		Issuer:       "daybook-test",
	}, logger.NewNop())
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t, "hunter2")

	response, err := svc.Login(context.Background(), ports.LoginRequest{Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, response.Token)
	assert.True(t, response.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t, "hunter2")

	_, err := svc.Login(context.Background(), ports.LoginRequest{Password: "hunter3"})
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestLoginUnconfigured(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{JWTSecret: "test-secret"}, logger.NewNop())

	_, err := svc.Login(context.Background(), ports.LoginRequest{Password: "anything"})
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestValidateToken(t *testing.T) {
	svc := newAuthService(t, "hunter2")

	response, err := svc.IssueToken(time.Now())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(response.Token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Subject)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := newAuthService(t, "hunter2")
	response, err := issuer.IssueToken(time.Now())
	require.NoError(t, err)

	verifier := NewAuthService(config.AuthConfig{
		JWTSecret: "different-secret",
		ExpiresIn: time.Hour,
	}, logger.NewNop())

	_, err = verifier.ValidateToken(response.Token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newAuthService(t, "hunter2")

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
