package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/config"
	"github.com/ecocampus/complaint-service/internal/domain"
	"github.com/ecocampus/complaint-service/internal/repository"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

func newAuthService() *AuthService {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, repository.NewMemoryStore().Users())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, token, expiresAt, err := svc.Register(ctx, "Dana", "Dana@Campus.Test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "dana@campus.test", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	loggedIn, token, _, err := svc.Login(ctx, "dana@campus.test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Dana", "dana@campus.test", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Other Dana", "DANA@campus.test", "different")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Dana", "dana@campus.test", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "dana@campus.test", "wrong")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, _, _, err = svc.Login(ctx, "nobody@campus.test", "hunter22")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newAuthService()

	user, token, _, err := svc.Register(context.Background(), "Dana", "dana@campus.test", "hunter22")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}
