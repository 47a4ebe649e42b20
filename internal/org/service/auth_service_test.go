package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oticonnect/backend/internal/config"
	"github.com/oticonnect/backend/internal/org/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "refresh-test-secret"

func newTestAuthService() *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = testJWTSecret
	cfg.JWT.AccessTokenExpire = 15 * time.Minute
	cfg.JWT.RefreshTokenExpire = 24 * time.Hour
	cfg.JWT.Issuer = "oticonnect"
	return NewAuthService(nil, nil, cfg)
}

func refreshClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"typ": "refresh",
		"jti": "jti-1",
		"uid": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

func TestRefreshRejectsUnsignedToken(t *testing.T) {
	svc := newTestAuthService()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, refreshClaims())
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), unsigned)
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)
}

func TestRefreshRejectsWrongSecret(t *testing.T) {
	svc := newTestAuthService()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims())
	forged, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), forged)
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newTestAuthService()

	claims := refreshClaims()
	claims["typ"] = "access"
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)
}
