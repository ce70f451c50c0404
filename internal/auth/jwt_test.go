// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/revue/internal/config"
	"github.com/angelamos/revue/internal/core"
)

func newTestJWTManager(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	m, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privatePath,
		PublicKeyPath:     publicPath,
		AccessTokenExpire: expire,
		Issuer:            "revue",
		Audience:          "revue-api",
	})
	require.NoError(t, err)

	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)

	const accountID = "5d9f2f30-1f3e-4a0d-9c8e-000000000001"

	token, err := m.CreateAccessToken(accountID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, accountID, subject,
		"the token carries only the account ID; roles live in the database")
}

func TestAccessTokenExpired(t *testing.T) {
	m := newTestJWTManager(t, -time.Minute)

	token, err := m.CreateAccessToken("some-id")
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrTokenExpired))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)

	_, err := m.VerifyAccessToken(context.Background(), "not.a.token")
	assert.Error(t, err)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	issuer := newTestJWTManager(t, time.Hour)
	verifier := newTestJWTManager(t, time.Hour)

	token, err := issuer.CreateAccessToken("some-id")
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), token)
	assert.Error(t, err, "tokens signed with another key must not verify")
}

func TestKeyIDAssigned(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	assert.NotEmpty(t, m.GetKeyID())
}
