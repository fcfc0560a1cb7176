package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)

	token, err := ti.GenerateToken(7, "Asha", "cashier")
	require.NoError(t, err)

	claims, err := ti.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "cashier", claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := other.GenerateToken(1, "Ravi", "admin")
	require.NoError(t, err)

	_, err = ti.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ti.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenIssuer("test-secret", -time.Hour)
	expired.ttl = -time.Minute
	token, err = expired.GenerateToken(1, "Ravi", "admin")
	require.NoError(t, err)
	_, err = ti.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeToken(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	token, err := ti.GenerateToken(3, "Meena", "kitchen")
	require.NoError(t, err)

	require.NoError(t, ti.Revoke(token))
	_, err = ti.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// token yang sudah dicabut tidak bisa dicabut lagi
	assert.ErrorIs(t, ti.Revoke(token), ErrInvalidToken)
}

func TestBlacklistForgetsExpiredTokens(t *testing.T) {
	b := NewTokenBlacklist()
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.Add("a", now.Add(time.Minute))
	b.Add("b", now.Add(time.Hour))
	assert.True(t, b.Contains("a"))

	now = now.Add(2 * time.Minute)
	assert.False(t, b.Contains("a"))
	assert.True(t, b.Contains("b"))
	assert.Equal(t, 1, b.Len())
}
