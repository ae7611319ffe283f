package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", "tradebinder", 15*time.Minute, 7*24*time.Hour)

	pair, err := tm.GeneratePair("user-1")
	require.NoError(t, err)

	claims, err := tm.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, TokenAccess, claims.Type)

	claims, err = tm.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestTokenManager_RejectsWrongKind(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", "tradebinder", time.Minute, time.Hour)
	pair, err := tm.GeneratePair("user-1")
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("a", "r", "tradebinder", time.Minute, time.Hour)
	issued := time.Now().Add(-2 * time.Minute)
	tm.now = func() time.Time { return issued }
	tok, _, err := tm.GenerateAccess("user-1")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	other := NewTokenManager("a", "r", "someone-else", time.Minute, time.Hour)
	tok, _, err := other.GenerateAccess("user-1")
	require.NoError(t, err)

	tm := NewTokenManager("a", "r", "tradebinder", time.Minute, time.Hour)
	_, err = tm.ParseAccess(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, PasswordMatches("secret123", hash))
	assert.False(t, PasswordMatches("wrong", hash))
	assert.False(t, PasswordMatches("secret123", "not-a-bcrypt-hash"))

	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "u1"})
	p, ok := PrincipalFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", p.UserID)
}
