package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newIssuer(t *testing.T, now time.Time) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, "inkwell", time.Hour)
	require.NoError(t, err)
	return issuer.WithClock(func() time.Time { return now })
}

func TestNewTokenIssuer_RejectsWeakConfig(t *testing.T) {
	_, err := NewTokenIssuer("short", "inkwell", 0)
	assert.Error(t, err)

	_, err = NewTokenIssuer(testSecret, " ", 0)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer(testSecret, "inkwell", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, issuer.ttl)
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := newIssuer(t, now)

	token, err := issuer.Issue("u1", "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)

	sub, err := issuer.VerifySubject("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)
}

func TestVerify_Expired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := newIssuer(t, now).Issue("u1", "Alice", "")
	require.NoError(t, err)

	_, err = newIssuer(t, now.Add(2*time.Hour)).Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestVerify_WrongSecret(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := newIssuer(t, now).Issue("u1", "Alice", "")
	require.NoError(t, err)

	other, err := NewTokenIssuer("ffffffffffffffffffffffffffffffff", "inkwell", time.Hour)
	require.NoError(t, err)
	_, err = other.WithClock(func() time.Time { return now }).Verify(token)
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token, err := newIssuer(t, now).Issue("u1", "Alice", "")
	require.NoError(t, err)

	other, err := NewTokenIssuer(testSecret, "someone-else", time.Hour)
	require.NoError(t, err)
	_, err = other.WithClock(func() time.Time { return now }).Verify(token)
	assert.Error(t, err)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "inkwell"}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newIssuer(t, time.Now()).Verify(unsigned)
	assert.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	issuer := newIssuer(t, time.Now())
	for _, token := range []string{"", "Bearer ", "not-a-jwt", "a.b.c"} {
		_, err := issuer.Verify(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestIssue_RequiresSubject(t *testing.T) {
	_, err := newIssuer(t, time.Now()).Issue("", "Alice", "")
	assert.Error(t, err)
}
