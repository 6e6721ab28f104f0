package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/auth"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "lostfound-test"
)

func signClaims(t *testing.T, key string, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func TestIssueAndVerify(t *testing.T) {
	iss := auth.NewIssuer(testKey, testIssuer, time.Hour)

	tok, err := iss.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyMalformed(t *testing.T) {
	iss := auth.NewIssuer(testKey, testIssuer, time.Hour)

	_, err := iss.Verify("definitely-not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}

func TestVerifyWrongKey(t *testing.T) {
	other := auth.NewIssuer("some-other-key", testIssuer, time.Hour)
	tok, err := other.Issue("user-1")
	require.NoError(t, err)

	iss := auth.NewIssuer(testKey, testIssuer, time.Hour)
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	tok := signClaims(t, testKey, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
	})

	iss := auth.NewIssuer(testKey, testIssuer, time.Hour)
	_, err := iss.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestVerifyIssuerMismatch(t *testing.T) {
	tok := signClaims(t, testKey, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	iss := auth.NewIssuer(testKey, testIssuer, time.Hour)
	_, err := iss.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestVerifyMissingSubject(t *testing.T) {
	tok := signClaims(t, testKey, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	iss := auth.NewIssuer(testKey, testIssuer, time.Hour)
	_, err := iss.Verify(tok)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}
