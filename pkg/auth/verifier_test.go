package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		UserID: "user-1",
		Email:  "user@example.com",
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "sitewise-backend",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestNewTokenVerifier_RequiresSecret(t *testing.T) {
	_, err := NewTokenVerifier("", "issuer")
	assert.Error(t, err)
}

func TestVerify_ValidToken(t *testing.T) {
	// Arrange
	verifier, err := NewTokenVerifier(testSecret, "sitewise-backend")
	require.NoError(t, err)
	token := signToken(t, testSecret, validClaims())

	// Act
	claims, err := verifier.Verify(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerify_BearerPrefixStripped(t *testing.T) {
	// Arrange
	verifier, err := NewTokenVerifier(testSecret, "sitewise-backend")
	require.NoError(t, err)
	token := signToken(t, testSecret, validClaims())

	// Act
	claims, err := verifier.Verify("Bearer " + token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestVerify_EmptyToken(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, "")
	require.NoError(t, err)

	_, err = verifier.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	// Arrange
	verifier, err := NewTokenVerifier(testSecret, "sitewise-backend")
	require.NoError(t, err)

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signToken(t, testSecret, claims)

	// Act
	_, err = verifier.Verify(token)

	// Assert
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	// Arrange
	verifier, err := NewTokenVerifier(testSecret, "sitewise-backend")
	require.NoError(t, err)
	token := signToken(t, "other-secret", validClaims())

	// Act
	_, err = verifier.Verify(token)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_WrongIssuer(t *testing.T) {
	// Arrange
	verifier, err := NewTokenVerifier(testSecret, "sitewise-backend")
	require.NoError(t, err)

	claims := validClaims()
	claims.Issuer = "someone-else"
	token := signToken(t, testSecret, claims)

	// Act
	_, err = verifier.Verify(token)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestVerify_MissingSubject(t *testing.T) {
	// Arrange
	verifier, err := NewTokenVerifier(testSecret, "sitewise-backend")
	require.NoError(t, err)

	claims := validClaims()
	claims.UserID = ""
	claims.Subject = ""
	token := signToken(t, testSecret, claims)

	// Act
	_, err = verifier.Verify(token)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestVerify_Garbage(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, "")
	require.NoError(t, err)

	_, err = verifier.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
