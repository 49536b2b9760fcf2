package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "SP000000000000000000002Q6VF78"

func TestSessionTokenRoundTrip(t *testing.T) {
	issuer := NewSessionTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("wallet-session-1", testAddress)
	require.NoError(t, err)

	user, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testAddress, user.Sub)
	assert.Equal(t, "wallet-session-1", user.SessionID)
	assert.Greater(t, user.Exp, time.Now().Unix())
}

func TestValidateTokenWithInvalidSignature(t *testing.T) {
	token, err := NewSessionTokenIssuer("secret-a", time.Hour).Issue("s", testAddress)
	require.NoError(t, err)

	_, err = NewSessionTokenIssuer("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenWithExpiredToken(t *testing.T) {
	issuer := NewSessionTokenIssuer("test-secret", -time.Minute)
	token, err := issuer.Issue("s", testAddress)
	require.NoError(t, err)

	_, err = issuer.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{Issuer: sessionTokenIssuer, Subject: testAddress}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSessionTokenIssuer("test-secret", time.Hour).ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestValidateTokenWithoutSecret(t *testing.T) {
	_, err := NewSessionTokenIssuer("", time.Hour).ValidateToken("dummy.jwt.token")
	require.Error(t, err)
	assert.Equal(t, "session token secret not configured", err.Error())
}

func TestAuthenticatedUserContext(t *testing.T) {
	_, err := GetAuthenticatedUser(context.Background())
	assert.Error(t, err)

	ctx := WithAuthenticatedUser(context.Background(), &AuthenticatedUser{Sub: testAddress})
	user, err := GetAuthenticatedUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAddress, user.Sub)
}
