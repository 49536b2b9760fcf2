package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const sessionTokenIssuer = "starpass-mcp"

type contextKey string

const authenticatedUserKey contextKey = "authenticated_user"

// AuthenticatedUser is the wallet principal a session token was issued to.
type AuthenticatedUser struct {
	// Sub is the user's Stacks address.
	Sub       string `json:"sub"`
	SessionID string `json:"sid"`
	Exp       int64  `json:"exp"`
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokenIssuer signs and validates HS256 tokens for signed-in wallets.
type SessionTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionTokenIssuer(secret string, ttl time.Duration) *SessionTokenIssuer {
	return &SessionTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a token binding the wallet session to the signed-in address.
func (i *SessionTokenIssuer) Issue(sessionID, address string) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("session token secret not configured")
	}
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionTokenIssuer,
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, issuer and expiry and returns the user.
func (i *SessionTokenIssuer) ValidateToken(tokenString string) (*AuthenticatedUser, error) {
	if len(i.secret) == 0 {
		return nil, errors.New("session token secret not configured")
	}
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	if claims.Issuer != sessionTokenIssuer {
		return nil, fmt.Errorf("unexpected token issuer %q", claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, errors.New("session token has no subject")
	}

	user := &AuthenticatedUser{Sub: claims.Subject, SessionID: claims.SessionID}
	if claims.ExpiresAt != nil {
		user.Exp = claims.ExpiresAt.Unix()
	}
	return user, nil
}

// WithAuthenticatedUser stores the user in the context.
func WithAuthenticatedUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authenticatedUserKey, user)
}

// GetAuthenticatedUser returns the user stored by WithAuthenticatedUser.
func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, error) {
	user, ok := ctx.Value(authenticatedUserKey).(*AuthenticatedUser)
	if !ok || user == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return user, nil
}
