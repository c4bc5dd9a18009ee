package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// sessionClaims is the token payload. Username is the only application claim.
type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies HS256 session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionIssuer returns an issuer for secret. A ttl of zero issues tokens
// without an expiry.
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), ttl: ttl}
}

func (s *SessionIssuer) Issue(username string) (string, error) {
	claims := sessionClaims{Username: username}
	if s.ttl > 0 {
		now := time.Now()
		claims.IssuedAt = jwt.NewNumericDate(now)
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the username carried by token, or domain.ErrInvalidToken.
// Segments are decoded strictly: any change to the signature text is rejected,
// including the padding bits of its last character.
func (s *SessionIssuer) Verify(token string) (string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithStrictDecoding())
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Username == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Username, nil
}
