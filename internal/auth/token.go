package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// TokenSigner issues and verifies session tokens. The token id is the session id.
type TokenSigner struct {
	secret []byte
}

// NewTokenSigner returns a signer using HMAC-SHA256 with secret.
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// Sign returns a token for the session.
func (s *TokenSigner) Sign(sessionID, accountID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the token and returns its session and account ids.
func (s *TokenSigner) Parse(token string) (sessionID, accountID string, err error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return claims.ID, claims.Subject, nil
}
