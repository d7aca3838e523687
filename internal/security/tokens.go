package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenIssuer = "jugayaprende"

// TokenClaims identifies a signed-in host
type TokenClaims struct {
	UserID  int64
	TokenID string
	Expires time.Time
}

// TokenManager issues and verifies HS256 host tokens
type TokenManager struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewTokenManager creates a token manager; tokens live for duration
func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), duration: duration, now: time.Now}
}

// Issue signs a token for userID
func (m *TokenManager) Issue(userID int64) (string, TokenClaims, error) {
	now := m.now()
	claims := TokenClaims{
		UserID:  userID,
		TokenID: uuid.NewString(),
		Expires: now.Add(m.duration),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   strconv.FormatInt(userID, 10),
		ID:        claims.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(claims.Expires),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", TokenClaims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify parses a token and returns its claims
func (m *TokenManager) Verify(raw string) (TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	return TokenClaims{
		UserID:  userID,
		TokenID: claims.ID,
		Expires: claims.ExpiresAt.Time,
	}, nil
}
