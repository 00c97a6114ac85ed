package auth

import (
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"errors"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "auction-marketplace"

// Claims are the fields carried by a bearer token
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 bearer tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenManager creates a TokenManager. Tokens expire ttl after issue.
func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
	}
}

// GenerateToken issues a token for user
func (m *TokenManager) GenerateToken(user models.User) (string, error) {
	if user.UserID == "" {
		return "", fmt.Errorf("auth: %w - missing user ID", biddingerrors.ErrInvalidUser)
	}

	now := m.clock.Now()
	claims := &Claims{
		UserID: user.UserID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of tokenString and returns its claims
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: %w - token expired", biddingerrors.ErrInvalidToken)
		}
		return nil, fmt.Errorf("auth: %w - %v", biddingerrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("auth: %w - malformed claims", biddingerrors.ErrInvalidToken)
	}
	return claims, nil
}
