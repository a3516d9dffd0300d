// README: JWT issuing and verification for the identity gate.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ridehub/internal/types"
)

const issuer = "ridehub"

var (
	ErrInvalidToken = errors.New("invalid token")
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier resolves a raw bearer credential to a caller identity.
type Verifier interface {
	Verify(token string) (types.Identity, error)
}

// TokenManager issues and verifies HS256 tokens carrying {subject id, role}.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(userID types.ID, role types.Role) (string, error) {
	now := time.Now()
	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *TokenManager) Verify(token string) (types.Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return types.Identity{}, ErrInvalidToken
	}
	role := types.Role(c.Role)
	if c.Subject == "" || !role.Valid() {
		return types.Identity{}, ErrInvalidToken
	}
	return types.Identity{UserID: types.ID(c.Subject), Role: role}, nil
}
