// Package auth issues the session tokens that label a caller with a role and,
// for customers, a table. Tokens identify; they do not grant or deny access.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/enum"
)

// SessionTTL covers one service shift.
const SessionTTL = 12 * time.Hour

var (
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidTable = errors.New("customer sessions need a table number > 0")
)

type Claims struct {
	SessionID   uuid.UUID `json:"session_id"`
	Role        string    `json:"role"`
	TableNumber int       `json:"table_number,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session label. Customers must name their
// table; staff sessions ignore table.
func GenerateSessionToken(secret, role string, table int) (string, *Claims, error) {
	if !enum.IsValidRole(role) {
		return "", nil, fmt.Errorf("%q: %w", role, ErrInvalidRole)
	}
	if role == enum.RoleCustomer && table <= 0 {
		return "", nil, ErrInvalidTable
	}
	if role != enum.RoleCustomer {
		table = 0
	}

	now := time.Now()
	claims := &Claims{
		SessionID:   uuid.New(),
		Role:        role,
		TableNumber: table,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
