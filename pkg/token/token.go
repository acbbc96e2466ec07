package token

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleType realm role carried in the bearer token
type RoleType string

const (
	// RoleAdmin is the admin role
	RoleAdmin RoleType = "ADMIN"
	// RoleTeacher is the teacher role
	RoleTeacher RoleType = "TEACHER"
	// RoleStudent is the student role
	RoleStudent RoleType = "STUDENT"
)

// RealmAccess identity provider role claim
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// Claims structure of the identity provider access token
type Claims struct {
	PreferredUsername string      `json:"preferred_username,omitempty"`
	Email             string      `json:"email,omitempty"`
	RealmAccess       RealmAccess `json:"realm_access"`
	jwt.RegisteredClaims
}

// ErrNoExpiry token without exp claim
var ErrNoExpiry = errors.New("token has no expiration")

// ParseJWTFunc 測試時可覆蓋
var ParseJWTFunc = ParseJWT

// ParseJWT read the claims of an access token.
// The signature is checked by the backend, the client only needs subject, roles and expiry.
func ParseJWT(tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))
	if tokenStr == "" {
		return nil, errors.New("empty token")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// CheckJWTNotExpire check claims not expire at now
func CheckJWTNotExpire(claims *Claims, now time.Time) (bool, error) {
	if claims == nil {
		return false, errors.New("invalid token")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false, err
	}
	if exp == nil {
		return false, ErrNoExpiry
	}
	return now.Before(exp.Time), nil
}

// HasRole check realm role, case-insensitive
func (c *Claims) HasRole(role RoleType) bool {
	return slices.ContainsFunc(c.RealmAccess.Roles, func(r string) bool {
		return strings.EqualFold(r, string(role))
	})
}

// GenerateJWT sign a token for local runs and tests
func GenerateJWT(subject string, roles []string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		PreferredUsername: subject,
		RealmAccess:       RealmAccess{Roles: roles},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
