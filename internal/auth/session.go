// Package auth carries the authenticated caller through a request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleVisaSponsor Role = "Visa Sponsor"
	RoleInvestor    Role = "Investor"
	RoleAdmin       Role = "Admin"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Session identifies the caller of one request.
type Session struct {
	UserID string
	Role   Role
	Email  string
}

func (s Session) IsSponsor() bool {
	return s.Role == RoleVisaSponsor
}

// Claims is the JWT payload issued by the identity provider.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256-family token signed with secret and returns its session.
func ParseToken(tokenString, secret string) (Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || strings.TrimSpace(claims.UserID) == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: claims.UserID, Role: Role(claims.Role), Email: claims.Email}, nil
}

type contextKey string

const sessionCtxKey = contextKey("session")

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionCtxKey).(Session)
	return s, ok
}
