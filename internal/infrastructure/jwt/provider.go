package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Santiago1809/auth-ms/internal/config"
	"github.com/Santiago1809/auth-ms/internal/domain"
)

// ResetPurpose is the only purpose accepted on password-reset tokens.
const ResetPurpose = "password-reset"

// SessionClaims is the signed session token payload.
type SessionClaims struct {
	Username string  `json:"username"`
	Role     string  `json:"role"`
	UserID   *string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// ResetClaims is the purpose-bound password-reset token payload.
type ResetClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session and password-reset tokens.
type Provider struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return &Provider{
		secret:     []byte(cfg.JWTSecret),
		sessionTTL: cfg.SessionTokenTTL(),
		resetTTL:   cfg.ResetTokenTTL(),
	}, nil
}

// SignSession issues a session token for the user. userID may be nil for
// flows that only carry username and role.
func (p *Provider) SignSession(username, role string, userID *string) (string, error) {
	claims := SessionClaims{
		Username: username,
		Role:     role,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// VerifySession validates the signature and expiry of a session token.
func (p *Provider) VerifySession(tokenStr string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := p.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// SignReset issues a short-lived token authorizing a password change for the
// given email.
func (p *Provider) SignReset(email string) (string, error) {
	claims := ResetClaims{
		Email:   email,
		Purpose: ResetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// VerifyReset validates a password-reset token. A purpose mismatch is
// rejected even when the signature is valid: a session token must never
// authorize a password change.
func (p *Provider) VerifyReset(tokenStr string) (*ResetClaims, error) {
	var claims ResetClaims
	if err := p.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.Purpose != ResetPurpose {
		return nil, fmt.Errorf("token purpose mismatch: %w", domain.ErrForbidden)
	}
	return &claims, nil
}

func (p *Provider) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid token: %v: %w", err, domain.ErrUnauthorized)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	return nil
}
