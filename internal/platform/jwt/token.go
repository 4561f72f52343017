// Package jwtmw issues and verifies HS256 bearer tokens and provides the Gin
// middleware that guards authenticated routes.
package jwtmw

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// EnvKeyJWTSecret is the single configuration point for the signing key.
	EnvKeyJWTSecret = "JWT_SECRET"
	// EnvKeyJWTTTL overrides the token lifetime (Go duration syntax, e.g. "30m").
	EnvKeyJWTTTL = "JWT_TTL"
	// DefaultTTL is the token lifetime when none is configured.
	DefaultTTL = time.Hour
)

var (
	// ErrInvalidToken is returned for every token that fails verification:
	// bad signature, malformed structure, unexpected algorithm or expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned when signing is attempted without a key.
	ErrEmptySecret = errors.New("jwt secret is not configured")
)

// Config holds the token service settings.
type Config struct {
	Secret string
	TTL    time.Duration
}

// LoadConfig reads the token settings from environment variables.
func LoadConfig() Config {
	ttl := DefaultTTL
	if v := os.Getenv(EnvKeyJWTTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		}
	}
	return Config{
		Secret: os.Getenv(EnvKeyJWTSecret),
		TTL:    ttl,
	}
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
	ID        string
	// Raw holds every claim as decoded, including custom ones.
	Raw map[string]any
}

// Service signs and verifies tokens with a process-wide symmetric key.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a Service. A non-positive ttl falls back to DefaultTTL.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the default token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs claims with the default lifetime.
func (s *Service) Issue(claims map[string]any) (string, error) {
	return s.IssueWithTTL(claims, s.ttl)
}

// IssueWithTTL copies claims, adds exp, iat and jti, and signs the result.
// The caller's map is not modified.
func (s *Service) IssueWithTTL(claims map[string]any, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrEmptySecret
	}

	now := s.now()
	mc := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		mc[k] = v
	}
	mc["exp"] = now.Add(ttl).Unix()
	mc["iat"] = now.Unix()
	mc["jti"] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenStr and decodes its claims.
// Every failure is reported as ErrInvalidToken.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrInvalidToken
	}

	mc := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, mc, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &Claims{Raw: map[string]any(mc)}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if name, ok := mc["name"].(string); ok {
		claims.Subject = name
	} else if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if jti, ok := mc["jti"].(string); ok {
		claims.ID = jti
	}
	return claims, nil
}
