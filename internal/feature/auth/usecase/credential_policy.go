package usecase

import (
	"crypto/subtle"
	"os"
)

const (
	// EnvKeyAuthName overrides the accepted name.
	EnvKeyAuthName = "AUTH_NAME"
	// EnvKeyAuthPassword overrides the accepted password.
	EnvKeyAuthPassword = "AUTH_PASSWORD"

	defaultAuthName     = "admin"
	defaultAuthPassword = "admin"
)

// CredentialPolicy decides whether a name/password pair may obtain a token.
type CredentialPolicy interface {
	Verify(name, password string) error
}

// FixedCredentialPolicy accepts exactly one configured name/password pair.
type FixedCredentialPolicy struct {
	name     string
	password string
}

var _ CredentialPolicy = (*FixedCredentialPolicy)(nil)

// NewFixedCredentialPolicy creates a policy accepting only name/password.
func NewFixedCredentialPolicy(name, password string) *FixedCredentialPolicy {
	return &FixedCredentialPolicy{name: name, password: password}
}

// LoadCredentialPolicy builds the policy from AUTH_NAME and AUTH_PASSWORD,
// falling back to admin/admin.
func LoadCredentialPolicy() *FixedCredentialPolicy {
	name := os.Getenv(EnvKeyAuthName)
	if name == "" {
		name = defaultAuthName
	}
	password := os.Getenv(EnvKeyAuthPassword)
	if password == "" {
		password = defaultAuthPassword
	}
	return NewFixedCredentialPolicy(name, password)
}

// Verify reports ErrInvalidCredentials unless both values are non-empty and
// match the configured pair. Both comparisons always run.
func (p *FixedCredentialPolicy) Verify(name, password string) error {
	nameOK := subtle.ConstantTimeCompare([]byte(name), []byte(p.name))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(p.password))
	if name == "" || password == "" || nameOK&passOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
