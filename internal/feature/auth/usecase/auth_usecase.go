package usecase

import (
	"context"
	"fmt"
)

// TokenIssuer signs a claims map into a bearer token.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (platform/jwt).
type TokenIssuer interface {
	Issue(claims map[string]any) (string, error)
}

// authUsecase exchanges a credential pair for a signed token.
type authUsecase struct {
	policy CredentialPolicy
	issuer TokenIssuer
}

// NewAuthUsecase creates a new authUsecase.
func NewAuthUsecase(policy CredentialPolicy, issuer TokenIssuer) *authUsecase {
	return &authUsecase{
		policy: policy,
		issuer: issuer,
	}
}

// IssueToken verifies name/password against the policy and returns a token
// whose payload carries the name. The issuer adds the expiry.
func (u *authUsecase) IssueToken(_ context.Context, name, password string) (string, error) {
	if err := u.policy.Verify(name, password); err != nil {
		return "", err
	}

	token, err := u.issuer.Issue(map[string]any{
		"name": name,
		"sub":  name,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}
	return token, nil
}
