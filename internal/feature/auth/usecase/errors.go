// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrInvalidCredentials is returned when the name/password pair is rejected.
	// The message does not reveal which of the two fields was wrong.
	ErrInvalidCredentials = errors.New("Name or Password is not valid")

	// ErrTokenIssue is returned when a token could not be signed.
	ErrTokenIssue = errors.New("failed to issue token")
)
