// Package usecase implements the business logic for the users feature.
package usecase

import (
	"errors"
	"fmt"

	"user_backend/internal/feature/users/domain/entity"
)

var (
	// ErrUserNotFound is returned by repositories when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEntry is matched by DuplicateEntryError via errors.Is.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Reasons surfaced to callers as the envelope error text.
const (
	ReasonUserNotFound    = "User Not Found"
	ReasonEmailExists     = "Email already exists"
	ReasonSameCredentials = "Same Credentials"
	ReasonDuplicateEntry  = "Duplicate entry"
	ReasonInternal        = "internal server error"
)

// DuplicateEntryError reports a uniqueness violation raised by the store.
// Detail is a short, human readable description parsed from the engine diagnostic.
type DuplicateEntryError struct {
	Detail string
	Err    error
}

func (e *DuplicateEntryError) Error() string {
	if e.Detail == "" {
		return ReasonDuplicateEntry
	}
	return e.Detail
}

func (e *DuplicateEntryError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDuplicateEntry) match any DuplicateEntryError.
func (e *DuplicateEntryError) Is(target error) bool { return target == ErrDuplicateEntry }

// Kind classifies a pipeline failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindStore
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Failure is the error value every pipeline operation returns when it does not succeed.
// Reason is safe to show to callers; Context optionally carries the user the
// operation was attempted on.
type Failure struct {
	Kind    Kind
	Reason  string
	Context *entity.User
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil && f.Err.Error() != f.Reason {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

func validationFailure(err error) *Failure {
	return &Failure{Kind: KindValidation, Reason: err.Error(), Err: err}
}

func notFoundFailure() *Failure {
	return &Failure{Kind: KindNotFound, Reason: ReasonUserNotFound, Err: ErrUserNotFound}
}

func internalFailure(err error) *Failure {
	return &Failure{Kind: KindInternal, Reason: ReasonInternal, Err: err}
}

// storeFailure classifies a repository error. Uniqueness violations become
// conflicts carrying the parsed detail, everything else keeps the store text.
func storeFailure(err error, ctx *entity.User) *Failure {
	var dup *DuplicateEntryError
	if errors.As(err, &dup) {
		return &Failure{Kind: KindConflict, Reason: dup.Error(), Context: ctx, Err: err}
	}
	return &Failure{Kind: KindStore, Reason: err.Error(), Context: ctx, Err: err}
}
