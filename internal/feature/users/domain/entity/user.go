// Package entity defines the domain entities for the users feature.
package entity

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the minimum length of a plaintext password.
	MinPasswordLength = 6
	// MinAge and MaxAge bound the accepted age (inclusive).
	MinAge = 18
	MaxAge = 100
)

// emailPattern accepts a simple local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validation errors returned by the constructor and the setters.
var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrAgeOutOfRange    = fmt.Errorf("age must be between %d and %d", MinAge, MaxAge)
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
)

// User represents a registered user.
// Password holds the bcrypt hash once the user has been persisted.
type User struct {
	ID        uint
	Name      string
	Email     string
	Password  string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds a User after validating every field.
// The password is kept as given; callers replace it with a hash before persisting.
func NewUser(name, email, password string, age int) (*User, error) {
	u := &User{}
	if err := u.SetName(name); err != nil {
		return nil, err
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := u.SetAge(age); err != nil {
		return nil, err
	}
	u.Password = password
	return u, nil
}

// SetName assigns the name if it is non-empty.
func (u *User) SetName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	u.Name = name
	return nil
}

// SetEmail assigns the email if it matches local@domain.tld.
func (u *User) SetEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// SetAge assigns the age if it lies in [MinAge, MaxAge].
func (u *User) SetAge(age int) error {
	if age < MinAge || age > MaxAge {
		return ErrAgeOutOfRange
	}
	u.Age = age
	return nil
}

// ValidatePassword checks a plaintext password before it is hashed.
// Length is counted in characters, not bytes.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// SameCredentials reports whether both users carry identical name, email,
// password hash and age. The ID is ignored.
func (u *User) SameCredentials(other *User) bool {
	return u.Name == other.Name &&
		u.Email == other.Email &&
		u.Password == other.Password &&
		u.Age == other.Age
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	c := *u
	return &c
}
