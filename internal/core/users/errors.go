package users

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when the account does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when signing up with an email already in use
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when the email/password pair does not match.
	// It does not reveal which of the two was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// InvalidEmailError is returned when an email address is malformed
type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email: %s", e.Email)
}

// WeakPasswordError is returned when a password does not meet the minimum length
type WeakPasswordError struct {
	MinLength int
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("password must be at least %d characters", e.MinLength)
}

// InvalidUsernameError is returned when the display name is blank or too long
type InvalidUsernameError struct {
	Reason string
}

func (e *InvalidUsernameError) Error() string {
	return fmt.Sprintf("invalid username: %s", e.Reason)
}

// AuthError represents an invalid or expired session
type AuthError struct {
	Err    error
	Reason string
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new auth error
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

// IsAuthError checks if error is an auth error
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsValidationError reports whether err rejects the caller's input
func IsValidationError(err error) bool {
	var emailErr *InvalidEmailError
	var passErr *WeakPasswordError
	var nameErr *InvalidUsernameError
	return errors.As(err, &emailErr) || errors.As(err, &passErr) || errors.As(err, &nameErr)
}
