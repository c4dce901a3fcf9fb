package domain

import "errors"

var (
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken covers malformed, tampered and expired tokens alike.
	ErrInvalidToken    = errors.New("invalid token")
	ErrNotFound        = errors.New("not found")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidSeverity = errors.New("invalid severity level")
	ErrValidation      = errors.New("validation failed")
)
