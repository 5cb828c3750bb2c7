// Package common defines shared constants and sentinel errors used across
// the cloudstore layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors (malformed or missing caller-supplied data).
	ErrorValidation = errors.New("validation error")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorMissingToken       = errors.New("missing auth token")
	ErrorInvalidToken       = errors.New("invalid or expired token")
	ErrorUsernameTaken      = errors.New("username is already taken")
	ErrorEmailTaken         = errors.New("email is already in use")

	// Filesystem-backed blob store errors.
	ErrorStorage = errors.New("storage error")
)
