// Package common defines shared constants and sentinel errors used across
// gophvault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("email is already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Crypto errors.
	ErrInvalidKeySize      = errors.New("key must be 32 bytes")
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrMalformedHash       = errors.New("malformed password hash")
	ErrCredentialCorrupted = errors.New("credential unavailable")
)
