// Package common defines shared constants and sentinel errors used across
// uniclip layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Credential verification errors.
	ErrorAccountNotFound     = errors.New("account not found")
	ErrorIncorrectCredential = errors.New("incorrect credential")
	ErrorPasswordRequired    = errors.New("password required to decrypt clipboard")

	// Clipboard errors.
	ErrorDecryptionFailed = errors.New("decryption failed")
	ErrorQuotaExceeded    = errors.New("clipboard quota exceeded")

	// ErrorStorage wraps any persistence failure. The underlying cause is
	// logged, never returned.
	ErrorStorage = errors.New("storage error")

	// Validation / sign-up errors.
	ErrorValidation    = errors.New("validation error")
	ErrorUsernameTaken = errors.New("username already taken")
	ErrorEmailTaken    = errors.New("email already registered")
)
