// Package models defines the domain records shared by repositories,
// services, and the session layer.
package models

import "time"

// Account is the identity record of a clipboard owner.
type Account struct {
	ID               string
	Username         string
	Email            string
	VerificationHash string
	// ClipboardCount mirrors the number of clipboards owned by the account.
	ClipboardCount int
	CreatedAt      time.Time
}

// LoginType selects which account column an identifier is matched against.
type LoginType string

const (
	LoginTypeUsername LoginType = "username"
	LoginTypeEmail    LoginType = "email"
)

// Valid reports whether t is a known login type.
func (t LoginType) Valid() bool {
	return t == LoginTypeUsername || t == LoginTypeEmail
}

// Identity is what a successful credential verification yields.
type Identity struct {
	AccountID      string
	Username       string
	ClipboardCount int
	// EncryptionKey is the plaintext password. Empty when only a hashed
	// credential was supplied.
	EncryptionKey string
	// NeedsPassword is set when the caller authenticated with a hash and
	// must re-enter the password before any clipboard can be decrypted.
	NeedsPassword bool
}
