package models

// SessionToken is the bundle a client keeps to re-authenticate silently.
// When CredentialIsHashed is false, Credential is the plaintext password and
// therefore key material.
type SessionToken struct {
	Identifier         string
	Credential         string
	CredentialIsHashed bool
	LoginType          LoginType
}
