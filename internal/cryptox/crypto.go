// Package cryptox holds the primitives behind uniclip's credential scheme:
// a one-way verification hash for the server-side comparison, and an
// argon2id + AES-GCM pair used to seal clipboard payloads with a key
// derived from the user's password.
//
// The password itself, not its verification hash, is the key material for
// payload encryption. A hash cannot be turned back into a key, so whoever
// wants to decrypt must hold the plaintext password for the whole session.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/dmitrijs2005/uniclip/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the size of the per-blob argon2 salt.
	SaltSize = 16
	// KeySize selects AES-256.
	KeySize = 32
)

// ErrOpen is returned when a sealed message cannot be authenticated.
var ErrOpen = errors.New("cryptox: message authentication failed")

// VerificationHash returns the lowercase hex SHA-256 digest of the UTF-8
// bytes of password. It is the value stored and compared server-side.
func VerificationHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DeriveKey stretches secret into a KeySize-byte AES key with argon2id.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext with AES-GCM under key and returns the random
// nonce and the ciphertext separately.
func Seal(plaintext, key []byte) (nonce, ciphertext []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aead.NonceSize())
	ciphertext = aead.Seal(nil, nonce, plaintext, nil)

	return nonce, ciphertext, nil
}

// Open reverses Seal. A wrong key or tampered ciphertext yields ErrOpen.
func Open(nonce, ciphertext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, ErrOpen
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}

// NonceSize is the GCM nonce length used by Seal.
func NonceSize() int {
	return 12
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
