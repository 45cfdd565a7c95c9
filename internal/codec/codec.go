// Package codec turns an ordered list of text sections into an encrypted
// blob and back.
//
// Blob layout:
//
//	version (1 byte) | argon2 salt (16) | GCM nonce (12) | ciphertext
//
// The plaintext is a JSON array of {"content": "..."} objects. Section IDs
// are not part of it; Decrypt mints fresh ones.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/cryptox"
	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/google/uuid"
)

const version byte = 1

var headerSize = 1 + cryptox.SaltSize + cryptox.NonceSize()

type section struct {
	Content string `json:"content"`
}

// Encrypt serializes sections in order and seals them under a key derived
// from key. Two calls with the same input produce different blobs.
func Encrypt(sections []models.TextSection, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty encryption key", common.ErrorValidation)
	}

	payload := make([]section, len(sections))
	for i, s := range sections {
		payload[i] = section{Content: s.Content}
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	aesKey := cryptox.DeriveKey([]byte(key), salt)
	defer common.WipeByteArray(aesKey)

	nonce, ciphertext, err := cryptox.Seal(plaintext, aesKey)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, headerSize+len(ciphertext))
	blob = append(blob, version)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return blob, nil
}

// Decrypt opens blob with key. Any failure, including a plaintext that does
// not parse as a section list, is reported as common.ErrorDecryptionFailed.
func Decrypt(blob []byte, key string) ([]models.TextSection, error) {
	if key == "" || len(blob) <= headerSize || blob[0] != version {
		return nil, common.ErrorDecryptionFailed
	}

	salt := blob[1 : 1+cryptox.SaltSize]
	nonce := blob[1+cryptox.SaltSize : headerSize]
	ciphertext := blob[headerSize:]

	aesKey := cryptox.DeriveKey([]byte(key), salt)
	defer common.WipeByteArray(aesKey)

	plaintext, err := cryptox.Open(nonce, ciphertext, aesKey)
	if err != nil {
		return nil, common.ErrorDecryptionFailed
	}

	var payload []section
	dec := json.NewDecoder(bytes.NewReader(plaintext))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return nil, common.ErrorDecryptionFailed
	}

	sections := make([]models.TextSection, len(payload))
	for i, s := range payload {
		sections[i] = models.TextSection{ID: uuid.NewString(), Content: s.Content}
	}
	return sections, nil
}

// NewSection returns an empty section with a fresh ID.
func NewSection() models.TextSection {
	return models.TextSection{ID: uuid.NewString()}
}
