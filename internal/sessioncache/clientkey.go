package sessioncache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dmitrijs2005/uniclip/internal/common"
)

// ClientKeySize is the length of the random per-client key.
const ClientKeySize = 32

// LoadOrCreateClientKey returns the random key kept at path, generating it
// on first use. The file holds the key in hex and is created with mode 0600.
func LoadOrCreateClientKey(path string) ([]byte, error) {
	key, err := readClientKey(path)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	key = common.GenerateRandByteArray(ClientKeySize)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if errors.Is(err, fs.ErrExist) {
		// another process created it first
		return readClientKey(path)
	}
	if err != nil {
		return nil, fmt.Errorf("create client key: %w", err)
	}
	if _, err := f.WriteString(hex.EncodeToString(key) + "\n"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write client key: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write client key: %w", err)
	}
	return key, nil
}

func readClientKey(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil || len(key) != ClientKeySize {
		return nil, fmt.Errorf("client key %s is malformed", path)
	}
	return key, nil
}

// ClientID derives a stable public identifier from a client key. It names
// the client's entries in a shared store without revealing the key.
func ClientID(key []byte) string {
	sum := sha256.Sum256(append([]byte("uniclip-client-id:"), key...))
	return hex.EncodeToString(sum[:8])
}
