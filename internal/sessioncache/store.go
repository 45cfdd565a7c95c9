// Package sessioncache keeps the credential bundle that lets a client
// re-authenticate without prompting. The bundle is signed as a JWT and kept
// under a single key in a KeyValueStore (SQLite on disk, or Redis).
package sessioncache

import (
	"context"
	"time"
)

// KeyValueStore is a byte store with optional expiry. Get returns nil, nil
// for a missing or expired key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
