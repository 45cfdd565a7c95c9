package sessioncache

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/uniclip/internal/models"
)

const tokenKey = "session_token"

// Cache persists at most one SessionToken.
type Cache struct {
	store KeyValueStore
	codec *TokenCodec
	ttl   time.Duration
}

func NewCache(store KeyValueStore, secret []byte, ttl time.Duration) *Cache {
	return &Cache{store: store, codec: NewTokenCodec(secret, ttl), ttl: ttl}
}

// Store replaces the cached token.
func (c *Cache) Store(ctx context.Context, t models.SessionToken) error {
	s, err := c.codec.Encode(t)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, tokenKey, []byte(s), c.ttl)
}

// Load returns the cached token, or nil, nil when there is none. A token
// that no longer verifies is removed and reported as ErrInvalidToken.
func (c *Cache) Load(ctx context.Context) (*models.SessionToken, error) {
	raw, err := c.store.Get(ctx, tokenKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	t, err := c.codec.Decode(string(raw))
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			if derr := c.store.Delete(ctx, tokenKey); derr != nil {
				return nil, errors.Join(err, derr)
			}
		}
		return nil, err
	}
	return t, nil
}

// Clear removes the cached token.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, tokenKey)
}
