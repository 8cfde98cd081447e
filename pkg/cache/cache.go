package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Key identifies one provider response.
type Key struct {
	AssetID    string
	WindowDays int
	Currency   string
}

// String renders the key as {asset}_{days}d_{currency}.
func (k Key) String() string {
	return fmt.Sprintf("%s_%dd_%s", k.AssetID, k.WindowDays, k.Currency)
}

// Store persists raw payloads per key along with their fetch time.
// Writes replace the whole payload.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Put(ctx context.Context, key Key, payload []byte) error
	Delete(ctx context.Context, key Key) error
	// FetchedAt returns when the payload was written, or ErrCacheMiss.
	FetchedAt(ctx context.Context, key Key) (time.Time, error)
}

// Cache applies TTL freshness on top of a Store.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	l     *logger.Logger
}

// New wraps store with a freshness TTL.
func New(store Store, ttl time.Duration, opts ...Option) *Cache {
	cfg := &Config{Now: time.Now, Logger: logger.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Cache{store: store, ttl: ttl, now: cfg.Now, l: cfg.Logger}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// IsFresh reports whether key holds an entry no older than ttl.
func (c *Cache) IsFresh(ctx context.Context, key Key, ttl time.Duration) bool {
	at, err := c.store.FetchedAt(ctx, key)
	if err != nil {
		return false
	}
	return c.now().Sub(at) <= ttl
}

// Get returns the payload for key if it is fresh. A stale entry is deleted.
// Any store error is reported as absent.
func (c *Cache) Get(ctx context.Context, key Key) ([]byte, bool) {
	at, err := c.store.FetchedAt(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.l.Warn("cache.stat error", String(key), logger.Error(err))
		}
		return nil, false
	}
	age := c.now().Sub(at)
	if age > c.ttl {
		c.l.Info("cache.expired", String(key), logger.Float64("age_h", age.Hours()))
		if err := c.store.Delete(ctx, key); err != nil {
			c.l.Warn("cache.delete error", String(key), logger.Error(err))
		}
		return nil, false
	}
	b, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.l.Warn("cache.read error", String(key), logger.Error(err))
		}
		return nil, false
	}
	c.l.Debug("cache.hit", String(key), logger.Float64("age_h", age.Hours()))
	return b, true
}

// Put stores payload. Failures are logged and returned; callers may ignore them.
func (c *Cache) Put(ctx context.Context, key Key, payload []byte) error {
	if err := c.store.Put(ctx, key, payload); err != nil {
		c.l.Warn("cache.write error", String(key), logger.Error(err))
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key Key) error {
	if err := c.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	return nil
}

// String is a log field for a cache key.
func String(key Key) logger.Field {
	return logger.String("key", key.String())
}
