package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldPayload   = "payload"
	fieldFetchedAt = "fetched_at"
)

// RedisStore keeps each payload in a hash with its fetch time in unix milliseconds.
type RedisStore struct {
	client *redis.Client
	prefix string
	expiry time.Duration
	now    func() time.Time
}

// NewRedisStore connects to Redis and pings it.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 2,
		Prefix:       "cmdash",
		Now:          time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.Expiry, cfg.Now), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string, expiry time.Duration, now func() time.Time) *RedisStore {
	if now == nil {
		now = time.Now
	}
	return &RedisStore{client: client, prefix: prefix, expiry: expiry, now: now}
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, error) {
	b, err := s.client.HGet(ctx, s.wrapKey(key), fieldPayload).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return b, nil
}

func (s *RedisStore) Put(ctx context.Context, key Key, payload []byte) error {
	k := s.wrapKey(key)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k, fieldPayload, payload, fieldFetchedAt, s.now().UnixMilli())
	if s.expiry > 0 {
		pipe.Expire(ctx, k, s.expiry)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	return s.client.Unlink(ctx, s.wrapKey(key)).Err()
}

func (s *RedisStore) FetchedAt(ctx context.Context, key Key) (time.Time, error) {
	v, err := s.client.HGet(ctx, s.wrapKey(key), fieldFetchedAt).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, ErrCacheMiss
		}
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("redis fetched_at %q: %w", v, err)
	}
	return time.UnixMilli(ms), nil
}

func (s *RedisStore) wrapKey(key Key) string {
	if s.prefix == "" {
		return key.String()
	}
	return fmt.Sprintf("%s:%s", s.prefix, key.String())
}
