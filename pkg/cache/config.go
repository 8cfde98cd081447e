package cache

import (
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// Option configures Cache.
type Option func(*Config)

// Config holds Cache configuration.
type Config struct {
	Now    func() time.Time
	Logger *logger.Logger
}

// WithClock sets the clock used for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// RedisOption configures Redis store.
type RedisOption func(*RedisConfig)

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
	// Expiry is the server-side key expiry; zero keeps keys until deleted.
	Expiry time.Duration
	Now    func() time.Time
}

// WithRedisAddr sets Redis host:port.
func WithRedisAddr(addr string) RedisOption {
	return func(c *RedisConfig) {
		c.Addr = addr
	}
}

// WithRedisPassword sets Redis password.
func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
	}
}

// WithRedisDB sets Redis database number.
func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) {
		c.DB = db
	}
}

// WithRedisPool sets connection pool settings.
func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.PoolSize = poolSize
		c.MinIdleConns = minIdleConns
		c.PoolTimeout = timeout
	}
}

// WithRedisPrefix sets key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// WithRedisExpiry sets the server-side key expiry.
func WithRedisExpiry(d time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.Expiry = d
	}
}

// FileOption configures the file store.
type FileOption func(*FileStore)

// WithFileClock sets the clock stamped on written files.
func WithFileClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// MemoryOption configures the memory store.
type MemoryOption func(*MemoryStore)

// WithMemoryClock sets the clock stamped on stored entries.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// WithMemoryMaxSize bounds the number of entries; the oldest is evicted first.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(s *MemoryStore) {
		s.maxSize = size
	}
}
