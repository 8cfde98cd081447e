package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/util"
)

const (
	PublicAPIBase = "https://api.coingecko.com/api/v3"
	ProAPIBase    = "https://pro-api.coingecko.com/api/v3"

	// Concurrency defaults per API tier.
	FreeMaxConcurrent = 10
	ProMaxConcurrent  = 30
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"required"`
	Server      ServerConfig  `yaml:"server"`
	Logger      logger.Config `yaml:"logger"`
	CoinGecko   struct {
		APIKey     string        `yaml:"api_key"`
		BaseURL    string        `yaml:"base_url"` // empty: chosen from api_key
		VsCurrency string        `yaml:"vs_currency" default:"usd" validate:"required"`
		Days       int           `yaml:"days" default:"365" validate:"gte=1"`
		Timeout    time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	} `yaml:"coingecko"`
	Retry struct {
		MaxRetries        int           `yaml:"max_retries" default:"3" validate:"gte=1"`
		WaitTime          time.Duration `yaml:"wait_time" default:"60s" validate:"gte=0"`
		BackoffMultiplier float64       `yaml:"backoff_multiplier" default:"1" validate:"gte=1"`
		BaseSleep         time.Duration `yaml:"base_sleep" default:"1.2s" validate:"gte=0"`
	} `yaml:"retry"`
	Fetch struct {
		Concurrent    bool `yaml:"concurrent" default:"true"`
		MaxConcurrent int  `yaml:"max_concurrent" validate:"gte=0"` // 0: chosen from api tier
	} `yaml:"fetch"`
	Cache struct {
		Backend  string        `yaml:"backend" default:"file" validate:"oneof=file redis"`
		Dir      string        `yaml:"dir" default:"cg_cache"`
		TTL      time.Duration `yaml:"ttl" default:"24h" validate:"gt=0"`
		MemoryL1 bool          `yaml:"memory_l1"`
		Redis    struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"cmdash"`
			Pool     struct {
				Size        int           `yaml:"size" default:"10" validate:"gte=1"`
				MinIdle     int           `yaml:"min_idle" default:"2" validate:"gte=0"`
				WaitTimeout time.Duration `yaml:"wait_timeout" default:"30s"`
			} `yaml:"pool"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Corrector struct {
		QDropThreshold     float64 `yaml:"q_drop_threshold" default:"-0.30" validate:"lt=0"`
		PriceDropThreshold float64 `yaml:"price_drop_threshold" default:"-0.30" validate:"lt=0"`
		MinOverlap         int     `yaml:"min_overlap" default:"20" validate:"gte=2"`
		MinHistory         int     `yaml:"min_history" default:"10" validate:"gte=1"`
		Lookback           int     `yaml:"lookback" default:"2" validate:"gte=0"`
		VerifyPoints       int     `yaml:"verify_points" default:"5" validate:"gte=2"`
	} `yaml:"corrector"`
	Transform struct {
		MinValidValue   float64           `yaml:"min_valid_value" default:"200000000" validate:"gte=0"`
		MinCorrDays     int               `yaml:"min_corr_days" default:"10" validate:"gte=2"`
		BaselineAnchors map[string]string `yaml:"baseline_anchors"` // symbol -> day (YYYY-MM-DD, RFC3339 or unix seconds)
	} `yaml:"transform"`
	Refresh struct {
		Interval time.Duration `yaml:"interval" default:"24h" validate:"gte=0"`
	} `yaml:"refresh"`
	Kafka struct {
		Enabled          bool          `yaml:"enabled"`
		Brokers          []string      `yaml:"brokers"`
		TopicCorrections string        `yaml:"topic_corrections" default:"cmdash.corrections"`
		TopicStatus      string        `yaml:"topic_status" default:"cmdash.status"`
		RequiredAcks     int           `yaml:"required_acks" default:"-1"`
		Compression      string        `yaml:"compression" default:"gzip" validate:"oneof=none gzip snappy lz4 zstd"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxAttempts      int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
		BatchSize        int           `yaml:"batch_size" default:"100" validate:"gte=1"`
		BatchTimeout     time.Duration `yaml:"batch_timeout" default:"100ms"`
		AutoCreateTopics bool          `yaml:"auto_create_topics"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"cmdash"`
		Table            string        `yaml:"table" default:"market_cap_daily"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		AsyncInsert      bool          `yaml:"async_insert"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Assets []Asset `yaml:"assets" validate:"dive"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8052" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" default:"10"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" default:"20"`
	CORS            bool          `yaml:"cors" default:"true"`
}

// Asset is a registry entry; an empty list selects the built-in registry.
type Asset struct {
	ID         string `yaml:"id" validate:"required"`
	Symbol     string `yaml:"symbol" validate:"required"`
	Category   string `yaml:"category"`
	Group      string `yaml:"group" validate:"required"`
	FallbackID string `yaml:"fallback_id"`
}

var validate = validator.New()

// Load reads a YAML configuration file, applies defaults and validates.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	c.finalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	c.finalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if path == "" {
		return &c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &c, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := getenv("COINGECKO_API_BASE"); v != "" {
		c.CoinGecko.BaseURL = v
	}
	if v := getenv("MAX_CONCURRENT_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_CONCURRENT_REQUESTS: %w", err)
		}
		c.Fetch.MaxConcurrent = n
	}
	if v := getenv("USE_ASYNC_FETCH"); v != "" {
		c.Fetch.Concurrent = strings.EqualFold(v, "true")
	}
	if v := getenv("MIN_CORR_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MIN_CORR_DAYS: %w", err)
		}
		c.Transform.MinCorrDays = n
	}
	if v := getenv("CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
		c.Kafka.Enabled = true
	}
	return nil
}

// finalize resolves tier-dependent defaults.
func (c *Config) finalize() {
	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = PublicAPIBase
		if c.CoinGecko.APIKey != "" {
			c.CoinGecko.BaseURL = ProAPIBase
		}
	}
	if c.Fetch.MaxConcurrent == 0 {
		c.Fetch.MaxConcurrent = FreeMaxConcurrent
		if c.CoinGecko.APIKey != "" {
			c.Fetch.MaxConcurrent = ProMaxConcurrent
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	for sym, d := range c.Transform.BaselineAnchors {
		if _, ok := util.ParseDay(d); !ok {
			return fmt.Errorf("transform.baseline_anchors[%s]: invalid day %q", sym, d)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		if seen[a.Symbol] {
			return fmt.Errorf("assets: duplicate symbol %s", a.Symbol)
		}
		seen[a.Symbol] = true
	}
	return nil
}

// BaselineAnchors returns the parsed per-symbol anchor dates.
func (c *Config) BaselineAnchors() map[string]time.Time {
	out := make(map[string]time.Time, len(c.Transform.BaselineAnchors))
	for sym, d := range c.Transform.BaselineAnchors {
		if t, ok := util.ParseDay(d); ok {
			out[sym] = t
		}
	}
	return out
}
