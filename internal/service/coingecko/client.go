package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	drepo "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/repository"
	domsvc "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/service"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/cache"
	xhttp "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/http"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/metrics"
)

// APIKeyHeader carries the pro-tier key.
const APIKeyHeader = "x-cg-pro-api-key"

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Config holds the provider request and retry settings.
type Config struct {
	BaseURL           string
	APIKey            string
	VsCurrency        string
	Days              int
	Timeout           time.Duration
	MaxRetries        int
	WaitTime          time.Duration
	BackoffMultiplier float64
}

// Option configures Client.
type Option func(*Client)

// WithSleeper replaces the backoff sleep.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client fetches market_chart data through a TTL cache and corrects it
// before returning.
type Client struct {
	cfg       Config
	http      *xhttp.Client
	cache     *cache.Cache
	corrector domsvc.AnomalyCorrector
	sleep     Sleeper
	metrics   drepo.Metrics
	l         *logger.Logger
}

// New creates a Client.
func New(cfg Config, c *cache.Cache, corrector domsvc.AnomalyCorrector, opts ...Option) *Client {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cl := &Client{
		cfg:       cfg,
		cache:     c,
		corrector: corrector,
		sleep:     ContextSleep,
		metrics:   metrics.Noop{},
		l:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	if cl.http == nil {
		cl.http = xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout))
	}
	return cl
}

// Key returns the cache key for assetID.
func (c *Client) Key(assetID string) cache.Key {
	return cache.Key{AssetID: assetID, WindowDays: c.cfg.Days, Currency: c.cfg.VsCurrency}
}

// Fetch returns the corrected daily series for assetID. It never panics on
// provider errors; failures come back as outcomes.
func (c *Client) Fetch(ctx context.Context, assetID string) models.FetchOutcome {
	start := time.Now()
	defer func() { c.metrics.RecordLatency("fetch", time.Since(start).Seconds()) }()

	key := c.Key(assetID)
	if payload, ok := c.cache.Get(ctx, key); ok {
		c.metrics.RecordCache(true)
		out, err := c.decode(assetID, payload)
		if err == nil {
			c.l.Debug("coingecko.fetch cache_hit", logger.String("asset", assetID))
			return out
		}
		c.l.Warn("coingecko.fetch cached payload unreadable, refetching", logger.String("asset", assetID), logger.Error(err))
		_ = c.cache.Delete(ctx, key)
	} else {
		c.metrics.RecordCache(false)
	}

	payload, err := c.download(ctx, assetID)
	if err != nil {
		return c.failure(assetID, err)
	}

	// a failed write must not fail the fetch
	_ = c.cache.Put(ctx, key, payload)

	out, err := c.decode(assetID, payload)
	if err != nil {
		return c.failure(assetID, err)
	}
	c.l.Info("coingecko.fetch fetched and cached", logger.String("asset", assetID))
	return out
}

func (c *Client) decode(assetID string, payload []byte) (models.FetchOutcome, error) {
	value, price, err := Parse(payload)
	if err != nil {
		return models.FetchOutcome{}, err
	}
	var ev *models.CorrectionEvent
	if c.corrector != nil {
		value, ev = c.corrector.Correct(assetID, value, price)
	}
	c.metrics.RecordOutcome(models.OutcomeSuccess.String())
	if ev != nil {
		c.metrics.RecordCorrection(assetID)
	}
	return models.Succeeded(assetID, value, price, ev), nil
}

func (c *Client) failure(assetID string, err error) models.FetchOutcome {
	var out models.FetchOutcome
	switch {
	case errors.Is(err, ErrNotFound):
		out = models.Terminal(assetID, models.ReasonNotFound, err)
	case errors.Is(err, ErrUnauthorized):
		out = models.Terminal(assetID, models.ReasonUnauthorized, err)
	case errors.Is(err, ErrParse):
		out = models.Terminal(assetID, models.ReasonParse, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out = models.Terminal(assetID, models.ReasonCancelled, err)
	default:
		out = models.Terminal(assetID, models.ReasonRetriesExhausted, err)
	}
	c.metrics.RecordOutcome(out.Reason)
	c.l.Error("coingecko.fetch failed",
		logger.String("asset", assetID),
		logger.String("reason", out.Reason),
		logger.Error(err),
	)
	return out
}

// download issues up to MaxRetries requests. Transient failures sleep the
// current wait and multiply it before the next attempt.
func (c *Client) download(ctx context.Context, assetID string) ([]byte, error) {
	url := fmt.Sprintf("%s/coins/%s/market_chart", c.cfg.BaseURL, assetID)
	query := map[string][]string{
		"vs_currency": {c.cfg.VsCurrency},
		"days":        {strconv.Itoa(c.cfg.Days)},
		"interval":    {"daily"},
	}
	var headers map[string]string
	if c.cfg.APIKey != "" {
		headers = map[string]string{APIKeyHeader: c.cfg.APIKey}
	}

	wait := c.cfg.WaitTime
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.http.Get(ctx, url, query, headers)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.metrics.RecordFetchAttempt(assetID, status)

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrTransient, err)
		case status == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s (bad provider id)", ErrNotFound, assetID)
		case status == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: check api key", ErrUnauthorized)
		case resp.OK():
			return resp.Body, nil
		default:
			lastErr = &StatusError{Status: status, Body: snippet(resp.Body)}
		}

		if attempt == c.cfg.MaxRetries {
			break
		}
		c.l.Warn("coingecko.fetch transient failure, backing off",
			logger.String("asset", assetID),
			logger.Int("attempt", attempt),
			logger.Int("max_retries", c.cfg.MaxRetries),
			logger.Int("status", status),
			logger.Duration("wait_ms", wait),
			logger.Error(lastErr),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
		wait = time.Duration(float64(wait) * c.cfg.BackoffMultiplier)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.cfg.MaxRetries, lastErr)
}

var _ drepo.AssetFetcher = (*Client)(nil)
