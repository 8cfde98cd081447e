package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	drepo "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/repository"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// BatchConfig controls how the registry is fanned out.
type BatchConfig struct {
	Concurrent    bool
	MaxConcurrent int
	// BaseSleep follows every asset in sequential mode; batches pause twice as long.
	BaseSleep time.Duration
}

// AssetResult pairs a registry entry with its fetch outcome. Outcome.AssetID
// is the id actually fetched, which differs from Asset.ProviderID after a
// fallback.
type AssetResult struct {
	Asset   models.AssetDescriptor
	Outcome models.FetchOutcome
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// BatchFetcher fetches a registry in bounded batches.
type BatchFetcher struct {
	fetcher drepo.AssetFetcher
	cfg     BatchConfig
	sleep   Sleeper
	l       *logger.Logger
}

// BatchOption configures BatchFetcher.
type BatchOption func(*BatchFetcher)

// WithBatchSleeper replaces the pause between batches and sequential fetches.
func WithBatchSleeper(s Sleeper) BatchOption {
	return func(b *BatchFetcher) {
		if s != nil {
			b.sleep = s
		}
	}
}

// WithBatchLogger sets the logger.
func WithBatchLogger(l *logger.Logger) BatchOption {
	return func(b *BatchFetcher) {
		if l != nil {
			b.l = l
		}
	}
}

// NewBatchFetcher creates a BatchFetcher.
func NewBatchFetcher(f drepo.AssetFetcher, cfg BatchConfig, opts ...BatchOption) *BatchFetcher {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	b := &BatchFetcher{fetcher: f, cfg: cfg, sleep: sleepCtx, l: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FetchAll fetches every asset and returns one result per asset in input order.
func (b *BatchFetcher) FetchAll(ctx context.Context, assets []models.AssetDescriptor) []AssetResult {
	if len(assets) == 0 {
		return nil
	}
	if b.cfg.Concurrent {
		res, err := b.concurrent(ctx, assets)
		if err == nil {
			return res
		}
		b.l.Warn("batch.fetch concurrent run failed, falling back to sequential", logger.Error(err))
	}
	return b.sequential(ctx, assets)
}

func (b *BatchFetcher) concurrent(ctx context.Context, assets []models.AssetDescriptor) ([]AssetResult, error) {
	results := make([]AssetResult, len(assets))
	batches := (len(assets) + b.cfg.MaxConcurrent - 1) / b.cfg.MaxConcurrent
	b.l.Info("batch.fetch concurrent",
		logger.Int("assets", len(assets)),
		logger.Int("batches", batches),
		logger.Int("max_concurrent", b.cfg.MaxConcurrent),
	)

	for n := 0; n < batches; n++ {
		lo := n * b.cfg.MaxConcurrent
		hi := min(lo+b.cfg.MaxConcurrent, len(assets))

		var g errgroup.Group
		for i := lo; i < hi; i++ {
			g.Go(func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("fetch %s panicked: %v", assets[i].ProviderID, r)
					}
				}()
				results[i] = b.fetchOne(ctx, assets[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if n < batches-1 {
			if err := b.sleep(ctx, 2*b.cfg.BaseSleep); err != nil {
				cancelRest(results, assets, hi, err)
				return results, nil
			}
		}
	}
	return results, nil
}

func (b *BatchFetcher) sequential(ctx context.Context, assets []models.AssetDescriptor) []AssetResult {
	b.l.Info("batch.fetch sequential", logger.Int("assets", len(assets)))
	results := make([]AssetResult, len(assets))
	for i, a := range assets {
		results[i] = b.safeFetchOne(ctx, a)
		if i == len(assets)-1 {
			break
		}
		if err := b.sleep(ctx, b.cfg.BaseSleep); err != nil {
			cancelRest(results, assets, i+1, err)
			break
		}
	}
	return results
}

// safeFetchOne turns a panic into a terminal outcome so one asset cannot
// abort the sequential run.
func (b *BatchFetcher) safeFetchOne(ctx context.Context, a models.AssetDescriptor) (res AssetResult) {
	defer func() {
		if r := recover(); r != nil {
			res = AssetResult{Asset: a, Outcome: models.Terminal(a.ProviderID, models.ReasonTransient, fmt.Errorf("fetch panicked: %v", r))}
		}
	}()
	return b.fetchOne(ctx, a)
}

// fetchOne fetches the primary id and, when that fails, the registry fallback id.
func (b *BatchFetcher) fetchOne(ctx context.Context, a models.AssetDescriptor) AssetResult {
	out := b.fetcher.Fetch(ctx, a.ProviderID)
	if out.OK() || a.FallbackID == "" || ctx.Err() != nil {
		return AssetResult{Asset: a, Outcome: out}
	}
	b.l.Warn("batch.fetch primary id failed, trying fallback",
		logger.String("asset", a.ProviderID),
		logger.String("fallback", a.FallbackID),
		logger.String("reason", out.Reason),
	)
	fb := b.fetcher.Fetch(ctx, a.FallbackID)
	if fb.OK() {
		b.l.Info("batch.fetch fallback loaded", logger.String("fallback", a.FallbackID), logger.String("symbol", a.Symbol))
		return AssetResult{Asset: a, Outcome: fb}
	}
	return AssetResult{Asset: a, Outcome: out}
}

// cancelRest marks assets[from:] as cancelled.
func cancelRest(results []AssetResult, assets []models.AssetDescriptor, from int, err error) {
	for i := from; i < len(assets); i++ {
		results[i] = AssetResult{Asset: assets[i], Outcome: models.Terminal(assets[i].ProviderID, models.ReasonCancelled, err)}
	}
}
