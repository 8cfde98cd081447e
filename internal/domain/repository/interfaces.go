package repository

import (
	"context"
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// AssetFetcher fetches one asset's corrected daily series.
type AssetFetcher interface {
	Fetch(ctx context.Context, assetID string) models.FetchOutcome
}

// EventPublisher ships pipeline events to downstream consumers.
type EventPublisher interface {
	PublishCorrection(ctx context.Context, ev models.CorrectionEvent) error
	PublishSummary(ctx context.Context, s models.LoadSummary) error
	Close() error
}

// SnapshotRow is one stored point of a loaded series.
type SnapshotRow struct {
	RunID     string
	Symbol    string
	Date      time.Time
	MarketCap float64
	Price     float64
	Corrected bool
}

// SeriesStore persists snapshots of loaded data sets.
type SeriesStore interface {
	Init(ctx context.Context) error // ensure tables
	StoreSnapshot(ctx context.Context, rows []SnapshotRow) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordFetchAttempt(asset string, status int)
	RecordOutcome(kind string)
	RecordCache(hit bool)
	RecordCorrection(symbol string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	SetAssetsLoaded(n int)
}
