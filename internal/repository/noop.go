package repository

import (
	"context"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	domrepo "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/repository"
)

// NoopPublisher drops every event.
type NoopPublisher struct{}

var _ domrepo.EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishCorrection(context.Context, models.CorrectionEvent) error { return nil }
func (NoopPublisher) PublishSummary(context.Context, models.LoadSummary) error       { return nil }
func (NoopPublisher) Close() error                                                   { return nil }

// NoopSeriesStore discards snapshots.
type NoopSeriesStore struct{}

var _ domrepo.SeriesStore = NoopSeriesStore{}

func (NoopSeriesStore) Init(context.Context) error                                { return nil }
func (NoopSeriesStore) StoreSnapshot(context.Context, []domrepo.SnapshotRow) error { return nil }
func (NoopSeriesStore) Health(context.Context) error                              { return nil }
func (NoopSeriesStore) Close() error                                              { return nil }
