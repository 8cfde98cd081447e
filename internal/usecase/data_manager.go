package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	drepo "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/repository"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/services/analytics"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/metrics"
)

var (
	// ErrNoData is returned when a load yields no asset at all.
	ErrNoData = errors.New("no asset data loaded")
	// ErrNotLoaded is returned before the first successful load.
	ErrNotLoaded     = errors.New("data not loaded yet")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrNoChange is returned when a change cannot be computed for the window.
	ErrNoChange = errors.New("change not available")
)

// Change metrics.
const (
	MetricMarketCap = "market_cap"
	MetricPrice     = "price"
)

// DataSet is one load of the registry. It is never mutated once published.
type DataSet struct {
	RunID       string
	LoadedAt    time.Time
	Order       []string
	Value       map[string]models.DailySeries
	Price       map[string]models.DailySeries
	Meta        map[string]models.Meta
	Corrections map[string]models.CorrectionEvent
	Status      models.CoinStatus
	Failed      []models.FailedAsset
}

func (d *DataSet) universe() analytics.Universe {
	corrected := make(map[string]bool, len(d.Corrections))
	for sym := range d.Corrections {
		corrected[sym] = true
	}
	return analytics.Universe{Order: d.Order, Series: d.Value, Meta: d.Meta, Corrected: corrected}
}

// DataManager loads the registry and serves the latest data set.
type DataManager struct {
	registry    []models.AssetDescriptor
	batch       *BatchFetcher
	transformer *analytics.Transformer
	minCorrDays int

	publisher drepo.EventPublisher
	store     drepo.SeriesStore
	metrics   drepo.Metrics
	l         *logger.Logger
	now       func() time.Time

	loadMu sync.Mutex
	mu     sync.RWMutex
	data   *DataSet
}

// DataManagerOption configures DataManager.
type DataManagerOption func(*DataManager)

// WithPublisher ships corrections and load summaries.
func WithPublisher(p drepo.EventPublisher) DataManagerOption {
	return func(m *DataManager) {
		if p != nil {
			m.publisher = p
		}
	}
}

// WithSeriesStore stores a snapshot of every load.
func WithSeriesStore(s drepo.SeriesStore) DataManagerOption {
	return func(m *DataManager) {
		if s != nil {
			m.store = s
		}
	}
}

func WithManagerMetrics(r drepo.Metrics) DataManagerOption {
	return func(m *DataManager) {
		if r != nil {
			m.metrics = r
		}
	}
}

func WithManagerLogger(l *logger.Logger) DataManagerOption {
	return func(m *DataManager) {
		if l != nil {
			m.l = l
		}
	}
}

// WithManagerClock sets the clock stamped on loads.
func WithManagerClock(now func() time.Time) DataManagerOption {
	return func(m *DataManager) {
		m.now = now
	}
}

// WithMinCorrDays sets the minimum overlap for correlations.
func WithMinCorrDays(n int) DataManagerOption {
	return func(m *DataManager) {
		if n > 1 {
			m.minCorrDays = n
		}
	}
}

// NewDataManager creates a DataManager over registry.
func NewDataManager(registry []models.AssetDescriptor, batch *BatchFetcher, t *analytics.Transformer, opts ...DataManagerOption) *DataManager {
	m := &DataManager{
		registry:    registry,
		batch:       batch,
		transformer: t,
		minCorrDays: analytics.MinCorrDays,
		metrics:     metrics.Noop{},
		l:           logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the tracked assets.
func (m *DataManager) Registry() []models.AssetDescriptor {
	out := make([]models.AssetDescriptor, len(m.registry))
	copy(out, m.registry)
	return out
}

// Load fetches the registry and swaps in the new data set. On error the
// previous data set stays in place.
func (m *DataManager) Load(ctx context.Context) (*DataSet, error) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	l := m.l.With(logger.String("run_id", runID))
	l.Info("data.load start", logger.Int("assets", len(m.registry)))

	results := m.batch.FetchAll(ctx, m.registry)
	ds := m.assemble(runID, results)
	m.metrics.RecordLatency("load", time.Since(start).Seconds())

	if ds.Status.TotalLoaded == 0 {
		m.metrics.RecordError("no_data")
		l.Error("data.load no assets loaded", logger.Int("failed", len(ds.Failed)))
		return nil, ErrNoData
	}

	m.mu.Lock()
	m.data = ds
	m.mu.Unlock()
	m.metrics.SetAssetsLoaded(ds.Status.TotalLoaded)

	l.Info("data.load done",
		logger.Int("loaded", ds.Status.TotalLoaded),
		logger.Int("expected", ds.Status.TotalExpected),
		logger.Strings("missing", ds.Status.Missing),
		logger.Int("corrected", len(ds.Corrections)),
		logger.Duration("duration_ms", time.Since(start)),
	)

	m.export(ctx, l, ds, time.Since(start))
	return ds, nil
}

func (m *DataManager) assemble(runID string, results []AssetResult) *DataSet {
	ds := &DataSet{
		RunID:       runID,
		LoadedAt:    m.now(),
		Value:       make(map[string]models.DailySeries),
		Price:       make(map[string]models.DailySeries),
		Meta:        make(map[string]models.Meta),
		Corrections: make(map[string]models.CorrectionEvent),
	}
	for _, r := range results {
		sym := r.Asset.Symbol
		ds.Meta[sym] = models.Meta{Category: r.Asset.Category, Group: r.Asset.Group}
		if !r.Outcome.OK() || r.Outcome.Value.IsEmpty() {
			f := models.FailedAsset{ProviderID: r.Asset.ProviderID, Symbol: sym, Reason: r.Outcome.Reason}
			if r.Outcome.Err != nil {
				f.Error = r.Outcome.Err.Error()
			}
			ds.Failed = append(ds.Failed, f)
			ds.Status.Missing = append(ds.Status.Missing, sym)
			continue
		}
		ds.Order = append(ds.Order, sym)
		ds.Value[sym] = r.Outcome.Value
		ds.Price[sym] = r.Outcome.Price
		if ev := r.Outcome.Correction; ev != nil {
			ds.Corrections[sym] = *ev
		}
		ds.Status.Available = append(ds.Status.Available, sym)
	}
	sort.Strings(ds.Status.Available)
	sort.Strings(ds.Status.Missing)
	ds.Status.TotalExpected = len(results)
	ds.Status.TotalLoaded = len(ds.Order)
	return ds
}

// export publishes events and stores the snapshot. Failures are logged only.
func (m *DataManager) export(ctx context.Context, l *logger.Logger, ds *DataSet, took time.Duration) {
	if m.publisher != nil {
		for _, sym := range ds.Order {
			ev, ok := ds.Corrections[sym]
			if !ok {
				continue
			}
			if err := m.publisher.PublishCorrection(ctx, ev); err != nil {
				m.metrics.RecordError("publish")
				l.Warn("data.export publish correction failed", logger.String("symbol", sym), logger.Error(err))
			}
		}
		summary := models.LoadSummary{
			RunID:      ds.RunID,
			LoadedAt:   ds.LoadedAt,
			Status:     ds.Status,
			Failed:     ds.Failed,
			Corrected:  correctedSymbols(ds),
			DurationMs: took.Milliseconds(),
		}
		if err := m.publisher.PublishSummary(ctx, summary); err != nil {
			m.metrics.RecordError("publish")
			l.Warn("data.export publish summary failed", logger.Error(err))
		}
	}
	if m.store != nil {
		if err := m.store.StoreSnapshot(ctx, snapshotRows(ds)); err != nil {
			m.metrics.RecordError("snapshot")
			l.Warn("data.export snapshot failed", logger.Error(err))
		}
	}
}

func correctedSymbols(ds *DataSet) []string {
	var out []string
	for _, sym := range ds.Order {
		if _, ok := ds.Corrections[sym]; ok {
			out = append(out, sym)
		}
	}
	return out
}

func snapshotRows(ds *DataSet) []drepo.SnapshotRow {
	var rows []drepo.SnapshotRow
	for _, sym := range ds.Order {
		v := ds.Value[sym]
		p := ds.Price[sym]
		_, corrected := ds.Corrections[sym]
		for i := 0; i < v.Len(); i++ {
			price, ok := p.Get(v.Date(i))
			if !ok {
				price = math.NaN()
			}
			rows = append(rows, drepo.SnapshotRow{
				RunID:     ds.RunID,
				Symbol:    sym,
				Date:      v.Date(i),
				MarketCap: v.Value(i),
				Price:     price,
				Corrected: corrected,
			})
		}
	}
	return rows
}

// Run reloads every interval until ctx is done. A failed reload keeps the
// previous data set.
func (m *DataManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Load(ctx); err != nil {
				m.l.Warn("data.refresh failed, keeping previous data", logger.Error(err))
			}
		}
	}
}

// Snapshot returns the current data set or ErrNotLoaded.
func (m *DataManager) Snapshot() (*DataSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, ErrNotLoaded
	}
	return m.data, nil
}

// Series returns the corrected value series of every loaded symbol.
func (m *DataManager) Series() map[string]models.DailySeries {
	ds, err := m.Snapshot()
	if err != nil {
		return map[string]models.DailySeries{}
	}
	return copyMap(ds.Value)
}

// Prices returns the price series of every loaded symbol.
func (m *DataManager) Prices() map[string]models.DailySeries {
	ds, err := m.Snapshot()
	if err != nil {
		return map[string]models.DailySeries{}
	}
	return copyMap(ds.Price)
}

// Status returns the availability of the last load. Before the first load
// every registry entry is missing.
func (m *DataManager) Status() models.CoinStatus {
	ds, err := m.Snapshot()
	if err == nil {
		return ds.Status
	}
	st := models.CoinStatus{TotalExpected: len(m.registry)}
	for _, a := range m.registry {
		st.Missing = append(st.Missing, a.Symbol)
	}
	sort.Strings(st.Missing)
	return st
}

// Corrections returns the applied corrections in registry order.
func (m *DataManager) Corrections() []models.CorrectionEvent {
	ds, err := m.Snapshot()
	if err != nil {
		return nil
	}
	out := make([]models.CorrectionEvent, 0, len(ds.Corrections))
	for _, sym := range ds.Order {
		if ev, ok := ds.Corrections[sym]; ok {
			out = append(out, ev)
		}
	}
	return out
}

// Transform renders the loaded data set for cfg.
func (m *DataManager) Transform(cfg models.TransformConfig) (models.TransformResult, error) {
	ds, err := m.Snapshot()
	if err != nil {
		return models.TransformResult{}, err
	}
	return m.transformer.Transform(ds.universe(), cfg)
}

// Symbols lists the symbols cfg shows, including the dominance index.
func (m *DataManager) Symbols(cfg models.TransformConfig) ([]string, error) {
	ds, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	return m.transformer.Symbols(ds.universe(), cfg), nil
}

// Correlation correlates two shown symbols of cfg.
func (m *DataManager) Correlation(cfg models.TransformConfig, a, b string, mode models.CorrMode) (analytics.CorrelationResult, error) {
	ds, err := m.Snapshot()
	if err != nil {
		return analytics.CorrelationResult{}, err
	}
	return m.transformer.Correlate(ds.universe(), cfg, a, b, mode, m.minCorrDays)
}

// Change measures the move of symbol's metric over the trailing days.
func (m *DataManager) Change(symbol string, days int, metric string) (analytics.ChangeResult, error) {
	ds, err := m.Snapshot()
	if err != nil {
		return analytics.ChangeResult{}, err
	}
	var src map[string]models.DailySeries
	switch metric {
	case MetricMarketCap, "":
		src = ds.Value
	case MetricPrice:
		src = ds.Price
	default:
		return analytics.ChangeResult{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	s, ok := src[symbol]
	if !ok {
		return analytics.ChangeResult{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	res, ok := analytics.Change(s, days)
	if !ok {
		return analytics.ChangeResult{}, fmt.Errorf("%w: %s over %dd", ErrNoChange, symbol, days)
	}
	return res, nil
}

func copyMap(in map[string]models.DailySeries) map[string]models.DailySeries {
	out := make(map[string]models.DailySeries, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
