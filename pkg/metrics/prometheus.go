package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchAttempts *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	corrections   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	assetsLoaded  prometheus.Gauge
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmdash_fetch_attempts_total",
				Help: "Provider requests issued, by asset and HTTP status (0 = network error)",
			},
			[]string{"asset", "status"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmdash_fetch_outcomes_total",
				Help: "Fetch outcomes by kind",
			},
			[]string{"kind"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmdash_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"},
		),
		corrections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmdash_corrections_total",
				Help: "Implied-quantity corrections applied",
			},
			[]string{"symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cmdash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cmdash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		assetsLoaded: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "cmdash_assets_loaded",
				Help: "Assets available after the last load",
			},
		),
	}
}

// RecordFetchAttempt records one provider request.
func (r *Recorder) RecordFetchAttempt(asset string, status int) {
	r.fetchAttempts.WithLabelValues(asset, strconv.Itoa(status)).Inc()
}

// RecordOutcome records a fetch outcome kind or failure reason.
func (r *Recorder) RecordOutcome(kind string) {
	r.outcomes.WithLabelValues(kind).Inc()
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCorrection records an applied correction.
func (r *Recorder) RecordCorrection(symbol string) {
	r.corrections.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// SetAssetsLoaded sets the loaded assets gauge.
func (r *Recorder) SetAssetsLoaded(n int) {
	r.assetsLoaded.Set(float64(n))
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordFetchAttempt(string, int) {}
func (Noop) RecordOutcome(string) {}
func (Noop) RecordCache(bool) {}
func (Noop) RecordCorrection(string) {}
func (Noop) RecordError(string) {}
func (Noop) RecordLatency(string, float64) {}
func (Noop) SetAssetsLoaded(int) {}
