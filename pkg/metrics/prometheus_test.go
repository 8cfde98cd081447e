package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordFetchAttempt("bitcoin", 429)
	r.RecordFetchAttempt("bitcoin", 429)
	r.RecordFetchAttempt("bitcoin", 200)
	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordCache(false)
	r.RecordCorrection("DYDX")
	r.SetAssetsLoaded(26)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchAttempts.WithLabelValues("bitcoin", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchAttempts.WithLabelValues("bitcoin", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.corrections.WithLabelValues("DYDX")))
	assert.Equal(t, 26.0, testutil.ToFloat64(r.assetsLoaded))
}

func TestRecorderSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewWithRegistry(prometheus.NewRegistry())
		NewWithRegistry(prometheus.NewRegistry())
	})
}
