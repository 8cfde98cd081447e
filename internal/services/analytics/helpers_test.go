package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

var (
	nan  = math.NaN()
	day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

func dayN(i int) time.Time { return day0.AddDate(0, 0, i) }

func seriesFrom(t *testing.T, start int, values ...float64) models.DailySeries {
	t.Helper()
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = dayN(start + i)
	}
	s, err := models.NewDailySeries(dates, values)
	require.NoError(t, err)
	return s
}

func assertValues(t *testing.T, want []float64, got models.DailySeries) {
	t.Helper()
	require.Equal(t, len(want), got.Len())
	for i, w := range want {
		g := got.Value(i)
		if math.IsNaN(w) {
			assert.True(t, math.IsNaN(g), "index %d: want NaN, got %v", i, g)
			continue
		}
		assert.InDelta(t, w, g, 1e-9, "index %d", i)
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
