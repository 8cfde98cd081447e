package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// pair builds a and b where b's daily returns are k times a's.
func pair(t *testing.T, returns []float64, k float64) (models.DailySeries, models.DailySeries) {
	t.Helper()
	a := []float64{100}
	b := []float64{50}
	for _, r := range returns {
		a = append(a, a[len(a)-1]*(1+r))
		b = append(b, b[len(b)-1]*(1+k*r))
	}
	return seriesFrom(t, 0, a...), seriesFrom(t, 0, b...)
}

var sampleReturns = []float64{0.01, -0.02, 0.03, 0.015, -0.01, 0.02, -0.005, 0.01, -0.03, 0.025, 0.004}

func TestCorrelateReturnsAndBeta(t *testing.T) {
	a, b := pair(t, sampleReturns, 2)
	got, err := Correlate(a, b, models.CorrReturns, MinCorrDays)
	require.NoError(t, err)

	assert.Equal(t, "returns", got.Mode)
	assert.Equal(t, 12, got.Days)
	require.NotNil(t, got.Correlation)
	assert.InDelta(t, 1.0, *got.Correlation, 1e-9)
	require.NotNil(t, got.Beta)
	assert.InDelta(t, 2.0, *got.Beta, 1e-9)
	assert.InDelta(t, 20.0, *got.ImpliedMove, 1e-9)
}

func TestCorrelateLevels(t *testing.T) {
	a, b := pair(t, sampleReturns, -1)
	got, err := Correlate(a, b, models.CorrLevels, MinCorrDays)
	require.NoError(t, err)
	require.NotNil(t, got.Correlation)
	assert.Less(t, *got.Correlation, 0.0)
	assert.InDelta(t, -1.0, *got.Beta, 1e-9)
}

func TestCorrelateInsufficientOverlap(t *testing.T) {
	a := seriesFrom(t, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	b := seriesFrom(t, 5, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	_, err := Correlate(a, b, models.CorrReturns, MinCorrDays)
	assert.ErrorIs(t, err, ErrInsufficientOverlap)

	_, err = Correlate(a, a, models.CorrOff, MinCorrDays)
	assert.ErrorIs(t, err, ErrCorrelationOff)
}
