package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

func TestChange(t *testing.T) {
	s := seriesFrom(t, 0, 100, 120, nan, 80, 150, 110)

	got, ok := Change(s, 2)
	require.True(t, ok)
	assert.Equal(t, dayN(3), got.StartDate)
	assert.Equal(t, 80.0, got.Start)
	assert.Equal(t, 110.0, got.End)
	assert.Equal(t, 30.0, got.Abs)
	assert.InDelta(t, 37.5, got.Pct, 1e-9)
	assert.Equal(t, 150.0, got.High)
	assert.Equal(t, 80.0, got.Low)

	got, ok = Change(s, 365)
	require.True(t, ok)
	assert.Equal(t, dayN(0), got.StartDate, "falls back to the earliest value")
	assert.InDelta(t, 10.0, got.Pct, 1e-9)

	_, ok = Change(s, 3)
	assert.False(t, ok, "start lands on NaN")

	_, ok = Change(seriesFrom(t, 0, 1, nan), 1)
	assert.False(t, ok, "end is NaN")

	_, ok = Change(models.DailySeries{}, 1)
	assert.False(t, ok)
}
