package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

func TestSMAWithGaps(t *testing.T) {
	s := seriesFrom(t, 0, 10, nan, 12, 13, nan, 15, 16)
	got, err := Smooth(s, models.SmoothingSMA7)
	require.NoError(t, err)
	assertValues(t, []float64{10, nan, 11, 35.0 / 3, nan, 12.5, 13.2}, got)
}

func TestSMAWindowSlides(t *testing.T) {
	got := SMA(seriesFrom(t, 0, 1, 2, 3, 4), 2)
	assertValues(t, []float64{1, 1.5, 2.5, 3.5}, got)
}

func TestEMACarriesStateAcrossGaps(t *testing.T) {
	got := EMA(seriesFrom(t, 0, 10, nan, 12), 14)
	alpha := 2.0 / 15
	assertValues(t, []float64{10, nan, (1-alpha)*10 + alpha*12}, got)
}

func TestSmoothingPreservesNaN(t *testing.T) {
	in := seriesFrom(t, 0, nan, 5, 6, nan, nan, 9, 10, nan, 12, 13, 14, nan)
	for _, mode := range []models.SmoothingMode{models.SmoothingNone, models.SmoothingSMA7, models.SmoothingEMA14, models.SmoothingSMA30} {
		t.Run(mode.Label(), func(t *testing.T) {
			got, err := Smooth(in, mode)
			require.NoError(t, err)
			require.Equal(t, in.Len(), got.Len())
			for i := 0; i < in.Len(); i++ {
				assert.Equal(t, math.IsNaN(in.Value(i)), math.IsNaN(got.Value(i)), "index %d", i)
			}
		})
	}
}

func TestSmoothUnknownMode(t *testing.T) {
	_, err := Smooth(seriesFrom(t, 0, 1), models.SmoothingMode(42))
	assert.ErrorIs(t, err, models.ErrUnknownSmoothing)
}
