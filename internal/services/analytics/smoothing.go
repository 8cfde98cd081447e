package analytics

import (
	"math"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// Smooth applies mode to s. Dates missing in s stay missing.
func Smooth(s models.DailySeries, mode models.SmoothingMode) (models.DailySeries, error) {
	switch mode {
	case models.SmoothingNone:
		return s, nil
	case models.SmoothingSMA7:
		return SMA(s, 7), nil
	case models.SmoothingEMA14:
		return EMA(s, 14), nil
	case models.SmoothingSMA30:
		return SMA(s, 30), nil
	default:
		return models.DailySeries{}, models.ErrUnknownSmoothing
	}
}

// SMA is a trailing mean over window positions, skipping NaN, with a
// minimum of one sample.
func SMA(s models.DailySeries, window int) models.DailySeries {
	in := s.Values()
	out := make([]float64, len(in))
	sum, n := 0.0, 0
	for i, v := range in {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
		if j := i - window; j >= 0 && !math.IsNaN(in[j]) {
			sum -= in[j]
			n--
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return s.WithValues(remask(in, out))
}

// EMA is an exponential mean with alpha = 2/(span+1), seeded by the first
// sample. NaN inputs keep the previous state.
func EMA(s models.DailySeries, span int) models.DailySeries {
	in := s.Values()
	out := make([]float64, len(in))
	alpha := 2 / (float64(span) + 1)
	state := math.NaN()
	for i, v := range in {
		if !math.IsNaN(v) {
			if math.IsNaN(state) {
				state = v
			} else {
				state = (1-alpha)*state + alpha*v
			}
		}
		out[i] = state
	}
	return s.WithValues(remask(in, out))
}

func remask(in, out []float64) []float64 {
	for i, v := range in {
		if math.IsNaN(v) {
			out[i] = math.NaN()
		}
	}
	return out
}
