package analytics

import (
	"math"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// Normalize rebases s to 100 at its first non-zero non-NaN value.
func Normalize(s models.DailySeries) models.DailySeries {
	i := s.FirstValid()
	if i < 0 {
		return allNaN(s)
	}
	return rebase(s, Baseline{Date: s.Date(i), Value: s.Value(i)})
}

// NormalizeWith rebases s to 100 at b. Dates before b.Date become NaN.
func NormalizeWith(s models.DailySeries, b Baseline) models.DailySeries {
	if b.Value == 0 || math.IsNaN(b.Value) {
		return Normalize(s)
	}
	return rebase(s, b)
}

func rebase(s models.DailySeries, b Baseline) models.DailySeries {
	out := s.Values()
	for i := range out {
		if s.Date(i).Before(b.Date) || math.IsNaN(out[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = out[i] / b.Value * 100
	}
	return s.WithValues(out)
}

func allNaN(s models.DailySeries) models.DailySeries {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = math.NaN()
	}
	return s.WithValues(out)
}
