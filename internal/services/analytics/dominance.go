package analytics

import (
	"math"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// Dominance returns base / Σ(all columns) * 100 per date, start-normalized.
// It reports false when base is absent or any date sums to zero.
func Dominance(f models.Frame, base string) (models.DailySeries, bool) {
	num, ok := f.Columns[base]
	if !ok {
		return models.DailySeries{}, false
	}
	den := f.RowSum()
	ratio := make([]float64, len(den))
	for i, d := range den {
		if d == 0 {
			return models.DailySeries{}, false
		}
		if math.IsNaN(num[i]) {
			ratio[i] = math.NaN()
			continue
		}
		ratio[i] = num[i] / d * 100
	}
	return Normalize(f.DateSeries(ratio)), true
}
