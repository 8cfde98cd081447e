package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// Align puts every series on the sorted union of their dates and forward
// fills each column. Symbols keep the given order; unknown symbols are skipped.
func Align(order []string, series map[string]models.DailySeries) models.Frame {
	seen := make(map[time.Time]struct{})
	syms := make([]string, 0, len(order))
	for _, sym := range order {
		s, ok := series[sym]
		if !ok {
			continue
		}
		syms = append(syms, sym)
		for i := 0; i < s.Len(); i++ {
			seen[s.Date(i)] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	f := models.Frame{Dates: dates, Symbols: syms, Columns: make(map[string][]float64, len(syms))}
	for _, sym := range syms {
		s := series[sym]
		col := make([]float64, len(dates))
		last := math.NaN()
		j := 0
		for i, d := range dates {
			if j < s.Len() && s.Date(j).Equal(d) {
				if v := s.Value(j); !math.IsNaN(v) {
					last = v
				}
				j++
			}
			col[i] = last
		}
		f.Columns[sym] = col
	}
	return f
}

// MaskBeforeStart sets every value before the column's start to NaN. The
// start is the first non-zero non-NaN date, or the override when given.
func MaskBeforeStart(s models.DailySeries, override *Baseline) models.DailySeries {
	var start time.Time
	if override != nil {
		start = override.Date
	} else {
		i := s.FirstValid()
		if i < 0 {
			return allNaN(s)
		}
		start = s.Date(i)
	}
	out := s.Values()
	for i := range out {
		if s.Date(i).Before(start) {
			out[i] = math.NaN()
		}
	}
	return s.WithValues(out)
}
