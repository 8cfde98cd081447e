package analytics

import (
	"math"
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// ChangeResult is the move of a series over a trailing window.
type ChangeResult struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	Abs       float64   `json:"abs"`
	Pct       float64   `json:"pct"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
}

// Change measures s over the last days days. The start is the last value at
// or before end-days, else the earliest value. It reports false when the end
// is NaN or the start is NaN or zero.
func Change(s models.DailySeries, days int) (ChangeResult, bool) {
	if s.IsEmpty() {
		return ChangeResult{}, false
	}
	last := s.Len() - 1
	end := s.Value(last)
	if math.IsNaN(end) {
		return ChangeResult{}, false
	}
	endDate := s.Date(last)
	cutoff := endDate.AddDate(0, 0, -days)

	startIdx := 0
	for i := last; i >= 0; i-- {
		if !s.Date(i).After(cutoff) {
			startIdx = i
			break
		}
	}
	start := s.Value(startIdx)
	if math.IsNaN(start) || start == 0 {
		return ChangeResult{}, false
	}

	hi, lo := math.Inf(-1), math.Inf(1)
	for i := startIdx; i <= last; i++ {
		if v := s.Value(i); !math.IsNaN(v) {
			hi = math.Max(hi, v)
			lo = math.Min(lo, v)
		}
	}
	abs := end - start
	return ChangeResult{
		StartDate: s.Date(startIdx),
		EndDate:   endDate,
		Start:     start,
		End:       end,
		Abs:       abs,
		Pct:       abs / start * 100,
		High:      hi,
		Low:       lo,
	}, true
}

// Timeframes maps the summary shorthands to trailing days.
var Timeframes = map[string]int{"1d": 1, "1w": 7, "1m": 30, "1y": 365}
