package analytics

import (
	"math"
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// MinValidValue is the market cap a baseline candidate must exceed.
const MinValidValue = 200_000_000

// baselineOffsets are the day offsets tried around the anchor, in order.
var baselineOffsets = []int{0, 1, -1, 2, -2, 3, -3}

// FindBaseline picks the normalization baseline near anchor: the anchor
// itself, then anchor ±1..3 days, then the first later date whose value is
// valid and above minValid.
func FindBaseline(s models.DailySeries, anchor time.Time, minValid float64) (time.Time, float64, bool) {
	anchor = models.Day(anchor)
	for _, off := range baselineOffsets {
		d := anchor.AddDate(0, 0, off)
		if v, ok := s.Get(d); ok && !math.IsNaN(v) && v > minValid {
			return d, v, true
		}
	}
	for i := 0; i < s.Len(); i++ {
		if s.Date(i).Before(anchor) {
			continue
		}
		if v := s.Value(i); !math.IsNaN(v) && v != 0 && v > minValid {
			return s.Date(i), v, true
		}
	}
	return time.Time{}, 0, false
}

// AutoAnchor returns the first non-zero non-NaN date of s.
func AutoAnchor(s models.DailySeries) (time.Time, bool) {
	i := s.FirstValid()
	if i < 0 {
		return time.Time{}, false
	}
	return s.Date(i), true
}

// Baseline is a resolved normalization anchor.
type Baseline struct {
	Date  time.Time
	Value float64
}

// BaselineResolver computes overrides for corrected assets.
type BaselineResolver struct {
	Anchors  map[string]time.Time
	MinValid float64
}

// Resolve returns the override for sym, which only applies when the asset
// was corrected. The configured anchor wins over the auto-detected one.
func (r BaselineResolver) Resolve(sym string, s models.DailySeries, corrected bool) (Baseline, bool) {
	if !corrected {
		return Baseline{}, false
	}
	anchor, ok := r.Anchors[sym]
	if !ok {
		if anchor, ok = AutoAnchor(s); !ok {
			return Baseline{}, false
		}
	}
	d, v, ok := FindBaseline(s, anchor, r.MinValid)
	if !ok {
		return Baseline{}, false
	}
	return Baseline{Date: d, Value: v}, true
}
