package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/services/features"
)

// MinCorrDays is the default minimum number of overlapping days.
const MinCorrDays = 10

var (
	ErrInsufficientOverlap = errors.New("insufficient overlapping data")
	ErrCorrelationOff      = errors.New("correlation is off")
)

// CorrelationResult describes how b co-moves with a.
type CorrelationResult struct {
	Mode        string   `json:"mode"`
	Days        int      `json:"days"`
	Correlation *float64 `json:"correlation"`
	Beta        *float64 `json:"beta,omitempty"`
	// ImpliedMove is b's expected move in percent for a +10% move of a.
	ImpliedMove *float64 `json:"implied_move_pct,omitempty"`
}

// Correlate inner-joins a and b, drops rows with a NaN and correlates either
// day-over-day returns or levels indexed to 100. Beta always uses returns.
func Correlate(a, b models.DailySeries, mode models.CorrMode, minDays int) (CorrelationResult, error) {
	if mode == models.CorrOff {
		return CorrelationResult{}, ErrCorrelationOff
	}
	if mode != models.CorrReturns && mode != models.CorrLevels {
		return CorrelationResult{}, models.ErrUnknownCorrMode
	}
	xs, ys := join(a, b)
	if len(xs) < minDays {
		return CorrelationResult{}, fmt.Errorf("%w: need %d days, got %d", ErrInsufficientOverlap, minDays, len(xs))
	}

	ra, rb := dropNaNPairs(features.PctChange(xs), features.PctChange(ys))
	res := CorrelationResult{Mode: mode.String(), Days: len(xs)}

	if va := features.Covariance(ra, ra); !math.IsNaN(va) && va > 0 {
		beta := features.Covariance(rb, ra) / va
		move := beta * 10
		res.Beta, res.ImpliedMove = &beta, &move
	}

	var corr float64
	if mode == models.CorrReturns {
		corr = features.Pearson(ra, rb)
	} else {
		corr = features.Pearson(indexLevels(xs), indexLevels(ys))
	}
	if !math.IsNaN(corr) {
		res.Correlation = &corr
	}
	return res, nil
}

func join(a, b models.DailySeries) ([]float64, []float64) {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		va := a.Value(i)
		vb, ok := b.Get(a.Date(i))
		if !ok || math.IsNaN(va) || math.IsNaN(vb) {
			continue
		}
		xs = append(xs, va)
		ys = append(ys, vb)
	}
	return xs, ys
}

func dropNaNPairs(xs, ys []float64) ([]float64, []float64) {
	ox := make([]float64, 0, len(xs))
	oy := make([]float64, 0, len(ys))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		ox = append(ox, xs[i])
		oy = append(oy, ys[i])
	}
	return ox, oy
}

func indexLevels(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x / xs[0] * 100
	}
	return out
}
