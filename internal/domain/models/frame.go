package models

import (
	"math"
	"time"
)

// Frame is a set of asset columns aligned on one shared date axis.
type Frame struct {
	Dates   []time.Time
	Symbols []string
	Columns map[string][]float64
}

// Series returns the column for sym as a DailySeries.
func (f Frame) Series(sym string) (DailySeries, bool) {
	col, ok := f.Columns[sym]
	if !ok {
		return DailySeries{}, false
	}
	vs := make([]float64, len(col))
	copy(vs, col)
	return DailySeries{dates: f.Dates, values: vs}, true
}

// Has reports whether the frame carries a column for sym.
func (f Frame) Has(sym string) bool {
	_, ok := f.Columns[sym]
	return ok
}

// Map applies fn to every column and returns a new frame on the same dates.
func (f Frame) Map(fn func(sym string, col DailySeries) DailySeries) Frame {
	out := Frame{Dates: f.Dates, Symbols: append([]string(nil), f.Symbols...), Columns: make(map[string][]float64, len(f.Columns))}
	for _, sym := range f.Symbols {
		s, _ := f.Series(sym)
		out.Columns[sym] = fn(sym, s).values
	}
	return out
}

// RowSum returns the per-date sum across all columns, skipping NaN. A date
// where every column is NaN sums to zero.
func (f Frame) RowSum() []float64 {
	out := make([]float64, len(f.Dates))
	for _, sym := range f.Symbols {
		for i, v := range f.Columns[sym] {
			if !math.IsNaN(v) {
				out[i] += v
			}
		}
	}
	return out
}

// DateSeries wraps values on the frame's date axis.
func (f Frame) DateSeries(values []float64) DailySeries {
	vs := make([]float64, len(values))
	copy(vs, values)
	return DailySeries{dates: f.Dates, values: vs}
}
