package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Day truncates t to the start of its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RawPoint is one provider sample at millisecond resolution.
type RawPoint struct {
	Timestamp int64
	Value     float64
}

// DailySeries is an immutable date-ordered series of daily values.
// Missing values are NaN. Dates are UTC midnights, strictly increasing.
type DailySeries struct {
	dates  []time.Time
	values []float64
}

// NewDailySeries copies dates and values into a new series. Dates are
// truncated to UTC days and must be strictly increasing.
func NewDailySeries(dates []time.Time, values []float64) (DailySeries, error) {
	if len(dates) != len(values) {
		return DailySeries{}, fmt.Errorf("series: %d dates for %d values", len(dates), len(values))
	}
	ds := make([]time.Time, len(dates))
	for i, d := range dates {
		ds[i] = Day(d)
		if i > 0 && !ds[i].After(ds[i-1]) {
			return DailySeries{}, fmt.Errorf("series: date %s not after %s", ds[i].Format(DateLayout), ds[i-1].Format(DateLayout))
		}
	}
	vs := make([]float64, len(values))
	copy(vs, values)
	return DailySeries{dates: ds, values: vs}, nil
}

// SeriesFromPoints groups raw points into UTC days keeping the last non-missing
// sample of each day and returns the date-sorted series.
func SeriesFromPoints(points []RawPoint) DailySeries {
	if len(points) == 0 {
		return DailySeries{}
	}
	sorted := make([]RawPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	byDay := make(map[time.Time]float64, len(sorted))
	for _, p := range sorted {
		d := Day(time.UnixMilli(p.Timestamp))
		prev, seen := byDay[d]
		switch {
		case !seen:
			byDay[d] = p.Value
		case !math.IsNaN(p.Value) || math.IsNaN(prev):
			byDay[d] = p.Value
		}
	}

	dates := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = byDay[d]
	}
	return DailySeries{dates: dates, values: values}
}

// Len returns the number of dates.
func (s DailySeries) Len() int { return len(s.dates) }

// IsEmpty reports whether the series has no dates.
func (s DailySeries) IsEmpty() bool { return len(s.dates) == 0 }

// Date returns the i-th date.
func (s DailySeries) Date(i int) time.Time { return s.dates[i] }

// Value returns the i-th value.
func (s DailySeries) Value(i int) float64 { return s.values[i] }

// Dates returns a copy of the dates.
func (s DailySeries) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)
	return out
}

// Values returns a copy of the values.
func (s DailySeries) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Index returns the position of date d, or -1.
func (s DailySeries) Index(d time.Time) int {
	d = Day(d)
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(d) })
	if i < len(s.dates) && s.dates[i].Equal(d) {
		return i
	}
	return -1
}

// Get returns the value at date d and whether d is present.
func (s DailySeries) Get(d time.Time) (float64, bool) {
	i := s.Index(d)
	if i < 0 {
		return math.NaN(), false
	}
	return s.values[i], true
}

// WithValues returns a new series over the same dates.
func (s DailySeries) WithValues(values []float64) DailySeries {
	if len(values) != len(s.dates) {
		panic(fmt.Sprintf("series: %d values for %d dates", len(values), len(s.dates)))
	}
	vs := make([]float64, len(values))
	copy(vs, values)
	return DailySeries{dates: s.dates, values: vs}
}

// FirstValid returns the index of the first value that is neither NaN nor zero.
func (s DailySeries) FirstValid() int {
	for i, v := range s.values {
		if !math.IsNaN(v) && v != 0 {
			return i
		}
	}
	return -1
}

// Equal reports whether both series have the same dates and values, treating
// NaN as equal to NaN.
func (s DailySeries) Equal(o DailySeries) bool {
	if len(s.dates) != len(o.dates) {
		return false
	}
	for i := range s.dates {
		if !s.dates[i].Equal(o.dates[i]) {
			return false
		}
		a, b := s.values[i], o.values[i]
		if math.IsNaN(a) != math.IsNaN(b) || (!math.IsNaN(a) && a != b) {
			return false
		}
	}
	return true
}

// Point is a JSON-friendly view of one series entry.
type Point struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Points renders the series with NaN as null.
func (s DailySeries) Points() []Point {
	out := make([]Point, len(s.dates))
	for i, d := range s.dates {
		out[i] = Point{Date: d.Format(DateLayout)}
		if v := s.values[i]; !math.IsNaN(v) {
			out[i].Value = &v
		}
	}
	return out
}

// DateLayout is the calendar date format used in logs and payloads.
const DateLayout = "2006-01-02"
