package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFindBaseline(t *testing.T) {
	anchor := dayN(10)
	tests := []struct {
		name     string
		values   map[int]float64
		wantDay  int
		wantOK   bool
		minValid float64
	}{
		{"anchor valid", map[int]float64{10: 3e8}, 10, true, MinValidValue},
		{"plus one wins over minus one", map[int]float64{10: 1e8, 11: 3e8, 9: 4e8}, 11, true, MinValidValue},
		{"minus three", map[int]float64{7: 3e8}, 7, true, MinValidValue},
		{"first valid later date", map[int]float64{2: 9e8, 15: 1e8, 18: 5e8}, 18, true, MinValidValue},
		{"nothing above threshold", map[int]float64{10: 1e8, 20: 1e8}, 0, false, MinValidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := make([]float64, 25)
			for i := range vals {
				vals[i] = nan
				if v, ok := tt.values[i]; ok {
					vals[i] = v
				}
			}
			d, v, ok := FindBaseline(seriesFrom(t, 0, vals...), anchor, tt.minValid)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, dayN(tt.wantDay), d)
				assert.Equal(t, tt.values[tt.wantDay], v)
			}
		})
	}
}

func TestBaselineResolver(t *testing.T) {
	s := seriesFrom(t, 0, nan, 1e8, 3e8, 4e8, 5e8)
	r := BaselineResolver{MinValid: MinValidValue, Anchors: map[string]time.Time{"DYDX": dayN(3)}}

	_, ok := r.Resolve("BTC", s, false)
	assert.False(t, ok, "only corrected assets get an override")

	b, ok := r.Resolve("DYDX", s, true)
	assert.True(t, ok)
	assert.Equal(t, dayN(3), b.Date)

	b, ok = r.Resolve("ARB", s, true)
	assert.True(t, ok)
	assert.Equal(t, dayN(2), b.Date, "auto anchor is day 1, +1 is the first above threshold")
}
