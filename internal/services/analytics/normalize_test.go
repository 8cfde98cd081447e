package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"leading NaN", []float64{nan, nan, 50, 100, 150}, []float64{nan, nan, 100, 200, 300}},
		{"leading zeros and gap", []float64{0, 0, 50, nan, 100}, []float64{nan, nan, 100, nan, 200}},
		{"all missing", []float64{nan, 0, nan}, []float64{nan, nan, nan}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValues(t, tt.want, Normalize(seriesFrom(t, 0, tt.in...)))
		})
	}
}

func TestNormalizeWithOverride(t *testing.T) {
	s := seriesFrom(t, 0, 1, 2, 50, 100, 120)
	got := NormalizeWith(s, Baseline{Date: dayN(3), Value: 100})
	assertValues(t, []float64{nan, nan, nan, 100, 120}, got)
	assert.Equal(t, 1.0, s.Value(0), "input not mutated")
}

func TestNormalizeWithZeroBaselineFallsBack(t *testing.T) {
	got := NormalizeWith(seriesFrom(t, 0, 50, 100), Baseline{Date: dayN(1), Value: 0})
	assertValues(t, []float64{100, 200}, got)
}
