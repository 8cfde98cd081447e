package analytics

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collapse builds 40 days where the value drops at day 25 and price dips by priceDip.
func collapse(t *testing.T, valueAfter, priceDip float64) (value, price []float64) {
	t.Helper()
	value = append(repeat(1e9, 25), repeat(valueAfter, 15)...)
	price = append(repeat(2.0, 25), repeat(2.0*(1-priceDip), 15)...)
	return value, price
}

func TestCorrectorFixesQuantityCollapse(t *testing.T) {
	v, p := collapse(t, 6.5e8, 0.02)
	value, price := seriesFrom(t, 0, v...), seriesFrom(t, 0, p...)

	c := NewCorrector(DefaultCorrectorConfig(), nil)
	fixed, ev := c.Correct("dydx", value, price)
	require.NotNil(t, ev)

	assert.Equal(t, dayN(25), ev.SignalDate)
	assert.Equal(t, dayN(23), ev.BreakDate, "break is two points before the signal")
	assert.InDelta(t, 5e8, ev.QBaseline, 1e-6)
	assert.Equal(t, 17, ev.FixedPoints)
	assert.Len(t, ev.Samples, 5)
	assert.True(t, strings.HasPrefix(ev.Samples[0], "2024-01-24: MC 1,000,000,000→1,000,000,000"), ev.Samples[0])
	assert.InDelta(t, -2.0, ev.PriceChangePct, 1e-9)
	assert.Less(t, ev.QDropPct, -30.0)

	for i := 0; i < 23; i++ {
		assert.Equal(t, 1e9, fixed.Value(i), "pre-break day %d untouched", i)
	}
	for i := 23; i < fixed.Len(); i++ {
		assert.InDelta(t, ev.QBaseline, fixed.Value(i)/price.Value(i), 1e-6, "Q constant at day %d", i)
	}
	assert.Equal(t, v[30], value.Value(30), "input not mutated")
	assert.NotEqual(t, fixed.Value(30), value.Value(30))
}

func TestCorrectorIsIdempotent(t *testing.T) {
	v, p := collapse(t, 6.5e8, 0.02)
	value, price := seriesFrom(t, 0, v...), seriesFrom(t, 0, p...)
	c := NewCorrector(DefaultCorrectorConfig(), nil)

	once, ev := c.Correct("dydx", value, price)
	require.NotNil(t, ev)
	twice, ev2 := c.Correct("dydx", once, price)

	assert.Nil(t, ev2)
	assert.True(t, once.Equal(twice))
}

func TestCorrectorNoOp(t *testing.T) {
	c := NewCorrector(DefaultCorrectorConfig(), nil)

	tests := []struct {
		name  string
		value []float64
		price []float64
	}{
		{
			name:  "30% value drop with 2% price drop leaves Q above threshold",
			value: append(repeat(100, 25), repeat(70, 15)...),
			price: append(repeat(1, 25), repeat(0.98, 15)...),
		},
		{
			name:  "price collapses too",
			value: append(repeat(100, 25), repeat(40, 15)...),
			price: append(repeat(1, 25), repeat(0.4, 15)...),
		},
		{
			name:  "fewer than 20 overlapping dates",
			value: append(repeat(100, 10), repeat(10, 9)...),
			price: repeat(1, 19),
		},
		{
			name:  "insufficient history before break",
			value: append(repeat(100, 8), repeat(10, 20)...),
			price: repeat(1, 28),
		},
		{
			name:  "no positive quantity before break",
			value: append(repeat(-100, 15), repeat(-50, 15)...),
			price: repeat(1, 30),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := seriesFrom(t, 0, tt.value...)
			out, ev := c.Correct("x", value, seriesFrom(t, 0, tt.price...))
			assert.Nil(t, ev)
			assert.True(t, value.Equal(out))
		})
	}
}

func TestCorrectorLeavesDatesWithoutPrice(t *testing.T) {
	v, p := collapse(t, 6.5e8, 0.02)
	v = append(v, 6.5e8, 6.5e8)
	p[30] = math.NaN()
	value, price := seriesFrom(t, 0, v...), seriesFrom(t, 0, p...)

	fixed, ev := NewCorrector(DefaultCorrectorConfig(), nil).Correct("dydx", value, price)
	require.NotNil(t, ev)

	assert.Equal(t, 6.5e8, fixed.Value(30), "NaN price keeps provider value")
	assert.Equal(t, 6.5e8, fixed.Value(40), "date missing from prices keeps provider value")
	assert.Equal(t, 6.5e8, fixed.Value(41))
	assert.Equal(t, 16, ev.FixedPoints)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", thousands(0.2))
	assert.Equal(t, "999", thousands(999))
	assert.Equal(t, "1,000", thousands(1000))
	assert.Equal(t, "-12,345,678", thousands(-12345678))
	assert.Equal(t, "NaN", thousands(math.NaN()))
}
