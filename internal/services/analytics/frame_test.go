package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

func TestAlignUnionAndForwardFill(t *testing.T) {
	a := seriesFrom(t, 0, 1, 2, nan, 4)
	b := seriesFrom(t, 2, 10, 20, 30, 40)
	f := Align([]string{"B", "A", "MISSING"}, map[string]models.DailySeries{"A": a, "B": b})

	assert.Equal(t, []string{"B", "A"}, f.Symbols)
	require.Len(t, f.Dates, 6)
	assert.Equal(t, dayN(0), f.Dates[0])
	assert.Equal(t, dayN(5), f.Dates[5])

	colA, _ := f.Series("A")
	colB, _ := f.Series("B")
	assertValues(t, []float64{1, 2, 2, 4, 4, 4}, colA)
	assertValues(t, []float64{nan, nan, 10, 20, 30, 40}, colB)
}

func TestMaskBeforeStart(t *testing.T) {
	s := seriesFrom(t, 0, 0, 5, 6, 7)
	assertValues(t, []float64{nan, 5, 6, 7}, MaskBeforeStart(s, nil))
	assertValues(t, []float64{nan, nan, 6, 7}, MaskBeforeStart(s, &Baseline{Date: dayN(2), Value: 6}))
	assertValues(t, []float64{nan, nan}, MaskBeforeStart(seriesFrom(t, 0, 0, nan), nil))
}

func TestDominance(t *testing.T) {
	f := models.Frame{
		Dates:   []time.Time{dayN(0), dayN(1), dayN(2)},
		Symbols: []string{"BTC", "USDT"},
		Columns: map[string][]float64{
			"BTC":  {75, 150, nan},
			"USDT": {25, 50, 100},
		},
	}
	got, ok := Dominance(f, "USDT")
	require.True(t, ok)
	// shares 25%, 25%, 100% indexed to the first
	assertValues(t, []float64{100, 100, 400}, got)

	_, ok = Dominance(f, "XYZ")
	assert.False(t, ok)

	f.Columns["USDT"] = []float64{25, 50, nan}
	_, ok = Dominance(f, "USDT")
	assert.False(t, ok, "an all-NaN date sums to zero")
}

func TestFilterGroup(t *testing.T) {
	meta := map[string]models.Meta{
		"BTC":            {Group: models.GroupInfra},
		"UNI":            {Group: models.GroupDeFi},
		"DOGE":           {Group: models.GroupMemes},
		"ETH":            {Group: models.GroupInfra},
		models.DomSymbol: {Group: models.DomGroup},
	}
	order := []string{"BTC", "UNI", "DOGE", "ETH", "UNKNOWN"}

	tests := []struct {
		group models.GroupFilter
		want  []string
	}{
		{models.FilterAll, []string{"BTC", "UNI", "DOGE", "ETH", models.DomSymbol}},
		{models.FilterInfra, []string{"BTC", "ETH", models.DomSymbol}},
		{models.FilterDeFi, []string{"UNI", models.DomSymbol}},
		{models.FilterConsumer, []string{models.DomSymbol}},
		{models.FilterInfraMemes, []string{"BTC", "DOGE", "ETH", models.DomSymbol}},
	}
	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			assert.Equal(t, tt.want, FilterGroup(order, meta, tt.group))
		})
	}

	assert.Equal(t, []string{"BTC", "ETH"}, ForView([]string{"BTC", models.DomSymbol, "ETH"}, models.ViewMarketCapLog))
	assert.Equal(t, []string{"BTC", models.DomSymbol}, ForView([]string{"BTC", models.DomSymbol}, models.ViewNormalizedLog))
}
