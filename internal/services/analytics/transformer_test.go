package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

func testUniverse(t *testing.T) Universe {
	return Universe{
		Order: []string{"BTC", "USDT", "DOGE", "UNI"},
		Series: map[string]models.DailySeries{
			"BTC":  seriesFrom(t, 0, 600, 660, 720, 780, 840),
			"USDT": seriesFrom(t, 0, 100, 100, 100, 100, 100),
			"DOGE": seriesFrom(t, 2, 50, 75, 100),
			"UNI":  seriesFrom(t, 0, 10, 11, 12, 13, 14),
		},
		Meta: map[string]models.Meta{
			"BTC":  {Group: models.GroupInfra},
			"USDT": {Group: models.GroupDeFi},
			"DOGE": {Group: models.GroupMemes},
			"UNI":  {Group: models.GroupDeFi},
		},
		Corrected: map[string]bool{},
	}
}

func TestTransformNormalizedLinear(t *testing.T) {
	tr := NewTransformer(BaselineResolver{}, nil)
	cfg := models.TransformConfig{Smoothing: models.SmoothingNone, View: models.ViewNormalizedLinear, Group: models.FilterInfraMemes}

	res, err := tr.Transform(testUniverse(t), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"BTC", "DOGE", models.DomSymbol}, res.Order)
	assertValues(t, []float64{100, 110, 120, 130, 140}, res.Series["BTC"])
	assertValues(t, []float64{nan, nan, 100, 150, 200}, res.Series["DOGE"])
	require.Contains(t, res.Series, models.DomSymbol)
	assert.Equal(t, 100.0, res.Series[models.DomSymbol].Value(0))
}

func TestTransformMarketCapViewKeepsLevels(t *testing.T) {
	tr := NewTransformer(BaselineResolver{}, nil)
	cfg := models.TransformConfig{Smoothing: models.SmoothingNone, View: models.ViewMarketCapLog, Group: models.FilterAll}

	res, err := tr.Transform(testUniverse(t), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"BTC", "USDT", "DOGE", "UNI"}, res.Order)
	assertValues(t, []float64{600, 660, 720, 780, 840}, res.Series["BTC"])
}

func TestTransformUsesOverrideForCorrectedAssets(t *testing.T) {
	u := testUniverse(t)
	u.Series["BTC"] = seriesFrom(t, 0, 1e8, 3e8, 6e8, 9e8, 1.2e9)
	u.Corrected["BTC"] = true
	tr := NewTransformer(BaselineResolver{MinValid: MinValidValue}, nil)

	res, err := tr.Transform(u, models.TransformConfig{Smoothing: models.SmoothingNone, View: models.ViewNormalizedLinear, Group: models.FilterInfra})
	require.NoError(t, err)
	assertValues(t, []float64{nan, 100, 200, 300, 400}, res.Series["BTC"])
}

func TestTransformRejectsUnknownModes(t *testing.T) {
	tr := NewTransformer(BaselineResolver{}, nil)
	u := testUniverse(t)

	_, err := tr.Transform(u, models.TransformConfig{Smoothing: models.SmoothingMode(9), Group: models.FilterAll})
	assert.ErrorIs(t, err, models.ErrUnknownSmoothing)
	_, err = tr.Transform(u, models.TransformConfig{View: models.NormalizationView(9), Group: models.FilterAll})
	assert.ErrorIs(t, err, models.ErrUnknownView)
	_, err = tr.Transform(u, models.TransformConfig{Group: "whales"})
	assert.ErrorIs(t, err, models.ErrUnknownGroup)
}

func TestTransformerCorrelateRequiresShownSymbols(t *testing.T) {
	tr := NewTransformer(BaselineResolver{}, nil)
	cfg := models.TransformConfig{Smoothing: models.SmoothingNone, View: models.ViewMarketCapLog, Group: models.FilterAll}

	_, err := tr.Correlate(testUniverse(t), cfg, "BTC", models.DomSymbol, models.CorrReturns, 3)
	assert.ErrorIs(t, err, ErrSymbolNotShown)

	res, err := tr.Correlate(testUniverse(t), cfg, "BTC", "UNI", models.CorrLevels, 3)
	require.NoError(t, err)
	require.NotNil(t, res.Correlation)
	assert.InDelta(t, 1.0, *res.Correlation, 1e-9)
}
