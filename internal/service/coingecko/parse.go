package coingecko

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// marketChart is the market_chart response body. Each point is [ts_ms, value];
// value may be null.
type marketChart struct {
	Prices     [][]*float64 `json:"prices"`
	MarketCaps [][]*float64 `json:"market_caps"`
}

// Parse decodes a market_chart payload into daily value and price series.
func Parse(payload []byte) (value, price models.DailySeries, err error) {
	var mc marketChart
	if err := json.Unmarshal(payload, &mc); err != nil {
		return value, price, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(mc.MarketCaps) == 0 {
		return value, price, fmt.Errorf("%w: missing or empty market_caps", ErrParse)
	}
	caps, err := points(mc.MarketCaps)
	if err != nil {
		return value, price, fmt.Errorf("%w: market_caps: %v", ErrParse, err)
	}
	prices, err := points(mc.Prices)
	if err != nil {
		return value, price, fmt.Errorf("%w: prices: %v", ErrParse, err)
	}
	return models.SeriesFromPoints(caps), models.SeriesFromPoints(prices), nil
}

func points(raw [][]*float64) ([]models.RawPoint, error) {
	out := make([]models.RawPoint, 0, len(raw))
	for i, p := range raw {
		if len(p) < 2 || p[0] == nil {
			return nil, fmt.Errorf("point %d: want [ts, value]", i)
		}
		v := math.NaN()
		if p[1] != nil {
			v = *p[1]
		}
		out = append(out, models.RawPoint{Timestamp: int64(*p[0]), Value: v})
	}
	return out, nil
}
