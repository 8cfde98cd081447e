package usecase

import (
	"time"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seriesOf(values ...float64) models.DailySeries {
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = day0.AddDate(0, 0, i)
	}
	s, err := models.NewDailySeries(dates, values)
	if err != nil {
		panic(err)
	}
	return s
}

func flatSeries(v float64, n int) models.DailySeries {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = v
	}
	return seriesOf(vs...)
}

func rampSeries(start, step float64, n int) models.DailySeries {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = start + step*float64(i)
	}
	return seriesOf(vs...)
}
