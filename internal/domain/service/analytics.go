package service

import "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"

// AnomalyCorrector repairs implied-quantity corruption in a value series.
// It returns the input unchanged and a nil event when nothing is fixed.
type AnomalyCorrector interface {
	Correct(asset string, value, price models.DailySeries) (models.DailySeries, *models.CorrectionEvent)
}
