package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	domsvc "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/service"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/services/features"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// CorrectorConfig holds the detection thresholds.
type CorrectorConfig struct {
	QDropThreshold     float64 // implied quantity day change at or below this flags a break
	PriceDropThreshold float64 // unless price fell at least this much as well
	MinOverlap         int
	MinHistory         int
	Lookback           int
	VerifyPoints       int
	MaxSamples         int
}

// DefaultCorrectorConfig returns the stock thresholds.
func DefaultCorrectorConfig() CorrectorConfig {
	return CorrectorConfig{
		QDropThreshold:     -0.30,
		PriceDropThreshold: -0.30,
		MinOverlap:         20,
		MinHistory:         10,
		Lookback:           2,
		VerifyPoints:       5,
		MaxSamples:         5,
	}
}

// Corrector detects a collapse of Q = value / price that price does not
// explain and rebuilds the value tail as qBaseline * price.
type Corrector struct {
	cfg CorrectorConfig
	l   *logger.Logger
}

// NewCorrector creates a corrector. A nil logger discards output.
func NewCorrector(cfg CorrectorConfig, l *logger.Logger) *Corrector {
	if l == nil {
		l = logger.Nop()
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = 5
	}
	return &Corrector{cfg: cfg, l: l}
}

// Correct returns the corrected value series and the applied event, or the
// input and nil when no fix applies. Running it on its own output is a no-op.
func (c *Corrector) Correct(asset string, value, price models.DailySeries) (models.DailySeries, *models.CorrectionEvent) {
	common := overlap(value, price)
	if len(common.pos) < c.cfg.MinOverlap {
		return value, nil
	}

	q := make([]float64, len(common.pos))
	for i := range q {
		q[i] = impliedQuantity(common.values[i], common.prices[i])
	}
	qPct := features.PctChange(q)
	pPct := features.PctChange(common.prices)

	signal := -1
	for i := range qPct {
		if qPct[i] <= c.cfg.QDropThreshold && pPct[i] > c.cfg.PriceDropThreshold {
			signal = i
			break
		}
	}
	if signal < 0 {
		return value, nil
	}

	breakPos := signal - c.cfg.Lookback
	if breakPos < 0 {
		breakPos = 0
	}
	if breakPos < c.cfg.MinHistory {
		c.l.Debug("corrector.skip insufficient history",
			logger.String("asset", asset),
			logger.Int("points_before_break", breakPos),
		)
		return value, nil
	}

	qBaseline := math.NaN()
	for i := breakPos - 1; i >= 0; i-- {
		if common.values[i] > 0 && common.prices[i] > 0 {
			qBaseline = common.values[i] / common.prices[i]
			break
		}
	}
	if math.IsNaN(qBaseline) || qBaseline <= 0 {
		return value, nil
	}

	breakDate := value.Date(common.pos[breakPos])
	out := value.Values()
	samples := make([]string, 0, c.cfg.MaxSamples)
	var check []float64
	fixed := 0
	for j := common.pos[breakPos]; j < value.Len(); j++ {
		p, ok := price.Get(value.Date(j))
		if !ok || math.IsNaN(p) || p <= 0 {
			continue
		}
		orig := out[j]
		out[j] = qBaseline * p
		fixed++
		if len(samples) < c.cfg.MaxSamples {
			samples = append(samples, fmt.Sprintf("%s: MC %s→%s",
				value.Date(j).Format(models.DateLayout), thousands(orig), thousands(out[j])))
		}
		if len(check) < c.cfg.VerifyPoints {
			check = append(check, out[j]/p)
		}
	}
	if fixed == 0 {
		return value, nil
	}

	if std := features.SampleStd(check); !math.IsNaN(std) && std > math.Max(1e-6*qBaseline, 1e-9) {
		c.l.Warn("corrector.verify quantity not constant after fix",
			logger.String("asset", asset),
			logger.Float64("q_std", std),
			logger.Float64("q_baseline", qBaseline),
		)
	}

	ev := &models.CorrectionEvent{
		Asset:          asset,
		SignalDate:     value.Date(common.pos[signal]),
		BreakDate:      breakDate,
		QBaseline:      qBaseline,
		QDropPct:       qPct[signal] * 100,
		PriceChangePct: pPct[signal] * 100,
		FixedPoints:    fixed,
		Samples:        samples,
	}
	c.l.Warn("corrector.fixed corrupted supply",
		logger.String("asset", asset),
		logger.Date("signal_date", ev.SignalDate),
		logger.Date("break_date", ev.BreakDate),
		logger.Float64("q_drop_pct", ev.QDropPct),
		logger.Float64("price_change_pct", ev.PriceChangePct),
		logger.Float64("q_baseline", qBaseline),
		logger.Int("fixed_points", fixed),
		logger.String("samples", strings.Join(samples, "; ")),
	)
	return value.WithValues(out), ev
}

var _ domsvc.AnomalyCorrector = (*Corrector)(nil)

// aligned holds the dates shared by a value and a price series; pos indexes
// into the value series.
type aligned struct {
	pos    []int
	values []float64
	prices []float64
}

func overlap(value, price models.DailySeries) aligned {
	var a aligned
	for i := 0; i < value.Len(); i++ {
		p, ok := price.Get(value.Date(i))
		if !ok {
			continue
		}
		a.pos = append(a.pos, i)
		a.values = append(a.values, value.Value(i))
		a.prices = append(a.prices, p)
	}
	return a
}

func impliedQuantity(v, p float64) float64 {
	if math.IsNaN(v) || math.IsNaN(p) || p <= 0 {
		return math.NaN()
	}
	return v / p
}

// thousands formats a rounded number with comma separators.
func thousands(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	s := strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
