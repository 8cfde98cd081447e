package analytics

import (
	"errors"
	"fmt"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
)

// Universe is a loaded data set in registry order.
type Universe struct {
	Order     []string
	Series    map[string]models.DailySeries
	Meta      map[string]models.Meta
	Corrected map[string]bool
}

// Prepared is a universe aligned, masked and smoothed for one mode.
type Prepared struct {
	Frame     models.Frame
	Overrides map[string]Baseline
}

// Transformer renders a Universe for a TransformConfig.
type Transformer struct {
	baselines BaselineResolver
	l         *logger.Logger
}

// NewTransformer creates a transformer. Corrected assets are rebased with
// the resolver's override.
func NewTransformer(baselines BaselineResolver, l *logger.Logger) *Transformer {
	if l == nil {
		l = logger.Nop()
	}
	if baselines.MinValid == 0 {
		baselines.MinValid = MinValidValue
	}
	return &Transformer{baselines: baselines, l: l}
}

// Prepare aligns u, masks each column before its start and smooths it.
func (t *Transformer) Prepare(u Universe, mode models.SmoothingMode) (Prepared, error) {
	if !mode.Valid() {
		return Prepared{}, fmt.Errorf("%w: %d", models.ErrUnknownSmoothing, int(mode))
	}
	frame := Align(u.Order, u.Series)

	overrides := make(map[string]Baseline)
	for _, sym := range frame.Symbols {
		col, _ := frame.Series(sym)
		if b, ok := t.baselines.Resolve(sym, col, u.Corrected[sym]); ok {
			overrides[sym] = b
			t.l.Debug("transform.baseline override",
				logger.String("symbol", sym),
				logger.Date("date", b.Date),
				logger.Float64("value", b.Value),
			)
		} else if u.Corrected[sym] {
			t.l.Warn("transform.baseline override not found, using first valid value", logger.String("symbol", sym))
		}
	}

	smoothed := frame.Map(func(sym string, col models.DailySeries) models.DailySeries {
		var ov *Baseline
		if b, ok := overrides[sym]; ok {
			ov = &b
		}
		s, _ := Smooth(MaskBeforeStart(col, ov), mode)
		return s
	})
	return Prepared{Frame: smoothed, Overrides: overrides}, nil
}

// Symbols lists the symbols cfg shows, in registry order.
func (t *Transformer) Symbols(u Universe, cfg models.TransformConfig) []string {
	meta := make(map[string]models.Meta, len(u.Meta)+1)
	for k, v := range u.Meta {
		meta[k] = v
	}
	meta[models.DomSymbol] = models.Meta{Category: models.DomCategory, Group: models.DomGroup}
	return ForView(FilterGroup(u.Order, meta, cfg.Group), cfg.View)
}

// Transform renders every shown symbol. Symbols with nothing to draw are left out.
func (t *Transformer) Transform(u Universe, cfg models.TransformConfig) (models.TransformResult, error) {
	if !cfg.View.Valid() {
		return models.TransformResult{}, fmt.Errorf("%w: %d", models.ErrUnknownView, int(cfg.View))
	}
	if _, err := models.ParseGroupFilter(string(cfg.Group)); err != nil {
		return models.TransformResult{}, err
	}
	p, err := t.Prepare(u, cfg.Smoothing)
	if err != nil {
		return models.TransformResult{}, err
	}

	res := models.TransformResult{Series: make(map[string]models.DailySeries)}
	for _, sym := range t.Symbols(u, cfg) {
		s, ok := t.Render(p, sym, cfg.View)
		if !ok {
			continue
		}
		res.Order = append(res.Order, sym)
		res.Series[sym] = s
	}
	return res, nil
}

// Render returns one symbol of p in view.
func (t *Transformer) Render(p Prepared, sym string, view models.NormalizationView) (models.DailySeries, bool) {
	s, ok := t.Level(p, sym, view)
	if !ok || sym == models.DomSymbol || view == models.ViewMarketCapLog {
		return s, ok
	}
	if b, ok := p.Overrides[sym]; ok {
		return NormalizeWith(s, b), true
	}
	return Normalize(s), true
}

// Level returns the smoothed series of sym before normalization. The
// dominance index is already normalized and does not exist in the market
// cap view.
func (t *Transformer) Level(p Prepared, sym string, view models.NormalizationView) (models.DailySeries, bool) {
	if sym == models.DomSymbol {
		if view == models.ViewMarketCapLog {
			return models.DailySeries{}, false
		}
		return Dominance(p.Frame, models.DomBase)
	}
	s, ok := p.Frame.Series(sym)
	if !ok || s.FirstValid() < 0 {
		return models.DailySeries{}, false
	}
	return s, true
}

// ErrSymbolNotShown is returned for a symbol the view does not carry.
var ErrSymbolNotShown = errors.New("symbol not available in this view")

// Correlate correlates two shown symbols on their smoothed levels.
func (t *Transformer) Correlate(u Universe, cfg models.TransformConfig, a, b string, mode models.CorrMode, minDays int) (CorrelationResult, error) {
	if mode == models.CorrOff {
		return CorrelationResult{}, ErrCorrelationOff
	}
	shown := make(map[string]bool)
	for _, sym := range t.Symbols(u, cfg) {
		shown[sym] = true
	}
	for _, sym := range []string{a, b} {
		if !shown[sym] {
			return CorrelationResult{}, fmt.Errorf("%w: %s", ErrSymbolNotShown, sym)
		}
	}
	p, err := t.Prepare(u, cfg.Smoothing)
	if err != nil {
		return CorrelationResult{}, err
	}
	sa, okA := t.Level(p, a, cfg.View)
	sb, okB := t.Level(p, b, cfg.View)
	if !okA || !okB {
		return CorrelationResult{}, fmt.Errorf("%w: %s or %s", ErrSymbolNotShown, a, b)
	}
	return Correlate(sa, sb, mode, minDays)
}
