package analytics

import (
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
)

// FilterGroup keeps symbols whose group g admits, in input order. The
// dominance pseudo-series is appended when meta carries it.
func FilterGroup(symbols []string, meta map[string]models.Meta, g models.GroupFilter) []string {
	admit := make(map[string]bool)
	for _, grp := range g.Groups() {
		admit[grp] = true
	}
	out := make([]string, 0, len(symbols)+1)
	for _, sym := range symbols {
		if sym == models.DomSymbol {
			continue
		}
		m, ok := meta[sym]
		if !ok {
			continue
		}
		if len(admit) == 0 || admit[m.Group] {
			out = append(out, sym)
		}
	}
	if _, ok := meta[models.DomSymbol]; ok {
		out = append(out, models.DomSymbol)
	}
	return out
}

// ForView drops the dominance pseudo-series from the market cap view.
func ForView(symbols []string, view models.NormalizationView) []string {
	if view != models.ViewMarketCapLog {
		return symbols
	}
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if sym != models.DomSymbol {
			out = append(out, sym)
		}
	}
	return out
}
