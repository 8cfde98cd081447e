package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownSmoothing = errors.New("unknown smoothing mode")
	ErrUnknownView      = errors.New("unknown view")
	ErrUnknownGroup     = errors.New("unknown group")
	ErrUnknownCorrMode  = errors.New("unknown correlation mode")
)

// SmoothingMode is the closed set of smoothing options.
type SmoothingMode int

const (
	SmoothingNone SmoothingMode = iota
	SmoothingSMA7
	SmoothingEMA14
	SmoothingSMA30
)

// Label returns the display label.
func (m SmoothingMode) Label() string {
	switch m {
	case SmoothingNone:
		return "No smoothing"
	case SmoothingSMA7:
		return "7D SMA"
	case SmoothingEMA14:
		return "14D EMA"
	case SmoothingSMA30:
		return "30D SMA"
	default:
		return fmt.Sprintf("SmoothingMode(%d)", int(m))
	}
}

func (m SmoothingMode) String() string { return m.Label() }

// Valid reports whether m is one of the declared modes.
func (m SmoothingMode) Valid() bool { return m >= SmoothingNone && m <= SmoothingSMA30 }

// ParseSmoothingMode accepts display labels and short codes.
func ParseSmoothingMode(s string) (SmoothingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "no smoothing", "none", "off":
		return SmoothingNone, nil
	case "7d sma", "sma7":
		return SmoothingSMA7, nil
	case "14d ema", "ema14":
		return SmoothingEMA14, nil
	case "30d sma", "sma30":
		return SmoothingSMA30, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSmoothing, s)
	}
}

// NormalizationView is the closed set of chart views.
type NormalizationView int

const (
	ViewNormalizedLinear NormalizationView = iota
	ViewNormalizedLog
	ViewMarketCapLog
)

// Label returns the display label.
func (v NormalizationView) Label() string {
	switch v {
	case ViewNormalizedLinear:
		return "Normalized (Linear)"
	case ViewNormalizedLog:
		return "Normalized (Log)"
	case ViewMarketCapLog:
		return "Market Cap (Log)"
	default:
		return fmt.Sprintf("NormalizationView(%d)", int(v))
	}
}

func (v NormalizationView) String() string { return v.Label() }

// Valid reports whether v is one of the declared views.
func (v NormalizationView) Valid() bool { return v >= ViewNormalizedLinear && v <= ViewMarketCapLog }

// ParseView accepts display labels and short codes.
func ParseView(s string) (NormalizationView, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normalized (linear)", "linear":
		return ViewNormalizedLinear, nil
	case "normalized (log)", "log":
		return ViewNormalizedLog, nil
	case "market cap (log)", "mcap":
		return ViewMarketCapLog, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
}

// GroupFilter selects a subset of the registry.
type GroupFilter string

const (
	FilterAll        GroupFilter = "all"
	FilterInfra      GroupFilter = "infra"
	FilterDeFi       GroupFilter = "defi"
	FilterMemes      GroupFilter = "memes"
	FilterConsumer   GroupFilter = "consumer"
	FilterInfraMemes GroupFilter = "infra+memes"
)

// DefaultFilterName is the group shown when none is selected.
const DefaultFilterName = FilterInfraMemes

// ParseGroupFilter validates a group name. "infra memes" is read as
// "infra+memes".
func ParseGroupFilter(s string) (GroupFilter, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "+")
	switch g := GroupFilter(name); g {
	case FilterAll, FilterInfra, FilterDeFi, FilterMemes, FilterConsumer, FilterInfraMemes:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGroup, s)
	}
}

// Groups returns the asset groups the filter admits.
func (g GroupFilter) Groups() []string {
	switch g {
	case FilterInfra:
		return []string{GroupInfra}
	case FilterDeFi:
		return []string{GroupDeFi}
	case FilterMemes:
		return []string{GroupMemes}
	case FilterConsumer:
		return []string{GroupConsumer}
	case FilterInfraMemes:
		return []string{GroupInfra, GroupMemes}
	default:
		return nil
	}
}

// TransformConfig selects how the loaded series are rendered.
type TransformConfig struct {
	Smoothing SmoothingMode
	View      NormalizationView
	Group     GroupFilter
}

// DefaultTransformConfig mirrors the dashboard defaults.
func DefaultTransformConfig() TransformConfig {
	return TransformConfig{Smoothing: SmoothingSMA7, View: ViewNormalizedLinear, Group: DefaultFilterName}
}

// Normalized reports whether the view indexes series to 100.
func (c TransformConfig) Normalized() bool {
	return c.View == ViewNormalizedLinear || c.View == ViewNormalizedLog
}

// CorrMode selects what the correlation is computed on.
type CorrMode int

const (
	CorrOff CorrMode = iota
	CorrReturns
	CorrLevels
)

func (m CorrMode) String() string {
	switch m {
	case CorrOff:
		return "off"
	case CorrReturns:
		return "returns"
	case CorrLevels:
		return "levels"
	default:
		return fmt.Sprintf("CorrMode(%d)", int(m))
	}
}

// ParseCorrMode parses off, returns or levels.
func ParseCorrMode(s string) (CorrMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return CorrOff, nil
	case "returns", "":
		return CorrReturns, nil
	case "levels":
		return CorrLevels, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCorrMode, s)
	}
}

// TransformResult is an ordered mapping of symbol to rendered series.
type TransformResult struct {
	Order  []string
	Series map[string]DailySeries
}
