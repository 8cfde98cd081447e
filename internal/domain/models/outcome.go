package models

import "time"

// OutcomeKind tags a FetchOutcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeTransient
	OutcomeTerminal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransient:
		return "transient"
	case OutcomeTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Failure reasons.
const (
	ReasonNotFound         = "not_found"
	ReasonUnauthorized     = "unauthorized"
	ReasonParse            = "parse_error"
	ReasonRetriesExhausted = "retries_exhausted"
	ReasonCancelled        = "cancelled"
	ReasonTransient        = "transient"
)

// FetchOutcome is the result of fetching one asset.
type FetchOutcome struct {
	Kind       OutcomeKind
	AssetID    string
	Value      DailySeries
	Price      DailySeries
	Correction *CorrectionEvent
	Reason     string
	Err        error
}

// Succeeded builds a Success outcome.
func Succeeded(assetID string, value, price DailySeries, ev *CorrectionEvent) FetchOutcome {
	return FetchOutcome{Kind: OutcomeSuccess, AssetID: assetID, Value: value, Price: price, Correction: ev}
}

// Transient builds a TransientFailure outcome.
func Transient(assetID string, err error) FetchOutcome {
	return FetchOutcome{Kind: OutcomeTransient, AssetID: assetID, Reason: ReasonTransient, Err: err}
}

// Terminal builds a TerminalFailure outcome.
func Terminal(assetID, reason string, err error) FetchOutcome {
	return FetchOutcome{Kind: OutcomeTerminal, AssetID: assetID, Reason: reason, Err: err}
}

// OK reports a Success outcome.
func (o FetchOutcome) OK() bool { return o.Kind == OutcomeSuccess }

// CorrectionEvent describes one applied implied-quantity fix.
type CorrectionEvent struct {
	Asset          string    `json:"asset"`
	SignalDate     time.Time `json:"signal_date"`
	BreakDate      time.Time `json:"break_date"`
	QBaseline      float64   `json:"q_baseline"`
	QDropPct       float64   `json:"q_drop_pct"`
	PriceChangePct float64   `json:"price_change_pct"`
	FixedPoints    int       `json:"fixed_points"`
	Samples        []string  `json:"samples"`
}

// CoinStatus summarizes one load over the registry.
type CoinStatus struct {
	Available     []string `json:"available"`
	Missing       []string `json:"missing"`
	TotalExpected int      `json:"total_expected"`
	TotalLoaded   int      `json:"total_loaded"`
}

// FailedAsset records why a registry entry could not be loaded.
type FailedAsset struct {
	ProviderID string `json:"id"`
	Symbol     string `json:"symbol"`
	Reason     string `json:"reason"`
	Error      string `json:"error"`
}

// LoadSummary is published after each load.
type LoadSummary struct {
	RunID      string        `json:"run_id"`
	LoadedAt   time.Time     `json:"loaded_at"`
	Status     CoinStatus    `json:"status"`
	Failed     []FailedAsset `json:"failed,omitempty"`
	Corrected  []string      `json:"corrected,omitempty"`
	DurationMs int64         `json:"duration_ms"`
}
