package models

// Requests for dashboard HTTP endpoints.

type SeriesRequest struct {
	Smoothing string `query:"smoothing" json:"smoothing" default:"sma7" validate:"oneof=none sma7 ema14 sma30"`
	View      string `query:"view" json:"view" default:"linear" validate:"oneof=linear log mcap"`
	// Group is checked by ParseGroupFilter; a raw "+" in a query decodes to a space.
	Group string `query:"group" json:"group" default:"infra+memes"`
}

// TransformConfig parses the request into a TransformConfig.
func (r SeriesRequest) TransformConfig() (TransformConfig, error) {
	s, err := ParseSmoothingMode(r.Smoothing)
	if err != nil {
		return TransformConfig{}, err
	}
	v, err := ParseView(r.View)
	if err != nil {
		return TransformConfig{}, err
	}
	g, err := ParseGroupFilter(r.Group)
	if err != nil {
		return TransformConfig{}, err
	}
	return TransformConfig{Smoothing: s, View: v, Group: g}, nil
}

type RawRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type CorrelationRequest struct {
	SeriesRequest
	A    string `query:"a" json:"a" validate:"required"`
	B    string `query:"b" json:"b" validate:"required,nefield=A"`
	Mode string `query:"mode" json:"mode" default:"returns" validate:"oneof=off returns levels"`
}

type ChangeRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
	Days      int    `query:"days" json:"days" validate:"gte=0,lte=3650"`
	Timeframe string `query:"timeframe" json:"timeframe" default:"1d" validate:"oneof=1d 1w 1m 1y"`
	Metric    string `query:"metric" json:"metric" default:"market_cap" validate:"oneof=market_cap price"`
}

// Responses.

type SeriesResponse struct {
	Order  []string           `json:"order"`
	Series map[string][]Point `json:"series"`
	Meta   map[string]Meta    `json:"meta"`
}

type RawResponse struct {
	Symbol     string           `json:"symbol"`
	MarketCap  []Point          `json:"market_cap"`
	Price      []Point          `json:"price"`
	Correction *CorrectionEvent `json:"correction,omitempty"`
}

type AssetView struct {
	AssetDescriptor
	Loaded    bool `json:"loaded"`
	Corrected bool `json:"corrected"`
}

type StatusResponse struct {
	CoinStatus
	RunID       string            `json:"run_id,omitempty"`
	LoadedAt    string            `json:"loaded_at,omitempty"`
	Corrections []CorrectionEvent `json:"corrections,omitempty"`
}
