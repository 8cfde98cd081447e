package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/services/analytics"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/usecase"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ramp(start, step float64, n int) models.DailySeries {
	dates := make([]time.Time, n)
	vals := make([]float64, n)
	for i := range vals {
		dates[i] = day0.AddDate(0, 0, i)
		vals[i] = start + step*float64(i)
	}
	s, _ := models.NewDailySeries(dates, vals)
	return s
}

type stubFetcher struct {
	mu   sync.Mutex
	fail bool
}

func (s *stubFetcher) Fetch(_ context.Context, id string) models.FetchOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail || id == "dogecoin" {
		return models.Terminal(id, models.ReasonNotFound, errors.New("nope"))
	}
	var ev *models.CorrectionEvent
	if id == "bitcoin" {
		ev = &models.CorrectionEvent{Asset: id, FixedPoints: 2}
	}
	return models.Succeeded(id, ramp(5e8, 1e7, 30), ramp(1, 0.01, 30), ev)
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type testServer struct {
	e  *echo.Echo
	h  *DashboardEchoHandler
	dm *usecase.DataManager
	f  *stubFetcher
}

func newTestServer(t *testing.T, load bool) testServer {
	t.Helper()
	reg := []models.AssetDescriptor{
		{ProviderID: "bitcoin", Symbol: "BTC", Category: "Store of Value / Base asset", Group: models.GroupInfra},
		{ProviderID: "ethereum", Symbol: "ETH", Category: "Layer 1 (L1)", Group: models.GroupInfra},
		{ProviderID: "tether", Symbol: "USDT", Category: "Stablecoins", Group: models.GroupDeFi},
		{ProviderID: "dogecoin", Symbol: "DOGE", Category: "Memecoins", Group: models.GroupMemes},
	}
	f := &stubFetcher{}
	b := usecase.NewBatchFetcher(f, usecase.BatchConfig{Concurrent: false}, usecase.WithBatchSleeper(noSleep))
	dm := usecase.NewDataManager(reg, b, analytics.NewTransformer(analytics.BaselineResolver{}, nil))
	if load {
		_, err := dm.Load(context.Background())
		require.NoError(t, err)
	}
	h := NewDashboardEchoHandler(nil, dm)
	e := echo.New()
	h.RegisterRoutes(e)
	return testServer{e: e, h: h, dm: dm, f: f}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s testServer) do(t *testing.T, method, target string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Status)
	return rec.Code, env
}

func TestHealthAndStatusBeforeLoad(t *testing.T) {
	s := newTestServer(t, false)

	code, _ := s.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, env := s.do(t, http.MethodGet, "/api/status")
	assert.Equal(t, http.StatusOK, code)
	var st models.StatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, 4, st.TotalExpected)
	assert.Empty(t, st.RunID)

	code, _ = s.do(t, http.MethodGet, "/api/series")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestStatusAndAssets(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(t, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, code)
	var st models.StatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, []string{"BTC", "ETH", "USDT"}, st.Available)
	assert.Equal(t, []string{"DOGE"}, st.Missing)
	assert.NotEmpty(t, st.RunID)
	require.Len(t, st.Corrections, 1)

	code, env = s.do(t, http.MethodGet, "/api/assets")
	require.Equal(t, http.StatusOK, code)
	var assets []models.AssetView
	require.NoError(t, json.Unmarshal(env.Data, &assets))
	require.Len(t, assets, 4)
	assert.Equal(t, "BTC", assets[0].Symbol)
	assert.True(t, assets[0].Loaded)
	assert.True(t, assets[0].Corrected)
	assert.False(t, assets[3].Loaded)
}

func TestSeriesDefaultsAndViews(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(t, http.MethodGet, "/api/series")
	require.Equal(t, http.StatusOK, code)
	var res models.SeriesResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, []string{"BTC", "ETH", models.DomSymbol}, res.Order, "infra+memes by default")
	require.NotNil(t, res.Series["BTC"][0].Value)
	assert.InDelta(t, 100, *res.Series["BTC"][0].Value, 1e-9)
	assert.Equal(t, models.DomGroup, res.Meta[models.DomSymbol].Group)

	code, env = s.do(t, http.MethodGet, "/api/series?smoothing=none&view=mcap&group=all")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, []string{"BTC", "ETH", "USDT"}, res.Order)
	assert.Equal(t, 5e8, *res.Series["USDT"][0].Value)

	code, env = s.do(t, http.MethodGet, "/api/series?group=infra+memes")
	require.Equal(t, http.StatusOK, code, string(env.Data))
}

func TestSeriesValidation(t *testing.T) {
	s := newTestServer(t, true)
	tests := []struct {
		name   string
		target string
	}{
		{"bad smoothing", "/api/series?smoothing=sma99"},
		{"bad view", "/api/series?view=pie"},
		{"bad group", "/api/series?group=nfts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := s.do(t, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}

func TestRaw(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(t, http.MethodGet, "/api/raw?symbol=BTC")
	require.Equal(t, http.StatusOK, code)
	var raw models.RawResponse
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Len(t, raw.MarketCap, 30)
	assert.Len(t, raw.Price, 30)
	require.NotNil(t, raw.Correction)
	assert.Equal(t, "2024-01-01", raw.MarketCap[0].Date)

	code, _ = s.do(t, http.MethodGet, "/api/raw?symbol=DOGE")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodGet, "/api/raw")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCorrelation(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(t, http.MethodGet, "/api/correlation?a=BTC&b=ETH&mode=levels&group=all&smoothing=none")
	require.Equal(t, http.StatusOK, code)
	var res analytics.CorrelationResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotNil(t, res.Correlation)
	assert.InDelta(t, 1, *res.Correlation, 1e-9)
	assert.Equal(t, "levels", res.Mode)

	code, env = s.do(t, http.MethodGet, "/api/correlation?a=BTC&b=ETH&mode=off")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Nil(t, res.Correlation)

	code, _ = s.do(t, http.MethodGet, "/api/correlation?a=BTC&b=USDT&group=infra")
	assert.Equal(t, http.StatusNotFound, code, "USDT is not in the infra view")

	code, _ = s.do(t, http.MethodGet, "/api/correlation?a=BTC&b=BTC")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestChange(t *testing.T) {
	s := newTestServer(t, true)

	code, env := s.do(t, http.MethodGet, "/api/change?symbol=ETH&timeframe=1w")
	require.Equal(t, http.StatusOK, code)
	var res analytics.ChangeResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, 7e7, res.Abs, 1e-3)

	code, env = s.do(t, http.MethodGet, "/api/change?symbol=ETH&days=2&metric=price")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, 0.02, res.Abs, 1e-9)

	code, _ = s.do(t, http.MethodGet, "/api/change?symbol=SOL")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodGet, "/api/change?symbol=ETH&metric=volume")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRefreshReloadsInBackground(t *testing.T) {
	s := newTestServer(t, true)
	before, err := s.dm.Snapshot()
	require.NoError(t, err)
	s.h.refreshed = make(chan struct{}, 1)

	code, _ := s.do(t, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusAccepted, code)

	select {
	case <-s.h.refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not finish")
	}
	after, err := s.dm.Snapshot()
	require.NoError(t, err)
	assert.NotEqual(t, before.RunID, after.RunID)
}

func TestRefreshFailureKeepsData(t *testing.T) {
	s := newTestServer(t, true)
	before, _ := s.dm.Snapshot()
	s.f.mu.Lock()
	s.f.fail = true
	s.f.mu.Unlock()
	s.h.refreshed = make(chan struct{}, 1)

	code, _ := s.do(t, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusAccepted, code)
	<-s.h.refreshed

	after, err := s.dm.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before.RunID, after.RunID)

	code, _ = s.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, code)
}
