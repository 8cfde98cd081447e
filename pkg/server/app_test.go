package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/services/analytics"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/usecase"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/config"
	xhttp "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/http"
)

type oneAsset struct{ fail bool }

func (f oneAsset) Fetch(_ context.Context, id string) models.FetchOutcome {
	if f.fail {
		return models.Terminal(id, models.ReasonNotFound, errors.New("nope"))
	}
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, _ := models.NewDailySeries([]time.Time{d}, []float64{1e9})
	return models.Succeeded(id, s, s, nil)
}

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func newApp(t *testing.T, f oneAsset) (*App, *closeRecorder) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	reg := []models.AssetDescriptor{{ProviderID: "bitcoin", Symbol: "BTC", Group: models.GroupInfra}}
	b := usecase.NewBatchFetcher(f, usecase.BatchConfig{})
	dm := usecase.NewDataManager(reg, b, analytics.NewTransformer(analytics.BaselineResolver{}, nil))
	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0), xhttp.WithRegistry(prometheus.NewRegistry()))
	rec := &closeRecorder{}
	return New(cfg, nil, dm, srv, Closer{Name: "rec", Closer: rec}), rec
}

func TestAppRunStopsOnCancel(t *testing.T) {
	app, rec := newApp(t, oneAsset{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	require.Eventually(t, func() bool {
		_, err := app.DataManager().Snapshot()
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, rec.closed)
}

func TestAppInitialLoadWithoutData(t *testing.T) {
	app, rec := newApp(t, oneAsset{fail: true})

	err := app.RunContext(context.Background())
	assert.ErrorIs(t, err, usecase.ErrNoData)
	assert.True(t, rec.closed)
}
