//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/config"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Cache and provider
		ProvideCacheStore,
		ProvideCache,
		ProvideCorrector,
		ProvideCoinGeckoClient,

		// Exporters
		ProvideEventPublisher,
		ProvideSeriesStore,

		// Use cases
		ProvideAssets,
		ProvideBatchFetcher,
		ProvideTransformer,
		ProvideDataManager,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
