package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/models"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/repository"
	domsvc "github.com/NimaArnar/CryptoMarket-Dashboard/internal/domain/service"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/handler/api"
	internalrepo "github.com/NimaArnar/CryptoMarket-Dashboard/internal/repository"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/service/coingecko"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/services/analytics"
	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/usecase"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/cache"
	pkgch "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/clickhouse"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/config"
	xhttp "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/http"
	pkgkafka "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/kafka"
	applogger "github.com/NimaArnar/CryptoMarket-Dashboard/pkg/logger"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/metrics"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served at /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.NewWithRegistry(reg)
}

// ProvideCacheStore creates the payload store selected by cache.backend.
func ProvideCacheStore(cfg *config.Config, l *applogger.Logger) (cache.Store, error) {
	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cache.NewRedisStore(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisPool(cfg.Cache.Redis.Pool.Size, cfg.Cache.Redis.Pool.MinIdle, cfg.Cache.Redis.Pool.WaitTimeout),
			cache.WithRedisExpiry(cfg.Cache.TTL),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		store = rs
	default:
		fs, err := cache.NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("file cache: %w", err)
		}
		store = fs
	}
	l.Info("cache store ready", applogger.String("backend", cfg.Cache.Backend), applogger.Bool("memory_l1", cfg.Cache.MemoryL1))
	if cfg.Cache.MemoryL1 {
		return cache.NewLayeredStore(store), nil
	}
	return store, nil
}

// ProvideCache wraps the store with the freshness TTL.
func ProvideCache(store cache.Store, cfg *config.Config, l *applogger.Logger) *cache.Cache {
	return cache.New(store, cfg.Cache.TTL, cache.WithLogger(l))
}

// ProvideCorrector creates the implied-quantity corrector.
func ProvideCorrector(cfg *config.Config, l *applogger.Logger) domsvc.AnomalyCorrector {
	cc := analytics.DefaultCorrectorConfig()
	cc.QDropThreshold = cfg.Corrector.QDropThreshold
	cc.PriceDropThreshold = cfg.Corrector.PriceDropThreshold
	cc.MinOverlap = cfg.Corrector.MinOverlap
	cc.MinHistory = cfg.Corrector.MinHistory
	cc.Lookback = cfg.Corrector.Lookback
	cc.VerifyPoints = cfg.Corrector.VerifyPoints
	return analytics.NewCorrector(cc, l)
}

// ProvideCoinGeckoClient creates the provider client.
func ProvideCoinGeckoClient(cfg *config.Config, c *cache.Cache, corrector domsvc.AnomalyCorrector, m repository.Metrics, l *applogger.Logger) *coingecko.Client {
	return coingecko.New(coingecko.Config{
		BaseURL:           cfg.CoinGecko.BaseURL,
		APIKey:            cfg.CoinGecko.APIKey,
		VsCurrency:        cfg.CoinGecko.VsCurrency,
		Days:              cfg.CoinGecko.Days,
		Timeout:           cfg.CoinGecko.Timeout,
		MaxRetries:        cfg.Retry.MaxRetries,
		WaitTime:          cfg.Retry.WaitTime,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
	}, c, corrector, coingecko.WithMetrics(m), coingecko.WithLogger(l))
}

// ProvideBatchFetcher creates the registry orchestrator.
func ProvideBatchFetcher(cfg *config.Config, client *coingecko.Client, l *applogger.Logger) *usecase.BatchFetcher {
	return usecase.NewBatchFetcher(client, usecase.BatchConfig{
		Concurrent:    cfg.Fetch.Concurrent,
		MaxConcurrent: cfg.Fetch.MaxConcurrent,
		BaseSleep:     cfg.Retry.BaseSleep,
	}, usecase.WithBatchLogger(l))
}

// ProvideTransformer creates the transformer with configured baseline anchors.
func ProvideTransformer(cfg *config.Config, l *applogger.Logger) *analytics.Transformer {
	return analytics.NewTransformer(analytics.BaselineResolver{
		Anchors:  cfg.BaselineAnchors(),
		MinValid: cfg.Transform.MinValidValue,
	}, l)
}

// ProvideAssets returns the configured registry, or the built-in one.
func ProvideAssets(cfg *config.Config) []models.AssetDescriptor {
	if len(cfg.Assets) == 0 {
		return models.DefaultRegistry()
	}
	out := make([]models.AssetDescriptor, len(cfg.Assets))
	for i, a := range cfg.Assets {
		out[i] = models.AssetDescriptor{
			ProviderID: a.ID,
			Symbol:     a.Symbol,
			Category:   a.Category,
			Group:      a.Group,
			FallbackID: a.FallbackID,
		}
	}
	return out
}

// ProvideEventPublisher creates the Kafka publisher, or a no-op one when disabled.
func ProvideEventPublisher(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (repository.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.AutoCreateTopics),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka publisher ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic_corrections", cfg.Kafka.TopicCorrections),
		applogger.String("topic_status", cfg.Kafka.TopicStatus),
	)
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.TopicCorrections, cfg.Kafka.TopicStatus, l), nil
}

// ProvideSeriesStore creates the ClickHouse snapshot store, or a no-op one when disabled.
func ProvideSeriesStore(cfg *config.Config, l *applogger.Logger) (repository.SeriesStore, error) {
	if !cfg.ClickHouse.Enabled {
		return internalrepo.NoopSeriesStore{}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, true),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	store := internalrepo.NewCHSeriesStore(client.DB(), cfg.ClickHouse.Database, cfg.ClickHouse.Table, l).WithOwner(client)
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse snapshot store ready", applogger.String("database", client.Database()), applogger.String("table", cfg.ClickHouse.Table))
	return store, nil
}

// ProvideDataManager creates the data manager.
func ProvideDataManager(
	cfg *config.Config,
	assets []models.AssetDescriptor,
	batch *usecase.BatchFetcher,
	t *analytics.Transformer,
	pub repository.EventPublisher,
	store repository.SeriesStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.DataManager {
	return usecase.NewDataManager(assets, batch, t,
		usecase.WithPublisher(pub),
		usecase.WithSeriesStore(store),
		usecase.WithManagerMetrics(m),
		usecase.WithManagerLogger(l),
		usecase.WithMinCorrDays(cfg.Transform.MinCorrDays),
	)
}

// ProvideHTTPHandler creates the dashboard API handler.
func ProvideHTTPHandler(l *applogger.Logger, dm *usecase.DataManager) *api.DashboardEchoHandler {
	return api.NewDashboardEchoHandler(l, dm)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.DashboardEchoHandler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithRateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
		xhttp.WithRegistry(reg),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	dm *usecase.DataManager,
	srv *xhttp.Server,
	cacheStore cache.Store,
	pub repository.EventPublisher,
	store repository.SeriesStore,
) *server.App {
	closers := []server.Closer{
		{Name: "kafka", Closer: pub},
		{Name: "clickhouse", Closer: store},
	}
	if c, ok := cacheStore.(io.Closer); ok {
		closers = append(closers, server.Closer{Name: "cache", Closer: c})
	}
	return server.New(cfg, l, dm, srv, closers...)
}
