package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DongHyun925/RulePilot/internal/brain"
	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/external/yahoo"
	"github.com/DongHyun925/RulePilot/internal/metrics"
	"github.com/DongHyun925/RulePilot/internal/s0_data"
	"github.com/DongHyun925/RulePilot/internal/s0_data/cache"
	"github.com/DongHyun925/RulePilot/internal/strategyconfig"
	"github.com/DongHyun925/RulePilot/pkg/config"
	"github.com/DongHyun925/RulePilot/pkg/database"
	"github.com/DongHyun925/RulePilot/pkg/httputil"
	"github.com/DongHyun925/RulePilot/pkg/logger"
	"github.com/DongHyun925/RulePilot/pkg/redis"
)

// yahooRateWindow Redis sliding window 크기
const yahooRateWindow = time.Second

// app 커맨드 공통 의존성
// ⭐ SSOT: 의존성 조립 순서는 여기서만 (config → logger → metrics → feed → loader → orchestrator)
type app struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Recorder
	db       *database.DB  // PRICE_SOURCE=postgres 또는 fetcher 에서만
	redis    *redis.Client // REDIS_ENABLED=false 이면 비활성
	yahoo    *yahoo.Client
	feed     contracts.PriceFeed
	cache    *cache.SeriesCache // SERIES_CACHE_TTL=0 이면 nil
	loader   *s0_data.Loader
	engine   *brain.Orchestrator
}

// appOptions 커맨드별 추가 요구사항
type appOptions struct {
	needDB bool // PRICE_SOURCE 와 무관하게 DB 연결
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy config (flag > env > defaults)
	path := cfg.StrategyConfig
	if strategyFile != "" {
		path = strategyFile
	}
	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy config: %w", err)
	}
	hash, _ := strategyconfig.Hash(strategy)
	log.WithFields(map[string]interface{}{
		"strategy_id": strategy.Meta.StrategyID,
		"version":     strategy.Meta.Version,
		"hash":        hash,
		"path":        path,
	}).Debug("Strategy config loaded")

	rt := &app{
		cfg:      cfg,
		strategy: strategy,
		log:      log,
		registry: prometheus.NewRegistry(),
	}
	if cfg.MetricsEnabled {
		rt.metrics = metrics.New(rt.registry)
	}

	// 4. Redis (shared rate limit)
	rt.redis, err = redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, falling back to local rate limit")
		rt.redis = redis.Disabled()
	}

	// 5. Database
	if opts.needDB || cfg.PriceSource == config.PriceSourcePostgres {
		rt.db, err = database.New(ctx, cfg)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := rt.db.EnsureSchema(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		log.Info("Connected to database")
	}

	// 6. Price feed
	rt.yahoo = newYahooClient(cfg, rt.redis, log)
	switch cfg.PriceSource {
	case config.PriceSourcePostgres:
		rt.feed = s0_data.NewPriceRepository(rt.db.Pool)
	default:
		rt.feed = rt.yahoo
	}

	// 7. Loader + orchestrator
	loaderCfg := s0_data.DefaultLoaderConfig()
	loaderCfg.Workers = strategy.Data.Workers
	loaderCfg.Source = cfg.PriceSource
	rt.loader = s0_data.NewLoader(rt.feed, s0_data.NewNormalizer(strategy.Data.Normalizer), loaderCfg, log, rt.metrics)
	if cfg.SeriesCacheTTL > 0 {
		rt.cache = cache.NewSeriesCache(cfg.SeriesCacheTTL, log)
		rt.loader.WithCache(rt.cache)
	}
	rt.engine = brain.NewOrchestrator(rt.loader, strategy, cfg.FXRate, rt.metrics, log)

	return rt, nil
}

// newYahooClient wires retry, local token bucket and (optional) Redis sliding window.
func newYahooClient(cfg *config.Config, rc *redis.Client, log *logger.Logger) *yahoo.Client {
	httpClient := httputil.New(log).
		WithTimeout(cfg.Yahoo.Timeout).
		WithRetry(cfg.Yahoo.MaxRetries, time.Second).
		WithLocalRate(cfg.Yahoo.RatePerSec, 1)

	if rc.Enabled() {
		limit := int(cfg.Yahoo.RatePerSec)
		if limit < 1 {
			limit = 1
		}
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(rc, "ratelimit"), redis.RateLimitConfig{
			Key:    "yahoo",
			Limit:  limit,
			Window: yahooRateWindow,
		})
	}

	return yahoo.NewClient(httpClient, cfg.Yahoo.BaseURL, yahoo.DefaultBreakerConfig(), log)
}

// Close releases pooled connections.
func (rt *app) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
