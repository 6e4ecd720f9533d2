package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/metrics"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// LoaderConfig 가격 로딩 설정
type LoaderConfig struct {
	Workers      int           // 동시 fetch 수
	FetchTimeout time.Duration // 종목 1건 fetch 제한 (만료 시 NoDataError)
	Source       string        // 메트릭 라벨 (yahoo, postgres)
}

// DefaultLoaderConfig returns 4 workers and a 30s per-ticker timeout.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Workers:      4,
		FetchTimeout: 30 * time.Second,
		Source:       "feed",
	}
}

// TickerData 종목별 로딩 결과
// ⭐ SSOT: 실패는 숨기지 않고 종목 단위로 태깅 (available / unavailable)
type TickerData struct {
	Ticker string
	Series contracts.PriceSeries
	Err    error
}

// Available reports whether the ticker produced a usable series.
func (d TickerData) Available() bool {
	return d.Err == nil && !d.Series.IsEmpty()
}

// SeriesCache 정규화 결과 캐시 (cache.SeriesCache)
type SeriesCache interface {
	Get(ticker, period string) (contracts.PriceSeries, bool)
	Put(ticker, period string, series contracts.PriceSeries)
}

// Loader PriceFeed → Normalizer 파이프라인
// 종목 간 fetch는 서로 독립적이라 병렬로 수행
type Loader struct {
	feed       contracts.PriceFeed
	normalizer *Normalizer
	cfg        LoaderConfig
	logger     *logger.Logger
	metrics    *metrics.Recorder
	cache      SeriesCache // nil: 캐시 없음
}

// NewLoader creates a loader. log and rec may be nil.
func NewLoader(feed contracts.PriceFeed, normalizer *Normalizer, cfg LoaderConfig, log *logger.Logger, rec *metrics.Recorder) *Loader {
	if normalizer == nil {
		normalizer = NewNormalizer(DefaultNormalizerConfig())
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		feed:       feed,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     log.WithComponent("loader"),
		metrics:    rec,
	}
}

// WithCache serves repeated (ticker, period) loads from c. Only successes are cached.
func (l *Loader) WithCache(c SeriesCache) *Loader {
	l.cache = c
	return l
}

// LoadOne fetches and normalizes a single ticker's daily closes.
func (l *Loader) LoadOne(ctx context.Context, ticker, period string) (contracts.PriceSeries, error) {
	ticker = contracts.NormalizeTicker(ticker)
	if ticker == "" {
		return contracts.PriceSeries{}, fmt.Errorf("empty ticker")
	}
	if l.cache != nil {
		if series, ok := l.cache.Get(ticker, period); ok {
			l.metrics.RecordFetch(l.cfg.Source, "cache")
			return series, nil
		}
	}

	fetchCtx := ctx
	if l.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, l.cfg.FetchTimeout)
		defer cancel()
	}

	raw, err := l.feed.Fetch(fetchCtx, ticker, period, contracts.IntervalDaily)
	if err != nil {
		err = l.classify(ticker, period, err)
		l.record(ticker, err)
		return contracts.PriceSeries{}, err
	}

	series, err := l.normalizer.Normalize(raw, period)
	l.record(ticker, err)
	if err != nil {
		return contracts.PriceSeries{}, err
	}
	if l.cache != nil {
		l.cache.Put(ticker, period, series)
	}
	return series, nil
}

// LoadMany fetches every ticker concurrently. Each result keeps the input order;
// one ticker failing never aborts the others.
func (l *Loader) LoadMany(ctx context.Context, tickers []string, period string) []TickerData {
	results := make([]TickerData, len(tickers))

	var g errgroup.Group
	g.SetLimit(l.cfg.Workers)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			series, err := l.LoadOne(ctx, ticker, period)
			results[i] = TickerData{Ticker: contracts.NormalizeTicker(ticker), Series: series, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// classify maps timeouts to NoDataError; provider NoDataErrors pass through.
func (l *Loader) classify(ticker, period string, err error) error {
	if errors.Is(err, contracts.ErrNoData) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return contracts.NewNoDataError(ticker, period, err)
	}
	return fmt.Errorf("fetch %s: %w", ticker, err)
}

func (l *Loader) record(ticker string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, contracts.ErrNoData):
		status = "no_data"
	default:
		status = "error"
	}
	l.metrics.RecordFetch(l.cfg.Source, status)

	if err != nil {
		l.logger.WithError(err).WithField("ticker", ticker).Warn("price load failed")
	}
}

// AvailableSeries returns the usable series keyed by ticker.
func AvailableSeries(data []TickerData) map[string]contracts.PriceSeries {
	out := make(map[string]contracts.PriceSeries, len(data))
	for _, d := range data {
		if d.Available() {
			out[d.Ticker] = d.Series
		}
	}
	return out
}

// UnavailableTickers lists the tickers that failed, in input order.
func UnavailableTickers(data []TickerData) []string {
	var out []string
	for _, d := range data {
		if !d.Available() {
			out = append(out, d.Ticker)
		}
	}
	return out
}

// JoinErrors joins every per-ticker failure (nil when all succeeded).
func JoinErrors(data []TickerData) error {
	var errs []error
	for _, d := range data {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errors.Join(errs...)
}
