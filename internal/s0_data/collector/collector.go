package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// PriceStore 원본 가격 저장 대상 (s0_data.PriceRepository)
type PriceStore interface {
	SaveRaw(ctx context.Context, raw *contracts.RawSeries, source string) (int, error)
}

// Collector 외부 공급자 → PostgreSQL 가격 적재
// ⭐ SSOT: 가격 수집 오케스트레이션은 이 패키지에서만
// 적재된 데이터는 PRICE_SOURCE=postgres 로 엔진이 다시 읽음
type Collector struct {
	feed   contracts.PriceFeed
	store  PriceStore
	source string
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int    // Number of concurrent workers
	Period  string // lookback window, e.g. "20y"
}

// NewCollector creates a new Collector instance
func NewCollector(feed contracts.PriceFeed, store PriceStore, source string, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		feed:   feed,
		store:  store,
		source: source,
		logger: log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of a fetch operation
type FetchResult struct {
	Ticker     string
	PriceCount int
	Error      error
}

// CollectPrices fetches and stores every ticker. Failures are per ticker;
// the returned error is non-nil only for invalid configuration.
func (c *Collector) CollectPrices(ctx context.Context, tickers []string, cfg Config) ([]FetchResult, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be >= 1, got %d", cfg.Workers)
	}
	if cfg.Period == "" {
		return nil, fmt.Errorf("period is required")
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker_count": len(tickers),
		"period":       cfg.Period,
		"workers":      cfg.Workers,
	}).Info("Starting price collection")

	results := make([]FetchResult, 0, len(tickers))
	resultCh := make(chan FetchResult, len(tickers))

	var wg sync.WaitGroup
	tickerCh := make(chan string, len(tickers))

	// Start workers
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.priceWorker(ctx, workerID, tickerCh, resultCh, cfg.Period)
		}(i)
	}

	for _, t := range tickers {
		tickerCh <- contracts.NormalizeTicker(t)
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	successCount := 0
	failCount := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"total":   len(results),
	}).Info("Price collection completed")

	return results, nil
}

// priceWorker processes price fetching for tickers
func (c *Collector) priceWorker(ctx context.Context, workerID int, tickerCh <-chan string, resultCh chan<- FetchResult, period string) {
	for ticker := range tickerCh {
		if err := ctx.Err(); err != nil {
			resultCh <- FetchResult{Ticker: ticker, Error: err}
			continue
		}

		raw, err := c.feed.Fetch(ctx, ticker, period, contracts.IntervalDaily)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": ticker,
			}).Warn("Failed to fetch prices")
			resultCh <- FetchResult{Ticker: ticker, Error: err}
			continue
		}

		count, err := c.store.SaveRaw(ctx, raw, c.source)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"ticker": ticker,
			}).Error("Failed to save prices")
			resultCh <- FetchResult{Ticker: ticker, Error: err}
			continue
		}

		c.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": ticker,
			"count":  count,
		}).Debug("Fetched prices")

		resultCh <- FetchResult{Ticker: ticker, PriceCount: count}
	}
}
