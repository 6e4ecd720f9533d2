package jobs

import (
	"context"
	"fmt"

	"github.com/DongHyun925/RulePilot/internal/s0_data/collector"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// PriceCollectionJob tops up stored daily closes after the US close
// ⭐ SSOT: 가격 적재 스케줄은 이 Job에서만
type PriceCollectionJob struct {
	collector *collector.Collector
	tickers   []string
	config    collector.Config
	logger    *logger.Logger
}

// NewPriceCollectionJob creates a new price collection job
func NewPriceCollectionJob(col *collector.Collector, tickers []string, cfg collector.Config, log *logger.Logger) *PriceCollectionJob {
	if log == nil {
		log = logger.Nop()
	}
	return &PriceCollectionJob{
		collector: col,
		tickers:   tickers,
		config:    cfg,
		logger:    log.WithField("job", "price_collection"),
	}
}

// Name returns the job name
func (j *PriceCollectionJob) Name() string {
	return "price_collection"
}

// Schedule returns the cron schedule (weekdays 22:30 UTC)
func (j *PriceCollectionJob) Schedule() string {
	return "0 30 22 * * 1-5"
}

// Run collects prices; fails only when no ticker could be stored.
func (j *PriceCollectionJob) Run(ctx context.Context) error {
	results, err := j.collector.CollectPrices(ctx, j.tickers, j.config)
	if err != nil {
		return fmt.Errorf("collect prices: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if len(results) > 0 && failed == len(results) {
		return fmt.Errorf("all %d tickers failed", failed)
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers": len(results),
		"failed":  failed,
	}).Info("Scheduled price collection completed")
	return nil
}
