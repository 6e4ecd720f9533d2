package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/s2_signals"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// SignalComputer 월간 신호 계산기 (brain.Orchestrator)
type SignalComputer interface {
	ComputeMonthSignal(ctx context.Context, ticker string) (*contracts.MonthSignal, error)
}

// MonthSignalJob computes the monthly equity/safe split for each ticker
// ⭐ SSOT: 월간 신호 스케줄은 이 Job에서만
type MonthSignalJob struct {
	computer SignalComputer
	tickers  []string
	schedule string
	logger   *logger.Logger

	mu     sync.RWMutex
	latest map[string]contracts.MonthSignal
}

// NewMonthSignalJob creates a new month signal job
func NewMonthSignalJob(computer SignalComputer, tickers []string, schedule string, log *logger.Logger) *MonthSignalJob {
	if log == nil {
		log = logger.Nop()
	}
	return &MonthSignalJob{
		computer: computer,
		tickers:  tickers,
		schedule: schedule,
		logger:   log.WithField("job", "month_signal"),
		latest:   make(map[string]contracts.MonthSignal),
	}
}

// Name returns the job name
func (j *MonthSignalJob) Name() string {
	return "month_signal"
}

// Schedule returns the cron schedule (default: 1st of the month, 07:00)
func (j *MonthSignalJob) Schedule() string {
	return j.schedule
}

// Run computes every ticker; one failing ticker does not stop the rest.
func (j *MonthSignalJob) Run(ctx context.Context) error {
	var errs []error
	for _, ticker := range j.tickers {
		sig, err := j.computer.ComputeMonthSignal(ctx, ticker)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
			continue
		}

		j.mu.Lock()
		j.latest[sig.Ticker] = *sig
		j.mu.Unlock()

		j.logger.WithFields(map[string]interface{}{
			"ticker":      sig.Ticker,
			"explanation": s2_signals.Explain(sig.ReasonCodes),
		}).Info(s2_signals.Headline(*sig))
	}
	return errors.Join(errs...)
}

// Latest returns the most recent signal computed for ticker.
func (j *MonthSignalJob) Latest(ticker string) (contracts.MonthSignal, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	sig, ok := j.latest[contracts.NormalizeTicker(ticker)]
	return sig, ok
}
