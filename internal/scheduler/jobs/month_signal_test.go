package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

type stubComputer map[string]float64

func (s stubComputer) ComputeMonthSignal(_ context.Context, ticker string) (*contracts.MonthSignal, error) {
	w, ok := s[ticker]
	if !ok {
		return nil, contracts.NewNoDataError(ticker, "2y", nil)
	}
	return &contracts.MonthSignal{
		Ticker:       ticker,
		EquityWeight: w,
		SafeWeight:   1 - w,
		ReasonCodes:  []contracts.ReasonCode{contracts.ReasonDefault},
	}, nil
}

func TestMonthSignalJob_Run(t *testing.T) {
	job := NewMonthSignalJob(stubComputer{"QQQ": 0.82, "SPY": 0.7}, []string{"QQQ", "GONE", "SPY"}, "@monthly", nil)

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, contracts.ErrNoData)

	sig, ok := job.Latest("qqq")
	require.True(t, ok)
	assert.Equal(t, 0.82, sig.EquityWeight)

	_, ok = job.Latest("SPY")
	assert.True(t, ok, "tickers after a failure still run")

	_, ok = job.Latest("GONE")
	assert.False(t, ok)

	assert.Equal(t, "month_signal", job.Name())
	assert.Equal(t, "@monthly", job.Schedule())
}
