package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

func returnSeries(t *testing.T, rets []float64) contracts.ReturnSeries {
	t.Helper()
	start := time.Date(2014, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]contracts.ReturnPoint, len(rets))
	for i, r := range rets {
		points[i] = contracts.ReturnPoint{Date: start.AddDate(0, 0, i), Return: r}
	}
	s, err := contracts.NewReturnSeries("PORTFOLIO", points)
	require.NoError(t, err)
	return s
}

func TestRun_ValuePath(t *testing.T) {
	res, err := NewEngine(DefaultConfig()).Run(returnSeries(t, []float64{0.1, -0.5, 0.2}))
	require.NoError(t, err)

	require.Len(t, res.History, 3)
	assert.InDelta(t, 110, res.History[0].Value, 1e-9)
	assert.InDelta(t, 55, res.History[1].Value, 1e-9)
	assert.InDelta(t, 66, res.History[2].Value, 1e-9)
	assert.InDelta(t, -0.34, res.TotalReturn, 1e-12)
	assert.InDelta(t, 55.0/110-1, res.MaxDrawdown, 1e-12)
}

func TestRun_RisingTenYears(t *testing.T) {
	n := 252 * 10
	rets := make([]float64, n)
	for i := range rets {
		rets[i] = 0.0003
	}

	res, err := NewEngine(DefaultConfig()).Run(returnSeries(t, rets))
	require.NoError(t, err)

	assert.Greater(t, res.CAGR, 0.0)
	assert.InDelta(t, math.Pow(1.0003, 252)-1, res.CAGR, 1e-9)
	assert.Less(t, res.Volatility, 0.05)
	assert.InDelta(t, 0.0, res.Volatility, 1e-9)
	assert.Equal(t, 0.0, res.MaxDrawdown)
}

func TestRun_FirstDayLossCountsAgainstBase(t *testing.T) {
	res, err := NewEngine(DefaultConfig()).Run(returnSeries(t, []float64{-0.1, 0.05}))
	require.NoError(t, err)
	assert.InDelta(t, -0.1, res.MaxDrawdown, 1e-12)
}

func TestRun_Volatility(t *testing.T) {
	rets := []float64{0.01, -0.01, 0.01, -0.01}
	res, err := NewEngine(DefaultConfig()).Run(returnSeries(t, rets))
	require.NoError(t, err)

	sd := math.Sqrt(4 * 0.0001 / 3)
	assert.InDelta(t, sd*math.Sqrt(252), res.Volatility, 1e-12)
}

func TestRun_Empty(t *testing.T) {
	_, err := NewEngine(DefaultConfig()).Run(contracts.ReturnSeries{})
	assert.ErrorIs(t, err, contracts.ErrEmptyPortfolio)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"monotonic up", []float64{101, 102, 103}, 0},
		{"dip and recover", []float64{120, 90, 130, 117}, 90.0/120 - 1},
		{"below base", []float64{80, 60, 90}, -0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curve := make([]contracts.HistoryPoint, len(tt.values))
			for i, v := range tt.values {
				curve[i] = contracts.HistoryPoint{Value: v}
			}
			got := MaxDrawdown(100, curve)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}
