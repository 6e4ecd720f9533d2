package s2_signals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

func seriesFrom(t *testing.T, closes []float64) contracts.PriceSeries {
	t.Helper()
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]contracts.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	s, err := contracts.NewPriceSeries("QQQ", points)
	require.NoError(t, err)
	return s
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// alternating returns of ±r around a level, giving daily stdev ≈ r
func choppy(n int, start, r float64) []float64 {
	out := make([]float64, n)
	out[0] = start
	for i := 1; i < n; i++ {
		if i%2 == 1 {
			out[i] = out[i-1] * (1 + r)
		} else {
			out[i] = out[i-1] * (1 - r)
		}
	}
	return out
}

func TestCompute_FlatSeries(t *testing.T) {
	sig, err := NewModel(DefaultConfig()).Compute(seriesFrom(t, flat(250, 100)))
	require.NoError(t, err)

	assert.Equal(t, 0.0, sig.TrendScore)
	assert.Equal(t, 0.0, sig.VolScore)
	assert.Equal(t, 0.7, sig.EquityWeight)
	assert.Equal(t, []contracts.ReasonCode{contracts.ReasonDefault}, sig.ReasonCodes)
	assert.Empty(t, sig.Warnings)
	assert.Equal(t, "QQQ", sig.Ticker)
}

func TestCompute_FlatTailAfterVariedHistory(t *testing.T) {
	rising := make([]float64, 300)
	for i := range rising {
		rising[i] = 50 + 0.37*float64(i)
	}
	wavy := make([]float64, 300)
	for i := range wavy {
		wavy[i] = 100 + 7*math.Sin(float64(i)/9)
	}

	tests := []struct {
		name   string
		prefix []float64
	}{
		{"choppy", choppy(300, 80, 0.02)},
		{"rising", rising},
		{"wavy", wavy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := append(append([]float64{}, tt.prefix...), flat(200, 100.1)...)
			sig, err := NewModel(DefaultConfig()).Compute(seriesFrom(t, closes))
			require.NoError(t, err)

			assert.Equal(t, 0.0, sig.TrendScore)
			assert.Equal(t, 0.0, sig.VolScore)
			assert.Equal(t, 0.7, sig.EquityWeight)
			assert.Equal(t, []contracts.ReasonCode{contracts.ReasonDefault}, sig.ReasonCodes)
		})
	}
}

func TestCompute_TrendUpAndDown(t *testing.T) {
	rising := make([]float64, 260)
	for i := range rising {
		rising[i] = 100 + float64(i)*0.1
	}
	falling := make([]float64, 260)
	for i := range falling {
		falling[i] = 200 - float64(i)*0.1
	}

	m := NewModel(DefaultConfig())

	up, err := m.Compute(seriesFrom(t, rising))
	require.NoError(t, err)
	assert.Equal(t, 0.6, up.TrendScore)
	assert.InDelta(t, 0.82, up.EquityWeight, 1e-12)
	assert.Equal(t, []contracts.ReasonCode{contracts.ReasonTrendUp}, up.ReasonCodes)

	down, err := m.Compute(seriesFrom(t, falling))
	require.NoError(t, err)
	assert.Equal(t, -0.6, down.TrendScore)
	assert.InDelta(t, 0.58, down.EquityWeight, 1e-12)
	assert.Equal(t, []contracts.ReasonCode{contracts.ReasonTrendDown}, down.ReasonCodes)
}

func TestCompute_VolSpikeWithTrend(t *testing.T) {
	closes := make([]float64, 0, 260)
	for i := 0; i < 230; i++ {
		closes = append(closes, 50+float64(i)*0.5)
	}
	// finish well above the MA with ~6% daily swings
	tail := choppy(30, closes[len(closes)-1]*1.5, 0.06)
	closes = append(closes, tail...)

	sig, err := NewModel(DefaultConfig()).Compute(seriesFrom(t, closes))
	require.NoError(t, err)

	assert.Equal(t, 1.0, sig.VolScore)
	assert.Equal(t, 0.6, sig.TrendScore)
	assert.Equal(t, []contracts.ReasonCode{contracts.ReasonVolSpike, contracts.ReasonTrendUp}, sig.ReasonCodes)
	assert.InDelta(t, 0.7+0.12-0.4, sig.EquityWeight, 1e-12)
}

func TestCompute_InsufficientHistory(t *testing.T) {
	tests := []struct {
		name         string
		n            int
		wantWarnings int
	}{
		{name: "no trend window", n: 150, wantWarnings: 1},
		{name: "no vol window", n: 21, wantWarnings: 2},
		{name: "single point", n: 1, wantWarnings: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := NewModel(DefaultConfig()).Compute(seriesFrom(t, choppy(tt.n, 100, 0.03)))
			require.NoError(t, err)

			assert.Equal(t, 0.0, sig.TrendScore)
			assert.Len(t, sig.Warnings, tt.wantWarnings)
			for _, w := range sig.Warnings {
				assert.Equal(t, contracts.WarningInsufficientHistory, w.Code)
			}
		})
	}
}

func TestCompute_VolNeedsTwentyOneReturns(t *testing.T) {
	m := NewModel(DefaultConfig())

	_, ok := m.VolScore(make([]float64, 20))
	assert.False(t, ok)

	score, ok := m.VolScore(append(make([]float64, 1), choppyReturns(20, 0.03)...))
	assert.True(t, ok)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func choppyReturns(n int, r float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = r
		} else {
			out[i] = -r
		}
	}
	return out
}

func TestCompute_Pure(t *testing.T) {
	series := seriesFrom(t, choppy(300, 100, 0.02))
	m := NewModel(DefaultConfig())

	a, err := m.Compute(series)
	require.NoError(t, err)
	b, err := m.Compute(series)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCompute_EquityBounds(t *testing.T) {
	m := NewModel(DefaultConfig())
	for _, r := range []float64{0, 0.001, 0.01, 0.02, 0.03, 0.05, 0.09} {
		for _, n := range []int{5, 30, 220, 400} {
			sig, err := m.Compute(seriesFrom(t, choppy(n, 100, r)))
			require.NoError(t, err)

			assert.GreaterOrEqual(t, sig.EquityWeight, 0.2)
			assert.LessOrEqual(t, sig.EquityWeight, 1.0)
			assert.Equal(t, 1-sig.EquityWeight, sig.SafeWeight)
			assert.GreaterOrEqual(t, sig.VolScore, 0.0)
			assert.LessOrEqual(t, sig.VolScore, 1.0)
		}
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	_, err := NewModel(DefaultConfig()).Compute(contracts.PriceSeries{})
	assert.ErrorIs(t, err, contracts.ErrNoData)
}

func TestEquityWeight_Clamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EquityBase = 0.3
	m := NewModel(cfg)

	assert.Equal(t, 0.2, m.EquityWeight(-0.6, 1))
	cfg.EquityBase = 1.2
	assert.Equal(t, 1.0, NewModel(cfg).EquityWeight(0.6, 0))
}

func TestVolScore_Mapping(t *testing.T) {
	m := NewModel(DefaultConfig())

	// stdev of alternating ±r over an even window is r·sqrt(n/(n-1))
	rets := append([]float64{0}, choppyReturns(20, 0.03)...)
	score, ok := m.VolScore(rets)
	require.True(t, ok)

	sd := 0.03 * math.Sqrt(20.0/19.0)
	assert.InDelta(t, (sd-0.01)/0.04, score, 1e-12)
}
