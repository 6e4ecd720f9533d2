package s2_signals

import (
	"fmt"
	"math"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// Config 월간 비중 신호 파라미터
type Config struct {
	TrendWindow    int     `yaml:"trend_window" default:"200" validate:"min=2"`
	TrendScore     float64 `yaml:"trend_score" default:"0.6" validate:"gt=0,lte=1"`
	VolWindow      int     `yaml:"vol_window" default:"20" validate:"min=2"`
	VolLow         float64 `yaml:"vol_low" default:"0.01" validate:"gte=0"`
	VolHigh        float64 `yaml:"vol_high" default:"0.05" validate:"gtfield=VolLow"`
	EquityBase     float64 `yaml:"equity_base" default:"0.7" validate:"gte=0,lte=1"`
	TrendCoef      float64 `yaml:"trend_coef" default:"0.2" validate:"gte=0"`
	VolCoef        float64 `yaml:"vol_coef" default:"0.4" validate:"gte=0"`
	EquityMin      float64 `yaml:"equity_min" default:"0.2" validate:"gte=0,lte=1"`
	EquityMax      float64 `yaml:"equity_max" default:"1.0" validate:"gtefield=EquityMin,lte=1"`
	VolSpike       float64 `yaml:"vol_spike" default:"0.6" validate:"gte=0,lte=1"`
	TrendThreshold float64 `yaml:"trend_threshold" default:"0.3" validate:"gte=0"`
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		TrendWindow:    200,
		TrendScore:     0.6,
		VolWindow:      20,
		VolLow:         0.01,
		VolHigh:        0.05,
		EquityBase:     0.7,
		TrendCoef:      0.2,
		VolCoef:        0.4,
		EquityMin:      0.2,
		EquityMax:      1.0,
		VolSpike:       0.6,
		TrendThreshold: 0.3,
	}
}

// Model 단일 자산 추세/변동성 → 주식/안전자산 비중
// ⭐ SSOT: 순수 함수 (같은 시계열 → 같은 신호), 로깅/외부 상태 없음
type Model struct {
	cfg Config
}

// NewModel creates a signal model.
func NewModel(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// Config returns the model parameters.
func (m *Model) Config() Config { return m.cfg }

// Compute derives the monthly signal from a normalized close series.
// Short history is not an error: the affected score is neutral and a warning is attached.
func (m *Model) Compute(series contracts.PriceSeries) (contracts.MonthSignal, error) {
	if series.IsEmpty() {
		return contracts.MonthSignal{}, contracts.NewNoDataError(series.Ticker(), "", fmt.Errorf("empty series"))
	}

	closes := series.Closes()
	returns := series.Returns().Values()

	var warnings []contracts.Warning

	trend, ok := m.TrendScore(closes)
	if !ok {
		warnings = append(warnings, contracts.Warning{
			Code:    contracts.WarningInsufficientHistory,
			Message: fmt.Sprintf("trend needs %d closes, have %d", m.cfg.TrendWindow, len(closes)),
		})
	}

	vol, ok := m.VolScore(returns)
	if !ok {
		warnings = append(warnings, contracts.Warning{
			Code:    contracts.WarningInsufficientHistory,
			Message: fmt.Sprintf("volatility needs %d returns, have %d", m.cfg.VolWindow+1, len(returns)),
		})
	}

	equity := m.EquityWeight(trend, vol)

	return contracts.MonthSignal{
		Ticker:       series.Ticker(),
		AsOf:         series.Last().Date,
		EquityWeight: equity,
		SafeWeight:   1 - equity,
		ReasonCodes:  m.ReasonCodes(trend, vol),
		TrendScore:   trend,
		VolScore:     vol,
		Warnings:     warnings,
	}, nil
}

// trendTolerance 종가와 이동평균 비교 시 상대 허용 오차 (부동소수점 잔차는 동일로 취급)
const trendTolerance = 1e-12

// TrendScore compares the latest close with its trailing moving average:
// +TrendScore above, -TrendScore below, 0 on equality. ok is false when history is short.
func (m *Model) TrendScore(closes []float64) (float64, bool) {
	if len(closes) < m.cfg.TrendWindow {
		return 0, false
	}
	ma := TrailingMean(closes, m.cfg.TrendWindow)
	latest := closes[len(closes)-1]

	switch {
	case math.Abs(latest-ma) <= trendTolerance*math.Abs(ma):
		return 0, true
	case latest > ma:
		return m.cfg.TrendScore, true
	case latest < ma:
		return -m.cfg.TrendScore, true
	default:
		return 0, true
	}
}

// VolScore maps the trailing daily return stdev linearly from [VolLow, VolHigh] onto [0, 1].
// Needs VolWindow+1 returns; ok is false otherwise.
func (m *Model) VolScore(returns []float64) (float64, bool) {
	if len(returns) < m.cfg.VolWindow+1 {
		return 0, false
	}
	sd := TrailingStdDev(returns, m.cfg.VolWindow)
	return clamp((sd-m.cfg.VolLow)/(m.cfg.VolHigh-m.cfg.VolLow), 0, 1), true
}

// EquityWeight = clamp(base + trendCoef·trend − volCoef·vol, min, max)
func (m *Model) EquityWeight(trend, vol float64) float64 {
	return clamp(m.cfg.EquityBase+m.cfg.TrendCoef*trend-m.cfg.VolCoef*vol, m.cfg.EquityMin, m.cfg.EquityMax)
}

// ReasonCodes tags the drivers of the weight; DEFAULT when nothing fired.
func (m *Model) ReasonCodes(trend, vol float64) []contracts.ReasonCode {
	var codes []contracts.ReasonCode
	if vol >= m.cfg.VolSpike {
		codes = append(codes, contracts.ReasonVolSpike)
	}
	if trend >= m.cfg.TrendThreshold {
		codes = append(codes, contracts.ReasonTrendUp)
	}
	if trend <= -m.cfg.TrendThreshold {
		codes = append(codes, contracts.ReasonTrendDown)
	}
	if len(codes) == 0 {
		codes = append(codes, contracts.ReasonDefault)
	}
	return codes
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
