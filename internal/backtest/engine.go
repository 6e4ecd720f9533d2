package backtest

import (
	"fmt"
	"math"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// Config 백테스트 설정
type Config struct {
	Base               float64 `yaml:"base" default:"100" validate:"gt=0"`                     // 누적 가치 기준값
	TradingDaysPerYear int     `yaml:"trading_days_per_year" default:"252" validate:"min=1"` // 연율화 계수
}

// DefaultConfig returns base 100 and 252 trading days per year.
func DefaultConfig() Config {
	return Config{Base: 100, TradingDaysPerYear: 252}
}

// Engine 과거 수익률 → 누적 가치 경로 + 기술 통계
// ⭐ SSOT: 백테스트 지표 계산은 여기서만 (예측 없음, 순수 계산)
type Engine struct {
	config Config
}

// Result holds the value path and its descriptive statistics.
type Result struct {
	History     []contracts.HistoryPoint
	Returns     []float64 // 입력 일별 수익률
	TotalReturn float64   // value[last]/base − 1
	CAGR        float64
	Volatility  float64 // 연율 표본 표준편차
	MaxDrawdown float64 // <= 0
}

// NewEngine creates a new backtest engine
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Run compounds the return series from the base value.
//
// value[i] = base · ∏(1 + r[0..i]); CAGR = (value[last]/base)^(days/N) − 1.
func (e *Engine) Run(returns contracts.ReturnSeries) (*Result, error) {
	if returns.Len() == 0 {
		return nil, fmt.Errorf("backtest: %w", contracts.ErrEmptyPortfolio)
	}

	values := returns.Values()
	dates := returns.Dates()

	history := make([]contracts.HistoryPoint, len(values))
	value := e.config.Base
	for i, r := range values {
		value *= 1 + r
		history[i] = contracts.HistoryPoint{Date: dates[i], Value: value}
	}

	result := &Result{
		History: history,
		Returns: values,
	}
	e.calculateMetrics(result)

	return result, nil
}

// calculateMetrics calculates performance metrics from the value path
func (e *Engine) calculateMetrics(result *Result) {
	last := result.History[len(result.History)-1].Value
	n := float64(len(result.Returns))
	days := float64(e.config.TradingDaysPerYear)

	result.TotalReturn = last/e.config.Base - 1

	// CAGR
	growth := last / e.config.Base
	if growth > 0 {
		result.CAGR = math.Pow(growth, days/n) - 1
	} else {
		result.CAGR = -1
	}

	// Volatility (annualized)
	result.Volatility = calculateVolatility(result.Returns) * math.Sqrt(days)

	// Maximum Drawdown
	result.MaxDrawdown = MaxDrawdown(e.config.Base, result.History)
}

// calculateVolatility calculates sample standard deviation
func calculateVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance)
}

// MaxDrawdown returns min over t of value[t]/running_max − 1 on the path that
// starts at base. Always <= 0.
func MaxDrawdown(base float64, curve []contracts.HistoryPoint) float64 {
	peak := base
	maxDrawdown := 0.0

	for _, point := range curve {
		if point.Value > peak {
			peak = point.Value
		}
		if peak <= 0 {
			continue
		}
		drawdown := point.Value/peak - 1
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}
