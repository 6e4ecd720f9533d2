package risk

import (
	"time"

	"github.com/DongHyun925/RulePilot/internal/backtest"
	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/portfolio"
)

// StressTester 과거 위기 구간 재현
// ⭐ SSOT: 시나리오마다 정확히 한 행, 부분 데이터는 예외가 아닌 Status로 표현
type StressTester struct {
	engine *backtest.Engine
}

// NewStressTester creates a crisis stress tester on top of a backtest engine.
func NewStressTester(engine *backtest.Engine) *StressTester {
	return &StressTester{engine: engine}
}

// Run replays every scenario for the portfolio against the benchmark.
//
// series holds the full-history price series of the tickers that could be loaded;
// tickers missing from it are treated as unavailable in every window.
// Only invalid weights fail the whole run.
func (s *StressTester) Run(
	weights contracts.PortfolioWeights,
	scenarios []contracts.CrisisScenario,
	benchmark contracts.PriceSeries,
	series map[string]contracts.PriceSeries,
) ([]contracts.CrisisScenarioResult, error) {
	norm, err := weights.Normalize()
	if err != nil {
		return nil, err
	}

	results := make([]contracts.CrisisScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		results = append(results, s.runScenario(norm, sc, benchmark, series))
	}
	return results, nil
}

func (s *StressTester) runScenario(
	weights contracts.PortfolioWeights,
	sc contracts.CrisisScenario,
	benchmark contracts.PriceSeries,
	series map[string]contracts.PriceSeries,
) contracts.CrisisScenarioResult {
	result := contracts.CrisisScenarioResult{
		Name:      sc.Name,
		Range:     sc.Range,
		Benchmark: benchmark.Ticker(),
	}

	// 1. 벤치마크 구간
	bench := benchmark.Slice(sc.Range.Start, sc.Range.End)
	if bench.Len() < 2 {
		result.Status = contracts.CrisisInsufficientData
		return result
	}
	benchRes, err := s.engine.Run(bench.Returns())
	if err != nil {
		result.Status = contracts.CrisisInsufficientData
		return result
	}
	result.BenchmarkReturn = benchRes.TotalReturn
	result.BenchmarkMDD = benchRes.MaxDrawdown

	// 2. 구간 전체를 커버하는 종목만
	available := CoveringTickers(weights, series, bench.First().Date, bench.Last().Date)
	if len(available) == 0 {
		result.Status = contracts.CrisisNoOverlappingTickers
		return result
	}

	// 3. 가용 종목끼리 비중 재조정 후 집계
	rescaled, err := weights.Restrict(available)
	if err != nil {
		result.Status = contracts.CrisisNoOverlappingTickers
		return result
	}

	window := make(map[string]contracts.PriceSeries, len(available))
	for _, t := range available {
		window[t] = series[t].Slice(sc.Range.Start, sc.Range.End)
	}

	agg, err := portfolio.Aggregate(window, rescaled)
	if err != nil {
		return insufficient(result)
	}

	portRes, err := s.engine.Run(agg.Returns)
	if err != nil {
		return insufficient(result)
	}

	result.Status = contracts.CrisisOK
	result.PortfolioReturn = portRes.TotalReturn
	result.PortfolioMDD = portRes.MaxDrawdown
	result.Weights = rescaled.Map()
	return result
}

// insufficient INSUFFICIENT_DATA 행은 지표 전체를 0 으로 보고
func insufficient(result contracts.CrisisScenarioResult) contracts.CrisisScenarioResult {
	return contracts.CrisisScenarioResult{
		Name:      result.Name,
		Range:     result.Range,
		Benchmark: result.Benchmark,
		Status:    contracts.CrisisInsufficientData,
	}
}

// CoveringTickers returns the weighted tickers whose series span [first, last].
func CoveringTickers(
	weights contracts.PortfolioWeights,
	series map[string]contracts.PriceSeries,
	first, last time.Time,
) []string {
	var out []string
	for _, t := range weights.Tickers() {
		if weights.Weight(t) <= 0 {
			continue
		}
		s, ok := series[t]
		if !ok || s.IsEmpty() {
			continue
		}
		if !s.First().Date.After(first) && !s.Last().Date.Before(last) {
			out = append(out, t)
		}
	}
	return out
}
