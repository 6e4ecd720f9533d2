package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DongHyun925/RulePilot/internal/backtest"
	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/metrics"
	"github.com/DongHyun925/RulePilot/internal/portfolio"
	"github.com/DongHyun925/RulePilot/internal/risk"
	"github.com/DongHyun925/RulePilot/internal/s0_data"
	"github.com/DongHyun925/RulePilot/internal/s2_signals"
	"github.com/DongHyun925/RulePilot/internal/strategyconfig"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// Orchestrator 엔진 공개 연산 조율 (신호 / 백테스트+예측 / 위기 테스트 / 시세)
// ⭐ SSOT: 가격 로딩 → 계산 흐름은 여기서만
// 호출 간 상태 없음: 매 호출마다 새로 로딩하고 새로 계산
type Orchestrator struct {
	loader     *s0_data.Loader
	model      *s2_signals.Model
	backtest   *backtest.Engine
	monteCarlo *risk.MonteCarloSimulator
	stress     *risk.StressTester
	source     risk.SourceFactory

	config  *strategyconfig.Config
	fxRate  float64
	metrics *metrics.Recorder
	logger  *logger.Logger
	now     func() time.Time
}

// SimulationRequest run_backtest_and_forecast 입력
type SimulationRequest struct {
	Weights       contracts.PortfolioWeights
	HorizonMonths int // 0 → 설정값
	NumPaths      int // 0 → 설정값
}

// Report 시뮬레이션 + (선택) 위기 테스트 묶음
type Report struct {
	Simulation *contracts.SimulationResult      `json:"simulation"`
	Crisis     []contracts.CrisisScenarioResult `json:"crisis,omitempty"`
}

// Quote 최근 종가 (고정 환율 환산 포함)
type Quote struct {
	Ticker    string    `json:"ticker"`
	AsOf      time.Time `json:"as_of"`
	Close     float64   `json:"close"`
	FXRate    float64   `json:"fx_rate"`
	Converted float64   `json:"converted"`
}

// quotePeriod 최근 종가 조회 구간
const quotePeriod = "5d"

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	loader *s0_data.Loader,
	cfg *strategyconfig.Config,
	fxRate float64,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Orchestrator {
	if cfg == nil {
		cfg = strategyconfig.Default()
	}
	if fxRate <= 0 {
		fxRate = 1
	}
	if log == nil {
		log = logger.Nop()
	}

	bt := backtest.NewEngine(cfg.Simulation.Backtest)
	return &Orchestrator{
		loader:     loader,
		model:      s2_signals.NewModel(cfg.Signal.Model),
		backtest:   bt,
		monteCarlo: risk.NewMonteCarloSimulator(cfg.Simulation.MonteCarlo, nil),
		stress:     risk.NewStressTester(bt),
		config:     cfg,
		fxRate:     fxRate,
		metrics:    rec,
		logger:     log.WithComponent("orchestrator"),
		now:        time.Now,
	}
}

// WithRandomSource replaces the Monte Carlo random source (tests, reproducible runs).
func (o *Orchestrator) WithRandomSource(source risk.SourceFactory) *Orchestrator {
	o.source = source
	o.monteCarlo = risk.NewMonteCarloSimulator(o.config.Simulation.MonteCarlo, source)
	return o
}

// Config returns the engine configuration in use.
func (o *Orchestrator) Config() *strategyconfig.Config { return o.config }

// =============================================================================
// Month signal
// =============================================================================

// ComputeMonthSignal loads ticker (default: configured signal ticker) and derives
// its monthly equity/safe split. NoDataError propagates unchanged.
func (o *Orchestrator) ComputeMonthSignal(ctx context.Context, ticker string) (sig *contracts.MonthSignal, err error) {
	start := time.Now()
	defer func() { o.metrics.ObserveOperation("signal", start, err) }()

	if ticker == "" {
		ticker = o.config.Signal.Ticker
	}
	ticker = contracts.NormalizeTicker(ticker)

	series, err := o.loader.LoadOne(ctx, ticker, o.config.Signal.Period)
	if err != nil {
		return nil, err
	}

	signal, err := o.model.Compute(series)
	if err != nil {
		return nil, err
	}

	for _, w := range signal.Warnings {
		o.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"code":   w.Code,
		}).Warn(w.Message)
	}
	o.metrics.SetEquityWeight(ticker, signal.EquityWeight)

	o.logger.WithFields(map[string]interface{}{
		"ticker":        ticker,
		"as_of":         contracts.FormatDate(signal.AsOf),
		"equity_weight": signal.EquityWeight,
		"reasons":       signal.ReasonCodes,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Info("Month signal computed")

	return &signal, nil
}

// =============================================================================
// Backtest + forecast
// =============================================================================

// RunBacktestAndForecast compounds the portfolio's historical returns and projects
// GBM bands from the last value.
//
// Tickers that fail to load are tagged unavailable and their weight is rescaled
// over the rest. When nothing aligns the error matches ErrEmptyPortfolio and also
// carries each per-ticker fetch failure.
func (o *Orchestrator) RunBacktestAndForecast(ctx context.Context, req SimulationRequest) (res *contracts.SimulationResult, err error) {
	start := time.Now()
	defer func() { o.metrics.ObserveOperation("simulate", start, err) }()

	norm, err := req.Weights.Normalize()
	if err != nil {
		return nil, err
	}
	horizon := req.HorizonMonths
	if horizon == 0 {
		horizon = o.config.Simulation.HorizonMonths
	}

	o.logger.WithFields(map[string]interface{}{
		"tickers": norm.Len(),
		"horizon": horizon,
		"period":  o.config.Simulation.HistoryPeriod,
	}).Info("Starting backtest and forecast")

	// 1. 가격 로딩 (종목별 실패 격리)
	data := o.loader.LoadMany(ctx, norm.Tickers(), o.config.Simulation.HistoryPeriod)
	series := s0_data.AvailableSeries(data)
	unavailable := s0_data.UnavailableTickers(data)

	if len(series) == 0 {
		return nil, errors.Join(&contracts.EmptyPortfolioError{Tickers: norm.Tickers()}, s0_data.JoinErrors(data))
	}

	weights := norm
	if len(unavailable) > 0 {
		if weights, err = norm.Restrict(keys(series)); err != nil {
			return nil, errors.Join(&contracts.EmptyPortfolioError{Tickers: norm.Tickers()}, s0_data.JoinErrors(data))
		}
	}

	// 2. 포트폴리오 수익률 → 백테스트
	agg, err := portfolio.Aggregate(series, weights)
	if err != nil {
		return nil, errors.Join(err, s0_data.JoinErrors(data))
	}

	history, err := o.backtest.Run(agg.Returns)
	if err != nil {
		return nil, err
	}

	// 3. 몬테카를로
	mc := o.monteCarlo
	if req.NumPaths > 0 && req.NumPaths != mc.Config().NumSimulations {
		cfg := mc.Config()
		cfg.NumSimulations = req.NumPaths
		mc = risk.NewMonteCarloSimulator(cfg, o.source)
	}

	calibration := mc.Calibrate(history.Returns)
	last := history.History[len(history.History)-1]

	forecast, err := mc.Simulate(ctx, risk.ForecastInput{
		Start:         last.Value,
		StartDate:     last.Date,
		HorizonMonths: horizon,
		Calibration:   calibration,
	})
	if err != nil {
		return nil, err
	}
	o.metrics.AddSimulatedPaths(forecast.Paths)

	tail := risk.CalculateVaR(history.Returns, 0.95)
	res = &contracts.SimulationResult{
		RunID:    forecast.RunID,
		Weights:  agg.Weights,
		History:  history.History,
		Forecast: forecast.Points,
		Metrics: contracts.SimulationMetrics{
			CAGR:                 history.CAGR,
			AnnualizedVolatility: history.Volatility,
			MaxDrawdown:          history.MaxDrawdown,
			VaR95:                tail.VaR,
			CVaR95:               tail.CVaR,
		},
		Mu:                 calibration.Mu,
		Sigma:              calibration.Sigma,
		Paths:              forecast.Paths,
		Steps:              forecast.Steps,
		UnavailableTickers: unavailable,
		CreatedAt:          o.now(),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":       res.RunID,
		"tickers":      len(agg.Used),
		"unavailable":  unavailable,
		"observations": agg.Returns.Len(),
		"cagr":         fmt.Sprintf("%.2f%%", history.CAGR*100),
		"max_drawdown": fmt.Sprintf("%.2f%%", history.MaxDrawdown*100),
		"mu":           calibration.Mu,
		"raw_mu":       calibration.RawMu,
		"sigma":        calibration.Sigma,
		"paths":        forecast.Paths,
		"steps":        forecast.Steps,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Backtest and forecast completed")

	return res, nil
}

// =============================================================================
// Crisis stress test
// =============================================================================

// RunCrisisStressTest replays the configured crisis windows against benchmark
// (default: configured benchmark). Every scenario yields exactly one row; fetch
// failures only show up as row statuses. Fails only on invalid weights.
func (o *Orchestrator) RunCrisisStressTest(ctx context.Context, weights contracts.PortfolioWeights, benchmark string) (rows []contracts.CrisisScenarioResult, err error) {
	start := time.Now()
	defer func() { o.metrics.ObserveOperation("crisis", start, err) }()

	norm, err := weights.Normalize()
	if err != nil {
		return nil, err
	}
	if benchmark == "" {
		benchmark = o.config.Crisis.Benchmark
	}
	benchmark = contracts.NormalizeTicker(benchmark)
	scenarios := o.config.CrisisScenarios()

	o.logger.WithFields(map[string]interface{}{
		"tickers":   norm.Len(),
		"benchmark": benchmark,
		"scenarios": len(scenarios),
	}).Info("Starting crisis stress test")

	tickers := norm.Tickers()
	if !norm.Has(benchmark) {
		tickers = append(tickers, benchmark)
	}
	data := o.loader.LoadMany(ctx, tickers, o.config.Crisis.HistoryPeriod)
	series := s0_data.AvailableSeries(data)

	benchSeries, ok := series[benchmark]
	if !ok {
		o.logger.WithField("benchmark", benchmark).Warn("Benchmark unavailable; every scenario reports insufficient data")
		benchSeries = contracts.PriceSeries{}
	}
	if !norm.Has(benchmark) {
		delete(series, benchmark)
	}

	rows, err = o.stress.Run(norm, scenarios, namedBenchmark(benchmark, benchSeries), series)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]string, len(rows))
	for _, r := range rows {
		statuses[r.Name] = string(r.Status)
	}
	o.logger.WithFields(map[string]interface{}{
		"benchmark":   benchmark,
		"unavailable": s0_data.UnavailableTickers(data),
		"statuses":    statuses,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Crisis stress test completed")

	return rows, nil
}

// RunReport runs the simulation and, when includeCrisis is set, the crisis test.
func (o *Orchestrator) RunReport(ctx context.Context, req SimulationRequest, includeCrisis bool) (*Report, error) {
	sim, err := o.RunBacktestAndForecast(ctx, req)
	if err != nil {
		return nil, err
	}
	report := &Report{Simulation: sim}
	if !includeCrisis {
		return report, nil
	}

	report.Crisis, err = o.RunCrisisStressTest(ctx, req.Weights, "")
	if err != nil {
		return nil, err
	}
	return report, nil
}

// =============================================================================
// Quote
// =============================================================================

// LatestClose returns the most recent daily close, converted at the fixed FX rate.
func (o *Orchestrator) LatestClose(ctx context.Context, ticker string) (q *Quote, err error) {
	start := time.Now()
	defer func() { o.metrics.ObserveOperation("quote", start, err) }()

	ticker = contracts.NormalizeTicker(ticker)
	series, err := o.loader.LoadOne(ctx, ticker, quotePeriod)
	if err != nil {
		return nil, err
	}

	last := series.Last()
	return &Quote{
		Ticker:    ticker,
		AsOf:      last.Date,
		Close:     last.Close,
		FXRate:    o.fxRate,
		Converted: last.Close * o.fxRate,
	}, nil
}

// namedBenchmark keeps the benchmark label even when its series failed to load.
func namedBenchmark(ticker string, s contracts.PriceSeries) contracts.PriceSeries {
	if !s.IsEmpty() {
		return s
	}
	empty, _ := contracts.NewPriceSeries(ticker, nil)
	return empty
}

func keys(m map[string]contracts.PriceSeries) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
