package risk

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// MonteCarloSimulator GBM 경로 시뮬레이터
// ⭐ SSOT: 미래 가치 밴드 예측은 여기서만
type MonteCarloSimulator struct {
	config MonteCarloConfig
	source SourceFactory
}

// NewMonteCarloSimulator 새 시뮬레이터 생성
// source가 nil이면 Seed != 0일 때 고정 시드, 아니면 실행마다 새 난수
func NewMonteCarloSimulator(config MonteCarloConfig, source SourceFactory) *MonteCarloSimulator {
	return &MonteCarloSimulator{config: config, source: source}
}

// Config returns the simulator configuration.
func (mc *MonteCarloSimulator) Config() MonteCarloConfig { return mc.config }

// Calibrate annualizes daily returns: mu = mean·N, sigma = stdev·√N.
// mu is floored at GrowthFloor.
func (mc *MonteCarloSimulator) Calibrate(daily []float64) Calibration {
	n := float64(mc.config.TradingDaysPerYear)
	raw := Mean(daily) * n
	return Calibration{
		RawMu: raw,
		Mu:    math.Max(raw, mc.config.GrowthFloor),
		Sigma: StdDev(daily) * math.Sqrt(n),
	}
}

// Steps returns the number of forecast steps for a horizon.
func (mc *MonteCarloSimulator) Steps(horizonMonths int) int {
	return horizonMonths * mc.config.StepsPerMonth
}

// Simulate 경로 생성 후 시점별 평균 / 95% / 5% 밴드로 축약
//
// S(t+dt) = S(t)·exp((mu − σ²/2)·dt + σ·√dt·Z), dt = 1/TradingDaysPerYear.
// Paths run concurrently; each path draws from its own RandomSource.
func (mc *MonteCarloSimulator) Simulate(ctx context.Context, in ForecastInput) (*ForecastResult, error) {
	if err := mc.validate(in); err != nil {
		return nil, err
	}

	steps := mc.Steps(in.HorizonMonths)
	numPaths := mc.config.NumSimulations
	paths := make([][]float64, numPaths)

	source := mc.source
	if source == nil {
		if mc.config.Seed != 0 {
			source = SeededSource(mc.config.Seed)
		} else {
			source = FreshSource()
		}
	}

	dt := 1.0 / float64(mc.config.TradingDaysPerYear)
	drift := (in.Calibration.Mu - 0.5*in.Calibration.Sigma*in.Calibration.Sigma) * dt
	shock := in.Calibration.Sigma * math.Sqrt(dt)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mc.config.Workers)

	for i := 0; i < numPaths; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := source(i)
			path := make([]float64, steps+1)
			path[0] = in.Start
			for t := 1; t <= steps; t++ {
				path[t] = path[t-1] * math.Exp(drift+shock*rng.NormFloat64())
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("monte carlo: %w", err)
	}

	return &ForecastResult{
		RunID:  uuid.New().String(),
		Points: reduceBands(paths, steps, in.Start, businessDays(in.StartDate, steps)),
		Paths:  numPaths,
		Steps:  steps,
	}, nil
}

func (mc *MonteCarloSimulator) validate(in ForecastInput) error {
	switch {
	case mc.config.NumSimulations < 1:
		return fmt.Errorf("%w: num_simulations=%d", ErrInvalidConfig, mc.config.NumSimulations)
	case mc.config.StepsPerMonth < 1 || mc.config.TradingDaysPerYear < 1:
		return fmt.Errorf("%w: steps_per_month=%d trading_days_per_year=%d",
			ErrInvalidConfig, mc.config.StepsPerMonth, mc.config.TradingDaysPerYear)
	case mc.config.Workers < 1:
		return fmt.Errorf("%w: workers=%d", ErrInvalidConfig, mc.config.Workers)
	case in.HorizonMonths < 1:
		return fmt.Errorf("%w: horizon_months=%d", ErrInvalidInput, in.HorizonMonths)
	case int64(mc.config.NumSimulations)*int64(mc.Steps(in.HorizonMonths)+1) > MaxPathCells:
		return fmt.Errorf("%w: %d paths x %d steps exceeds %d values",
			ErrInvalidInput, mc.config.NumSimulations, mc.Steps(in.HorizonMonths), MaxPathCells)
	case !(in.Start > 0) || math.IsInf(in.Start, 0):
		return fmt.Errorf("%w: start value %v", ErrInvalidInput, in.Start)
	case math.IsNaN(in.Calibration.Mu) || math.IsNaN(in.Calibration.Sigma) || in.Calibration.Sigma < 0:
		return fmt.Errorf("%w: mu=%v sigma=%v", ErrInvalidInput, in.Calibration.Mu, in.Calibration.Sigma)
	}
	return nil
}

// reduceBands 경로 인덱스 방향으로 시점별 평균/백분위수 계산
// 밴드는 평균을 포함하도록 넓힘: Lower5 <= Mean <= Upper95
func reduceBands(paths [][]float64, steps int, start float64, dates []time.Time) []contracts.ForecastPoint {
	points := make([]contracts.ForecastPoint, steps+1)
	points[0] = contracts.ForecastPoint{Date: dates[0], Mean: start, Upper95: start, Lower5: start}

	column := make([]float64, len(paths))
	for t := 1; t <= steps; t++ {
		for i, p := range paths {
			column[i] = p[t]
		}
		sort.Float64s(column)

		mean := Mean(column)
		points[t] = contracts.ForecastPoint{
			Date:    dates[t],
			Mean:    mean,
			Upper95: math.Max(Percentile(column, 95), mean),
			Lower5:  math.Min(Percentile(column, 5), mean),
		}
	}
	return points
}

// businessDays returns start followed by the next n weekdays.
func businessDays(start time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n+1)
	d := contracts.TruncateDate(start)
	dates = append(dates, d)
	for len(dates) < n+1 {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}
