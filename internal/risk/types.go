package risk

import (
	"errors"
	"time"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// VaRConvention VaR 부호 규약
// ⭐ SSOT: Loss를 양수로 표현 (VaR=0.05 → 5% 손실 가능)
const VaRConvention = "loss_positive"

// MaxPathCells 한 번의 시뮬레이션이 보관하는 경로×스텝 값 상한 (float64 기준 약 40MB)
const MaxPathCells = 5_000_000

var (
	ErrInvalidConfig = errors.New("invalid simulation configuration")
	ErrInvalidInput  = errors.New("invalid simulation input")
)

// =============================================================================
// VaR/CVaR Types
// =============================================================================

// VaRResult VaR 계산 결과
// ⭐ SSOT: VaR/CVaR는 손실을 양수로 표현
// - VaR=0.05 → 95% 신뢰수준에서 최대 5% 손실 가능
// - CVaR=0.07 → 5% tail에서 평균 7% 손실 예상
type VaRResult struct {
	Confidence float64 `json:"confidence"` // 신뢰수준 (예: 0.95, 0.99)
	VaR        float64 `json:"var"`        // Value at Risk (손실, 양수)
	CVaR       float64 `json:"cvar"`       // Conditional VaR (Expected Shortfall, 양수)
}

// =============================================================================
// Monte Carlo Types
// =============================================================================

// MonteCarloConfig GBM 예측 설정
// ⭐ SSOT: 성장 하한(GrowthFloor)은 명시적 정책 파라미터
type MonteCarloConfig struct {
	NumSimulations     int     `yaml:"num_simulations" json:"num_simulations" default:"100" validate:"min=1,max=100000"`
	StepsPerMonth      int     `yaml:"steps_per_month" json:"steps_per_month" default:"21" validate:"min=1"`           // 영업일 기준
	GrowthFloor        float64 `yaml:"growth_floor" json:"growth_floor" default:"0.03"`                              // 연율 drift 하한
	TradingDaysPerYear int     `yaml:"trading_days_per_year" json:"trading_days_per_year" default:"252" validate:"min=1"` // dt = 1/N
	Seed               int64   `yaml:"seed" json:"seed"`                                                             // 0 = 실행마다 새 난수
	Workers            int     `yaml:"workers" json:"workers" default:"4" validate:"min=1"`
}

// DefaultMonteCarloConfig 기본 Monte Carlo 설정
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		NumSimulations:     100,
		StepsPerMonth:      21,
		GrowthFloor:        0.03,
		TradingDaysPerYear: 252,
		Seed:               0,
		Workers:            4,
	}
}

// Calibration 일별 수익률에서 추정한 연율 GBM 파라미터
type Calibration struct {
	RawMu float64 `json:"raw_mu"` // 하한 적용 전
	Mu    float64 `json:"mu"`     // max(RawMu, GrowthFloor)
	Sigma float64 `json:"sigma"`
}

// ForecastInput 예측 입력 (백테스트 마지막 점에서 출발)
type ForecastInput struct {
	Start         float64
	StartDate     time.Time
	HorizonMonths int
	Calibration   Calibration
}

// ForecastResult 경로 축약 결과
type ForecastResult struct {
	RunID  string
	Points []contracts.ForecastPoint // len = Steps + 1, Points[0] = Start
	Paths  int
	Steps  int
}

// =============================================================================
// Crisis Types
// =============================================================================

// CrisisConfig 위기 스트레스 테스트 설정
type CrisisConfig struct {
	Benchmark string                     `yaml:"benchmark" default:"SPY" validate:"required"`
	Scenarios []contracts.CrisisScenario `yaml:"-"`
}

// DefaultScenarios returns the three reference crisis windows.
func DefaultScenarios() []contracts.CrisisScenario {
	mk := func(name, start, end string) contracts.CrisisScenario {
		r, _ := contracts.NewDateRange(start, end)
		return contracts.CrisisScenario{Name: name, Range: r}
	}
	return []contracts.CrisisScenario{
		mk("2008 Global Financial Crisis", "2007-10-01", "2009-03-09"),
		mk("2020 COVID-19 Crash", "2020-02-19", "2020-03-23"),
		mk("2022 Rate Hike Bear Market", "2022-01-03", "2022-10-14"),
	}
}
