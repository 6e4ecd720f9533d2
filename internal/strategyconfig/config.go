package strategyconfig

import (
	"github.com/DongHyun925/RulePilot/internal/backtest"
	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/risk"
	"github.com/DongHyun925/RulePilot/internal/s0_data"
	"github.com/DongHyun925/RulePilot/internal/s2_signals"
)

// Config 엔진 전체 설정 (신호 / 시뮬레이션 / 위기 테스트)
// ⭐ SSOT: 파일 없이도 기본값만으로 동작
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Data       Data       `yaml:"data" json:"data"`
	Signal     Signal     `yaml:"signal" json:"signal"`
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Crisis     Crisis     `yaml:"crisis" json:"crisis"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" default:"rulepilot" validate:"required"`
	Version    string `yaml:"version" json:"version" default:"v1"`
}

// Data S0: 가격 로딩/정규화
type Data struct {
	Workers    int                     `yaml:"workers" json:"workers" default:"4" validate:"min=1,max=64"`
	Normalizer s0_data.NormalizerConfig `yaml:"normalizer" json:"normalizer"`
}

// Signal S2: 월간 비중 신호
type Signal struct {
	Ticker string            `yaml:"ticker" json:"ticker" default:"QQQ" validate:"required"`
	Period string            `yaml:"period" json:"period" default:"2y" validate:"required"`
	Model  s2_signals.Config `yaml:"model" json:"model"`
}

// Simulation 백테스트 + 몬테카를로
type Simulation struct {
	HistoryPeriod string                `yaml:"history_period" json:"history_period" default:"10y" validate:"required"`
	HorizonMonths int                   `yaml:"horizon_months" json:"horizon_months" default:"12" validate:"min=1,max=600"`
	Backtest      backtest.Config       `yaml:"backtest" json:"backtest"`
	MonteCarlo    risk.MonteCarloConfig `yaml:"monte_carlo" json:"monte_carlo"`
}

// Crisis 과거 위기 구간 스트레스 테스트
type Crisis struct {
	Benchmark     string     `yaml:"benchmark" json:"benchmark" default:"SPY" validate:"required"`
	HistoryPeriod string     `yaml:"history_period" json:"history_period" default:"20y" validate:"required"`
	Scenarios     []Scenario `yaml:"scenarios" json:"scenarios" validate:"min=1,dive"`
}

// Scenario 이름 붙은 위기 구간 (YYYY-MM-DD, 양 끝 포함)
type Scenario struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Start string `yaml:"start" json:"start" validate:"required"`
	End   string `yaml:"end" json:"end" validate:"required"`
}

// SetDefaults fills the reference crisis windows when none are configured.
func (c *Crisis) SetDefaults() {
	if len(c.Scenarios) > 0 {
		return
	}
	for _, sc := range risk.DefaultScenarios() {
		c.Scenarios = append(c.Scenarios, Scenario{
			Name:  sc.Name,
			Start: contracts.FormatDate(sc.Range.Start),
			End:   contracts.FormatDate(sc.Range.End),
		})
	}
}

// CrisisScenarios converts the configured windows; Validate guarantees they parse.
func (c *Config) CrisisScenarios() []contracts.CrisisScenario {
	out := make([]contracts.CrisisScenario, 0, len(c.Crisis.Scenarios))
	for _, sc := range c.Crisis.Scenarios {
		r, err := contracts.NewDateRange(sc.Start, sc.End)
		if err != nil {
			continue
		}
		out = append(out, contracts.CrisisScenario{Name: sc.Name, Range: r})
	}
	return out
}
