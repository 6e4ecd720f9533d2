package contracts

import "time"

// HistoryPoint 백테스트 누적 가치 (기준 100)
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ForecastPoint 몬테카를로 예측 밴드 한 시점
// 불변식: Lower5 <= Mean <= Upper95
type ForecastPoint struct {
	Date    time.Time `json:"date"`
	Mean    float64   `json:"mean"`
	Upper95 float64   `json:"upper_95"`
	Lower5  float64   `json:"lower_5"`
}

// SimulationMetrics 과거 구간 기술 통계
type SimulationMetrics struct {
	CAGR                 float64 `json:"cagr"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	MaxDrawdown          float64 `json:"max_drawdown"` // <= 0
	VaR95                float64 `json:"var_95"`       // 일간, 손실 양수
	CVaR95               float64 `json:"cvar_95"`      // 일간, 손실 양수
}

// SimulationResult 백테스트 + 예측 결과
// ⭐ SSOT: Forecast[0]은 History의 마지막 점을 그대로 반복 (연속성 계약)
type SimulationResult struct {
	RunID              string            `json:"run_id"`
	Weights            PortfolioWeights  `json:"weights"` // 실제 사용된 정규화 비중
	History            []HistoryPoint    `json:"history"`
	Forecast           []ForecastPoint   `json:"forecast"`
	Metrics            SimulationMetrics `json:"metrics"`
	Mu                 float64           `json:"mu"`    // 성장 하한 적용 후 연율 drift
	Sigma              float64           `json:"sigma"` // 연율 변동성
	Paths              int               `json:"paths"`
	Steps              int               `json:"steps"`
	UnavailableTickers []string          `json:"unavailable_tickers,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// LastHistory returns the final history point; ok is false for an empty history.
func (r *SimulationResult) LastHistory() (HistoryPoint, bool) {
	if len(r.History) == 0 {
		return HistoryPoint{}, false
	}
	return r.History[len(r.History)-1], true
}
