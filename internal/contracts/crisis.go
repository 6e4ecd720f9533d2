package contracts

import (
	"fmt"
	"time"
)

// CrisisStatus 시나리오별 결과 상태 (예외가 아닌 결과값)
type CrisisStatus string

const (
	CrisisOK                   CrisisStatus = "OK"
	CrisisInsufficientData     CrisisStatus = "INSUFFICIENT_DATA"
	CrisisNoOverlappingTickers CrisisStatus = "NO_OVERLAPPING_TICKERS"
)

// DateRange 닫힌 날짜 구간 [Start, End]
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange parses two YYYY-MM-DD dates into a closed range.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("range end %s before start %s", end, start)
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether t falls inside the range (inclusive).
func (r DateRange) Contains(t time.Time) bool {
	d := TruncateDate(t)
	return !d.Before(TruncateDate(r.Start)) && !d.After(TruncateDate(r.End))
}

func (r DateRange) String() string {
	return FormatDate(r.Start) + "~" + FormatDate(r.End)
}

// CrisisScenario 이름 붙은 과거 위기 구간
type CrisisScenario struct {
	Name  string    `json:"name"`
	Range DateRange `json:"range"`
}

// CrisisScenarioResult 시나리오 1건의 포트폴리오 vs 벤치마크 결과
// ⭐ SSOT: 요청된 시나리오마다 정확히 한 행
// 방어 성공 여부(PortfolioMDD > BenchmarkMDD)는 호출자가 판단
type CrisisScenarioResult struct {
	Name            string             `json:"name"`
	Range           DateRange          `json:"range"`
	Status          CrisisStatus       `json:"status"`
	Benchmark       string             `json:"benchmark"`
	PortfolioReturn float64            `json:"portfolio_return"`
	BenchmarkReturn float64            `json:"benchmark_return"`
	PortfolioMDD    float64            `json:"portfolio_mdd"`
	BenchmarkMDD    float64            `json:"benchmark_mdd"`
	Weights         map[string]float64 `json:"weights,omitempty"` // 구간 내 재조정 비중
}
