package contracts

import "time"

// ReasonCode 비중 결정 사유 태그
type ReasonCode string

const (
	ReasonVolSpike  ReasonCode = "VOL_SPIKE"
	ReasonTrendUp   ReasonCode = "TREND_UP"
	ReasonTrendDown ReasonCode = "TREND_DOWN"
	ReasonDefault   ReasonCode = "DEFAULT"
)

// WarningInsufficientHistory 추세/변동성 윈도우 부족 (치명적이지 않음)
const WarningInsufficientHistory = "INSUFFICIENT_HISTORY"

// Warning 계산은 성공했지만 호출자가 알아야 할 정책 적용 기록
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MonthSignal 월간 주식/안전자산 비중 신호
// ⭐ SSOT: 완전히 계산되거나 호출이 실패함 (부분 생성 없음)
// 불변식: EquityWeight ∈ [0.2, 1.0], SafeWeight = 1 - EquityWeight
type MonthSignal struct {
	Ticker       string       `json:"ticker"`
	AsOf         time.Time    `json:"as_of"`
	EquityWeight float64      `json:"equity_weight"`
	SafeWeight   float64      `json:"safe_weight"`
	ReasonCodes  []ReasonCode `json:"reason_codes"`
	TrendScore   float64      `json:"trend_score"`
	VolScore     float64      `json:"vol_score"`
	Warnings     []Warning    `json:"warnings,omitempty"`
}

// HasReason reports whether code is among the signal's reason codes.
func (s *MonthSignal) HasReason(code ReasonCode) bool {
	for _, c := range s.ReasonCodes {
		if c == code {
			return true
		}
	}
	return false
}
