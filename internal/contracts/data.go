package contracts

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// IntervalDaily 엔진이 소비하는 유일한 봉 주기
const IntervalDaily = "1d"

// =============================================================================
// Raw provider output
// =============================================================================

// RawColumn 공급자가 돌려준 가격 컬럼 하나
// Levels는 다단 컬럼명 (예: ["Adj Close", "QQQ"]); 단일 컬럼이면 길이 1
// Values의 nil은 결측치
type RawColumn struct {
	Levels []string
	Values []*float64
}

// Name returns the top-level column name.
func (c RawColumn) Name() string {
	if len(c.Levels) == 0 {
		return ""
	}
	return strings.TrimSpace(c.Levels[0])
}

// RawSeries 정규화 이전의 공급자 응답
// ⭐ SSOT: Price Feed Provider → Normalizer 사이의 유일한 입력 형식
type RawSeries struct {
	Ticker  string
	Dates   []time.Time
	Columns []RawColumn
}

// Float returns a pointer to v; used by providers to build RawColumn values.
func Float(v float64) *float64 {
	return &v
}

// =============================================================================
// PriceSeries
// =============================================================================

// PricePoint 일별 종가
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries 단일 종목의 정제된 일별 종가 시계열
// 불변식: 날짜 오름차순, 중복 없음, 모든 값 유한·양수
// 생성 이후 변경되지 않음 (접근자는 복사본을 반환)
type PriceSeries struct {
	ticker string
	points []PricePoint
}

// NewPriceSeries validates and copies points into an immutable series.
func NewPriceSeries(ticker string, points []PricePoint) (PriceSeries, error) {
	cp := make([]PricePoint, len(points))
	for i, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return PriceSeries{}, fmt.Errorf("%s: invalid close %v at %s", ticker, p.Close, FormatDate(p.Date))
		}
		cp[i] = PricePoint{Date: TruncateDate(p.Date), Close: p.Close}
		if i > 0 && !cp[i].Date.After(cp[i-1].Date) {
			return PriceSeries{}, fmt.Errorf("%s: dates not strictly ascending at %s", ticker, FormatDate(cp[i].Date))
		}
	}
	return PriceSeries{ticker: ticker, points: cp}, nil
}

// MustPriceSeries is NewPriceSeries that panics; intended for tests and fixtures.
func MustPriceSeries(ticker string, points []PricePoint) PriceSeries {
	s, err := NewPriceSeries(ticker, points)
	if err != nil {
		panic(err)
	}
	return s
}

// Ticker returns the series ticker.
func (s PriceSeries) Ticker() string { return s.ticker }

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.points) }

// IsEmpty reports whether the series holds no observations.
func (s PriceSeries) IsEmpty() bool { return len(s.points) == 0 }

// At returns the i-th observation.
func (s PriceSeries) At(i int) PricePoint { return s.points[i] }

// First returns the earliest observation. The series must not be empty.
func (s PriceSeries) First() PricePoint { return s.points[0] }

// Last returns the latest observation. The series must not be empty.
func (s PriceSeries) Last() PricePoint { return s.points[len(s.points)-1] }

// Points returns a copy of the observations.
func (s PriceSeries) Points() []PricePoint {
	cp := make([]PricePoint, len(s.points))
	copy(cp, s.points)
	return cp
}

// Closes returns a copy of the closing prices in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Close
	}
	return out
}

// Slice returns the observations within [from, to] (inclusive).
func (s PriceSeries) Slice(from, to time.Time) PriceSeries {
	from, to = TruncateDate(from), TruncateDate(to)
	lo := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(from) })
	hi := sort.Search(len(s.points), func(i int) bool { return s.points[i].Date.After(to) })
	if lo >= hi {
		return PriceSeries{ticker: s.ticker}
	}
	return PriceSeries{ticker: s.ticker, points: s.points[lo:hi:hi]}
}

// Returns converts the series into day-over-day fractional returns.
// len(result) == Len()-1, result[i] = close[i+1]/close[i] - 1 dated at close[i+1].
func (s PriceSeries) Returns() ReturnSeries {
	if len(s.points) < 2 {
		return ReturnSeries{ticker: s.ticker}
	}
	out := make([]ReturnPoint, len(s.points)-1)
	for i := 1; i < len(s.points); i++ {
		out[i-1] = ReturnPoint{
			Date:   s.points[i].Date,
			Return: s.points[i].Close/s.points[i-1].Close - 1,
		}
	}
	return ReturnSeries{ticker: s.ticker, points: out}
}

// =============================================================================
// ReturnSeries
// =============================================================================

// ReturnPoint 일별 수익률
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// ReturnSeries 일별 수익률 시계열 (원본 PriceSeries보다 1개 짧음)
type ReturnSeries struct {
	ticker string
	points []ReturnPoint
}

// NewReturnSeries builds a return series from already-aligned points.
func NewReturnSeries(ticker string, points []ReturnPoint) (ReturnSeries, error) {
	cp := make([]ReturnPoint, len(points))
	for i, p := range points {
		if math.IsNaN(p.Return) || math.IsInf(p.Return, 0) {
			return ReturnSeries{}, fmt.Errorf("%s: invalid return at %s", ticker, FormatDate(p.Date))
		}
		cp[i] = ReturnPoint{Date: TruncateDate(p.Date), Return: p.Return}
		if i > 0 && !cp[i].Date.After(cp[i-1].Date) {
			return ReturnSeries{}, fmt.Errorf("%s: dates not strictly ascending at %s", ticker, FormatDate(cp[i].Date))
		}
	}
	return ReturnSeries{ticker: ticker, points: cp}, nil
}

// Ticker returns the series label.
func (s ReturnSeries) Ticker() string { return s.ticker }

// Len returns the number of return observations.
func (s ReturnSeries) Len() int { return len(s.points) }

// At returns the i-th observation.
func (s ReturnSeries) At(i int) ReturnPoint { return s.points[i] }

// Points returns a copy of the observations.
func (s ReturnSeries) Points() []ReturnPoint {
	cp := make([]ReturnPoint, len(s.points))
	copy(cp, s.points)
	return cp
}

// Values returns the returns without dates.
func (s ReturnSeries) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Return
	}
	return out
}

// Dates returns the observation dates.
func (s ReturnSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Date
	}
	return out
}

// =============================================================================
// Date helpers
// =============================================================================

// DateLayout 날짜 직렬화 포맷
const DateLayout = "2006-01-02"

// TruncateDate drops the time-of-day and normalizes to UTC midnight.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
