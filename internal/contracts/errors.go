package contracts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoData 공급자가 해당 종목/구간에 대해 쓸 수 있는 데이터를 돌려주지 못함
	ErrNoData = errors.New("no price data available")
	// ErrEmptyPortfolio 정렬 후 공통 거래일이 없음
	ErrEmptyPortfolio = errors.New("empty portfolio: no common trading dates")
	// ErrInvalidWeights 양수 비중이 하나도 없음
	ErrInvalidWeights = errors.New("invalid portfolio weights")
	// ErrUnsupportedInterval 일봉 외 주기 요청
	ErrUnsupportedInterval = errors.New("unsupported interval")
	// ErrInvalidPeriod 해석할 수 없는 기간 문자열
	ErrInvalidPeriod = errors.New("invalid period")
)

// NoDataError 종목 단위의 데이터 부재
// errors.Is(err, ErrNoData) == true
type NoDataError struct {
	Ticker string
	Period string
	Err    error // 원인 (nil 가능)
}

// NewNoDataError wraps cause as a NoDataError for ticker.
func NewNoDataError(ticker, period string, cause error) *NoDataError {
	return &NoDataError{Ticker: ticker, Period: period, Err: cause}
}

func (e *NoDataError) Error() string {
	msg := fmt.Sprintf("no price data for %s", e.Ticker)
	if e.Period != "" {
		msg += fmt.Sprintf(" (period %s)", e.Period)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrNoData.
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// Unwrap exposes the cause.
func (e *NoDataError) Unwrap() error {
	return e.Err
}

// EmptyPortfolioError 공통 거래일이 없는 포트폴리오
// errors.Is(err, ErrEmptyPortfolio) == true
type EmptyPortfolioError struct {
	Tickers []string
}

func (e *EmptyPortfolioError) Error() string {
	if len(e.Tickers) == 0 {
		return ErrEmptyPortfolio.Error()
	}
	return fmt.Sprintf("%s [%s]", ErrEmptyPortfolio.Error(), strings.Join(e.Tickers, ", "))
}

// Is matches ErrEmptyPortfolio.
func (e *EmptyPortfolioError) Is(target error) bool {
	return target == ErrEmptyPortfolio
}
