package contracts

import "context"

// PriceFeed 외부 가격 공급자
// ⭐ SSOT: 엔진이 가격을 얻는 유일한 경로
//
// period: "5d" ~ "20y" (s0_data.ParsePeriod 참고), interval: "1d"
// 데이터가 없으면 *NoDataError를 반환해야 함
type PriceFeed interface {
	Fetch(ctx context.Context, ticker, period, interval string) (*RawSeries, error)
}

// PriceFeedFunc adapts a function to PriceFeed.
type PriceFeedFunc func(ctx context.Context, ticker, period, interval string) (*RawSeries, error)

// Fetch calls f.
func (f PriceFeedFunc) Fetch(ctx context.Context, ticker, period, interval string) (*RawSeries, error) {
	return f(ctx, ticker, period, interval)
}
