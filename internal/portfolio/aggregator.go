package portfolio

import (
	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// PortfolioTicker 집계 수익률 시계열의 이름
const PortfolioTicker = "PORTFOLIO"

// Aggregation 포트폴리오 수익률 집계 결과
type Aggregation struct {
	Returns contracts.ReturnSeries
	Weights contracts.PortfolioWeights // 요청 종목 전체 기준 정규화 비중
	Used    []string                   // 실제 정렬에 참여한 종목
}

// Aggregate computes the weighted daily return of the portfolio.
//
// Weights are normalized over the requested ticker set. Only tickers with a
// positive weight and a non-empty series take part in the alignment; a weighted
// ticker without a series contributes nothing. Callers that want its weight
// redistributed restrict the weights to the available tickers first.
//
// Fails with *contracts.EmptyPortfolioError when fewer than two common dates
// remain after alignment (no return can be formed).
func Aggregate(series map[string]contracts.PriceSeries, weights contracts.PortfolioWeights) (*Aggregation, error) {
	norm, err := weights.Normalize()
	if err != nil {
		return nil, err
	}

	members := make(map[string]contracts.PriceSeries, norm.Len())
	for _, t := range norm.Tickers() {
		s, ok := series[t]
		if !ok || s.IsEmpty() || norm.Weight(t) <= 0 {
			continue
		}
		members[t] = s
	}

	aligned := Align(members)
	if aligned.Len() < 2 {
		return nil, &contracts.EmptyPortfolioError{Tickers: norm.Tickers()}
	}

	points := make([]contracts.ReturnPoint, 0, aligned.Len()-1)
	for i := 1; i < aligned.Len(); i++ {
		var r float64
		for _, t := range aligned.Tickers {
			closes := aligned.Closes[t]
			r += norm.Weight(t) * (closes[i]/closes[i-1] - 1)
		}
		points = append(points, contracts.ReturnPoint{Date: aligned.Dates[i], Return: r})
	}

	returns, err := contracts.NewReturnSeries(PortfolioTicker, points)
	if err != nil {
		return nil, err
	}

	return &Aggregation{Returns: returns, Weights: norm, Used: aligned.Tickers}, nil
}
