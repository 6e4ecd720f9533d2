package yahoo

import (
	"time"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// chartResponse Yahoo v8 chart API 응답
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// toRawSeries converts one chart result into provider-neutral columns.
// Timestamps are shifted by the exchange offset so each bar lands on its local trading date.
func (r *chartResult) toRawSeries(ticker string) *contracts.RawSeries {
	raw := &contracts.RawSeries{
		Ticker: ticker,
		Dates:  make([]time.Time, len(r.Timestamp)),
	}
	for i, ts := range r.Timestamp {
		raw.Dates[i] = contracts.TruncateDate(time.Unix(ts+r.Meta.GMTOffset, 0).UTC())
	}

	add := func(name string, values []*float64) {
		if len(values) != len(r.Timestamp) {
			return
		}
		raw.Columns = append(raw.Columns, contracts.RawColumn{
			Levels: []string{name, ticker},
			Values: values,
		})
	}

	if len(r.Indicators.Quote) > 0 {
		q := r.Indicators.Quote[0]
		add("Open", q.Open)
		add("High", q.High)
		add("Low", q.Low)
		add("Close", q.Close)
	}
	if len(r.Indicators.AdjClose) > 0 {
		add("Adj Close", r.Indicators.AdjClose[0].AdjClose)
	}
	return raw
}
