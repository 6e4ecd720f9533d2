package portfolio

import (
	"sort"
	"time"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// Aligned 공통 거래일 인덱스로 정렬된 종가 행렬
// ⭐ SSOT: 모든 종목이 같은 날짜 인덱스를 공유 (빈 칸 없음)
type Aligned struct {
	Dates   []time.Time
	Tickers []string
	Closes  map[string][]float64 // ticker → Dates와 같은 길이
}

// Len returns the number of aligned dates.
func (a Aligned) Len() int { return len(a.Dates) }

// Align outer-joins the series by date, forward-fills gaps per ticker and drops
// every date on which some ticker still has no value. Filling stays inside each
// ticker's own first..last range, so a series is never carried past its final close
// and tickers whose histories do not overlap share no dates.
// Tickers without a series are ignored; the result lists tickers in sorted order.
func Align(series map[string]contracts.PriceSeries) Aligned {
	tickers := make([]string, 0, len(series))
	for t, s := range series {
		if !s.IsEmpty() {
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)

	if len(tickers) == 0 {
		return Aligned{Closes: map[string][]float64{}}
	}

	// 1. union of dates
	seen := make(map[time.Time]struct{})
	for _, t := range tickers {
		for _, p := range series[t].Points() {
			seen[contracts.TruncateDate(p.Date)] = struct{}{}
		}
	}
	union := make([]time.Time, 0, len(seen))
	for d := range seen {
		union = append(union, d)
	}
	sort.Slice(union, func(i, j int) bool { return union[i].Before(union[j]) })

	// 2. forward-filled column per ticker (NaN-free; ok marks populated cells)
	cols := make(map[string][]float64, len(tickers))
	oks := make(map[string][]bool, len(tickers))
	for _, t := range tickers {
		pts := series[t].Points()
		end := contracts.TruncateDate(pts[len(pts)-1].Date)
		col := make([]float64, len(union))
		ok := make([]bool, len(union))

		j := 0
		var last float64
		have := false
		for i, d := range union {
			for j < len(pts) && !contracts.TruncateDate(pts[j].Date).After(d) {
				last = pts[j].Close
				have = true
				j++
			}
			if have && !d.After(end) {
				col[i] = last
				ok[i] = true
			}
		}
		cols[t] = col
		oks[t] = ok
	}

	// 3. keep fully populated rows
	out := Aligned{Tickers: tickers, Closes: make(map[string][]float64, len(tickers))}
	for i, d := range union {
		complete := true
		for _, t := range tickers {
			if !oks[t][i] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		out.Dates = append(out.Dates, d)
		for _, t := range tickers {
			out.Closes[t] = append(out.Closes[t], cols[t][i])
		}
	}
	return out
}
