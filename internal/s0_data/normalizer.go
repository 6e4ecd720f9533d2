package s0_data

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// 컬럼 선호 순서: 수정 종가 → 종가 → 마지막 숫자 컬럼
var (
	adjCloseNames = []string{"adj close", "adjclose", "adj_close", "adjusted close"}
	closeNames    = []string{"close"}
)

// NormalizerConfig 정규화 정책
type NormalizerConfig struct {
	// MaxFillGap 연속 결측을 앞 값으로 채울 최대 행 수
	// 0: 채우지 않음, 음수: 무제한
	MaxFillGap int `yaml:"max_fill_gap" json:"max_fill_gap" default:"5"`
}

// DefaultNormalizerConfig returns the default policy (fill up to 5 missing rows).
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{MaxFillGap: 5}
}

// Normalizer 공급자 원본 → PriceSeries
// ⭐ SSOT: RawSeries를 PriceSeries로 바꾸는 유일한 경로
type Normalizer struct {
	cfg NormalizerConfig
}

// NewNormalizer creates a normalizer with the given policy.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize picks the best price column, sorts and de-duplicates dates,
// forward-fills short gaps and drops what is still missing.
// Returns *contracts.NoDataError when nothing usable remains.
func (n *Normalizer) Normalize(raw *contracts.RawSeries, period string) (contracts.PriceSeries, error) {
	if raw == nil || len(raw.Dates) == 0 {
		return contracts.PriceSeries{}, contracts.NewNoDataError(tickerOf(raw), period, fmt.Errorf("empty provider response"))
	}
	ticker := raw.Ticker

	col, ok := SelectColumn(raw)
	if !ok {
		return contracts.PriceSeries{}, contracts.NewNoDataError(ticker, period, fmt.Errorf("no numeric price column"))
	}
	if len(col.Values) != len(raw.Dates) {
		return contracts.PriceSeries{}, contracts.NewNoDataError(ticker, period,
			fmt.Errorf("column %q has %d values for %d dates", col.Name(), len(col.Values), len(raw.Dates)))
	}

	rows := sortedRows(raw.Dates, col.Values)
	points := n.fill(rows)
	if len(points) == 0 {
		return contracts.PriceSeries{}, contracts.NewNoDataError(ticker, period, fmt.Errorf("all values missing after fill"))
	}

	series, err := contracts.NewPriceSeries(ticker, points)
	if err != nil {
		return contracts.PriceSeries{}, contracts.NewNoDataError(ticker, period, err)
	}
	return series, nil
}

// SelectColumn returns the preferred price column of raw.
func SelectColumn(raw *contracts.RawSeries) (contracts.RawColumn, bool) {
	if col, ok := findColumn(raw, adjCloseNames); ok {
		return col, true
	}
	if col, ok := findColumn(raw, closeNames); ok {
		return col, true
	}
	for i := len(raw.Columns) - 1; i >= 0; i-- {
		if hasUsable(raw.Columns[i].Values) {
			return raw.Columns[i], true
		}
	}
	return contracts.RawColumn{}, false
}

// findColumn matches by top-level name; with multi-level columns the one
// whose second level equals the ticker wins.
func findColumn(raw *contracts.RawSeries, names []string) (contracts.RawColumn, bool) {
	var fallback *contracts.RawColumn
	for i := range raw.Columns {
		col := &raw.Columns[i]
		if !nameMatches(col.Name(), names) || !hasUsable(col.Values) {
			continue
		}
		if len(col.Levels) > 1 && strings.EqualFold(strings.TrimSpace(col.Levels[1]), raw.Ticker) {
			return *col, true
		}
		if fallback == nil {
			fallback = col
		}
	}
	if fallback == nil {
		return contracts.RawColumn{}, false
	}
	return *fallback, true
}

func nameMatches(name string, names []string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range names {
		if name == n {
			return true
		}
	}
	return false
}

func hasUsable(values []*float64) bool {
	for _, v := range values {
		if usable(v) {
			return true
		}
	}
	return false
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v > 0
}

type row struct {
	date  time.Time
	value *float64
}

// sortedRows orders by date; for duplicate dates the last usable value wins.
func sortedRows(dates []time.Time, values []*float64) []row {
	rows := make([]row, len(dates))
	for i := range dates {
		rows[i] = row{date: contracts.TruncateDate(dates[i]), value: values[i]}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	out := rows[:0]
	for _, r := range rows {
		if len(out) > 0 && out[len(out)-1].date.Equal(r.date) {
			if usable(r.value) {
				out[len(out)-1].value = r.value
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func (n *Normalizer) fill(rows []row) []contracts.PricePoint {
	points := make([]contracts.PricePoint, 0, len(rows))
	var last float64
	haveLast := false
	gap := 0

	for _, r := range rows {
		if usable(r.value) {
			last, haveLast, gap = *r.value, true, 0
			points = append(points, contracts.PricePoint{Date: r.date, Close: last})
			continue
		}
		gap++
		if !haveLast {
			continue // leading nulls
		}
		if n.cfg.MaxFillGap < 0 || gap <= n.cfg.MaxFillGap {
			points = append(points, contracts.PricePoint{Date: r.date, Close: last})
		}
	}
	return points
}

func tickerOf(raw *contracts.RawSeries) string {
	if raw == nil {
		return ""
	}
	return raw.Ticker
}
