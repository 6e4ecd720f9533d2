package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// WeightTolerance 정규화 비중 합계 허용 오차
const WeightTolerance = 1e-9

// PortfolioWeights 종목 → 목표 비중 (불변 값)
// ⭐ SSOT: 호출자의 원본 비중은 절대 수정하지 않음
// 모든 변환(Normalize, Restrict)은 새 값을 반환
type PortfolioWeights struct {
	w map[string]float64
}

// NewPortfolioWeights copies raw into an immutable weight set.
// Tickers are trimmed and upper-cased; duplicates after cleanup are summed.
// Any sign or magnitude is accepted here; Normalize enforces the invariant.
func NewPortfolioWeights(raw map[string]float64) PortfolioWeights {
	w := make(map[string]float64, len(raw))
	for ticker, weight := range raw {
		t := NormalizeTicker(ticker)
		if t == "" {
			continue
		}
		w[t] += weight
	}
	return PortfolioWeights{w: w}
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Len returns the number of tickers.
func (p PortfolioWeights) Len() int { return len(p.w) }

// Weight returns the weight of ticker (0 if absent).
func (p PortfolioWeights) Weight(ticker string) float64 {
	return p.w[NormalizeTicker(ticker)]
}

// Has reports whether ticker is part of the set.
func (p PortfolioWeights) Has(ticker string) bool {
	_, ok := p.w[NormalizeTicker(ticker)]
	return ok
}

// Tickers returns the tickers in sorted order.
func (p PortfolioWeights) Tickers() []string {
	out := make([]string, 0, len(p.w))
	for t := range p.w {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Map returns a copy of the weights.
func (p PortfolioWeights) Map() map[string]float64 {
	out := make(map[string]float64, len(p.w))
	for t, v := range p.w {
		out[t] = v
	}
	return out
}

// Sum returns the sum of all weights.
func (p PortfolioWeights) Sum() float64 {
	var sum float64
	for _, t := range p.Tickers() {
		sum += p.w[t]
	}
	return sum
}

// Normalize clamps negative or non-finite weights to zero and rescales the rest
// so they sum to 1. Fails with ErrInvalidWeights when nothing positive remains.
func (p PortfolioWeights) Normalize() (PortfolioWeights, error) {
	clean := make(map[string]float64, len(p.w))
	var total float64
	for _, t := range p.Tickers() {
		v := p.w[t]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		clean[t] = v
		total += v
	}
	if total <= 0 {
		return PortfolioWeights{}, fmt.Errorf("%w: no positive weight among %d tickers", ErrInvalidWeights, len(p.w))
	}
	for t, v := range clean {
		clean[t] = v / total
	}
	return PortfolioWeights{w: clean}, nil
}

// Restrict keeps only the given tickers and renormalizes among them.
// Used for per-window rescaling when some tickers have no data.
func (p PortfolioWeights) Restrict(tickers []string) (PortfolioWeights, error) {
	sub := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		t = NormalizeTicker(t)
		if v, ok := p.w[t]; ok {
			sub[t] = v
		}
	}
	return PortfolioWeights{w: sub}.Normalize()
}

// IsNormalized reports whether all weights are non-negative and sum to 1.
func (p PortfolioWeights) IsNormalized() bool {
	for _, v := range p.w {
		if v < 0 {
			return false
		}
	}
	return len(p.w) > 0 && math.Abs(p.Sum()-1) <= WeightTolerance
}

// MarshalJSON encodes the weights as a plain object.
func (p PortfolioWeights) MarshalJSON() ([]byte, error) {
	if p.w == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.w)
}

// UnmarshalJSON decodes a plain ticker → weight object.
func (p *PortfolioWeights) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = NewPortfolioWeights(raw)
	return nil
}

// String renders the weights in ticker order.
func (p PortfolioWeights) String() string {
	parts := make([]string, 0, len(p.w))
	for _, t := range p.Tickers() {
		parts = append(parts, fmt.Sprintf("%s=%.4f", t, p.w[t]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
