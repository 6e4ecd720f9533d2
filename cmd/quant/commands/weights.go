package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// parseWeights parses "QQQ=0.6,TLT=0.4" into a raw weight map.
// Normalization is left to the engine.
func parseWeights(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ticker, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid weight %q (want TICKER=WEIGHT)", part)
		}
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			return nil, fmt.Errorf("invalid weight %q: empty ticker", part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", part, err)
		}
		out[ticker] += w
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no weights given")
	}
	return out, nil
}
