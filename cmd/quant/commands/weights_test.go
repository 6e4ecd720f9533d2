package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]float64
		wantErr bool
	}{
		{"two tickers", "QQQ=0.6,TLT=0.4", map[string]float64{"QQQ": 0.6, "TLT": 0.4}, false},
		{"spaces and trailing comma", " QQQ = 3 , TLT=1, ", map[string]float64{"QQQ": 3, "TLT": 1}, false},
		{"duplicates summed", "QQQ=0.5,QQQ=0.25", map[string]float64{"QQQ": 0.75}, false},
		{"missing equals", "QQQ", nil, true},
		{"empty ticker", "=0.5", nil, true},
		{"bad number", "QQQ=abc", nil, true},
		{"empty", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWeights(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0.00", formatNumber(0))
	assert.Equal(t, "999.50", formatNumber(999.5))
	assert.Equal(t, "1,000.00", formatNumber(1000))
	assert.Equal(t, "1,234,567.80", formatNumber(1234567.8))
	assert.Equal(t, "-12,345.00", formatNumber(-12345))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+12.34%", formatPercent(0.1234))
	assert.Equal(t, "-5.00%", formatPercent(-0.05))
	assert.Equal(t, "60.0%", formatWeight(0.6))
}
