package s0_data

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

func TestParsePeriod(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		from   time.Time
	}{
		{"5d", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{"2wk", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"6mo", time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)},
		{"2y", time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"20y", time.Date(2004, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"10 years", time.Date(2014, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"YTD", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"max", time.Unix(0, 0).UTC()},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			w, err := ParsePeriod(tt.period, now)
			require.NoError(t, err)
			assert.Equal(t, tt.from, w.From)
			assert.Equal(t, to, w.To)
		})
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, p := range []string{"", "abc", "0d", "-3y", "5h", "y"} {
		t.Run(p, func(t *testing.T) {
			_, err := ParsePeriod(p, time.Now())
			assert.True(t, errors.Is(err, contracts.ErrInvalidPeriod), "period %q: %v", p, err)
		})
	}
}

func TestValidateInterval(t *testing.T) {
	assert.NoError(t, ValidateInterval("1d"))
	assert.NoError(t, ValidateInterval(""))
	assert.ErrorIs(t, ValidateInterval("1h"), contracts.ErrUnsupportedInterval)
	assert.ErrorIs(t, ValidateInterval("1wk"), contracts.ErrUnsupportedInterval)
}
