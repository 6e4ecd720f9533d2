package s0_data

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// Window 요청 구간 [From, To]
type Window struct {
	From time.Time
	To   time.Time
}

var periodPattern = regexp.MustCompile(`^(\d+)\s*(d|day|days|wk|w|week|weeks|mo|month|months|y|yr|year|years)$`)

// ParsePeriod converts a lookback string ("5d", "2y", "6mo", "ytd", "max")
// into a date window ending at now.
func ParsePeriod(period string, now time.Time) (Window, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	to := contracts.TruncateDate(now)

	switch p {
	case "ytd":
		return Window{From: time.Date(to.Year(), 1, 1, 0, 0, 0, 0, time.UTC), To: to}, nil
	case "max":
		return Window{From: time.Unix(0, 0).UTC(), To: to}, nil
	}

	m := periodPattern.FindStringSubmatch(p)
	if m == nil {
		return Window{}, fmt.Errorf("%w: %q", contracts.ErrInvalidPeriod, period)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return Window{}, fmt.Errorf("%w: %q", contracts.ErrInvalidPeriod, period)
	}

	var from time.Time
	switch m[2] {
	case "d", "day", "days":
		from = to.AddDate(0, 0, -n)
	case "wk", "w", "week", "weeks":
		from = to.AddDate(0, 0, -7*n)
	case "mo", "month", "months":
		from = to.AddDate(0, -n, 0)
	default:
		from = to.AddDate(-n, 0, 0)
	}
	return Window{From: from, To: to}, nil
}

// ValidateInterval accepts only daily bars ("" means daily).
func ValidateInterval(interval string) error {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "", contracts.IntervalDaily:
		return nil
	default:
		return fmt.Errorf("%w: %q (only %s)", contracts.ErrUnsupportedInterval, interval, contracts.IntervalDaily)
	}
}
