package contracts

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPriceSeries_Validation(t *testing.T) {
	tests := []struct {
		name    string
		points  []PricePoint
		wantErr bool
	}{
		{
			name: "valid ascending",
			points: []PricePoint{
				{Date: day(2024, 1, 2), Close: 100},
				{Date: day(2024, 1, 3), Close: 101},
			},
		},
		{
			name:   "empty is allowed",
			points: nil,
		},
		{
			name: "duplicate date",
			points: []PricePoint{
				{Date: day(2024, 1, 2), Close: 100},
				{Date: day(2024, 1, 2), Close: 101},
			},
			wantErr: true,
		},
		{
			name: "descending",
			points: []PricePoint{
				{Date: day(2024, 1, 3), Close: 100},
				{Date: day(2024, 1, 2), Close: 101},
			},
			wantErr: true,
		},
		{
			name:    "NaN close",
			points:  []PricePoint{{Date: day(2024, 1, 2), Close: math.NaN()}},
			wantErr: true,
		},
		{
			name:    "non-positive close",
			points:  []PricePoint{{Date: day(2024, 1, 2), Close: 0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceSeries("QQQ", tt.points)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPriceSeries() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPriceSeries_Returns(t *testing.T) {
	closes := []float64{100, 102, 99.5, 99.5, 105}
	points := make([]PricePoint, len(closes))
	for i, c := range closes {
		points[i] = PricePoint{Date: day(2024, 1, 2).AddDate(0, 0, i), Close: c}
	}
	series := MustPriceSeries("SPY", points)

	ret := series.Returns()
	if ret.Len() != series.Len()-1 {
		t.Fatalf("Returns() len = %d, want %d", ret.Len(), series.Len()-1)
	}
	for i := 0; i < ret.Len(); i++ {
		want := closes[i+1]/closes[i] - 1
		if got := ret.At(i).Return; got != want {
			t.Errorf("return[%d] = %v, want %v", i, got, want)
		}
		if !ret.At(i).Date.Equal(points[i+1].Date) {
			t.Errorf("return[%d] date = %s, want %s", i, FormatDate(ret.At(i).Date), FormatDate(points[i+1].Date))
		}
	}
}

func TestPriceSeries_ReturnsShortSeries(t *testing.T) {
	single := MustPriceSeries("SPY", []PricePoint{{Date: day(2024, 1, 2), Close: 100}})
	if got := single.Returns().Len(); got != 0 {
		t.Errorf("Returns() of single point len = %d, want 0", got)
	}
}

func TestPriceSeries_Slice(t *testing.T) {
	points := []PricePoint{
		{Date: day(2024, 1, 2), Close: 1},
		{Date: day(2024, 1, 3), Close: 2},
		{Date: day(2024, 1, 4), Close: 3},
		{Date: day(2024, 1, 5), Close: 4},
	}
	series := MustPriceSeries("SPY", points)

	sub := series.Slice(day(2024, 1, 3), day(2024, 1, 4))
	if sub.Len() != 2 {
		t.Fatalf("Slice() len = %d, want 2", sub.Len())
	}
	if sub.First().Close != 2 || sub.Last().Close != 3 {
		t.Errorf("Slice() = %v, want closes 2..3", sub.Closes())
	}

	if empty := series.Slice(day(2023, 1, 1), day(2023, 12, 31)); !empty.IsEmpty() {
		t.Errorf("Slice() outside range len = %d, want 0", empty.Len())
	}
}

func TestPriceSeries_PointsIsCopy(t *testing.T) {
	series := MustPriceSeries("SPY", []PricePoint{{Date: day(2024, 1, 2), Close: 100}})
	pts := series.Points()
	pts[0].Close = 1
	if series.At(0).Close != 100 {
		t.Error("Points() leaked internal storage")
	}
}

func TestNoDataError_Is(t *testing.T) {
	cause := errors.New("http 404")
	err := fmt.Errorf("load: %w", NewNoDataError("ZZZ", "10y", cause))

	if !errors.Is(err, ErrNoData) {
		t.Error("expected errors.Is(err, ErrNoData)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}

	var nd *NoDataError
	if !errors.As(err, &nd) || nd.Ticker != "ZZZ" {
		t.Errorf("errors.As() ticker = %v", nd)
	}
}

func TestEmptyPortfolioError_Is(t *testing.T) {
	err := fmt.Errorf("aggregate: %w", &EmptyPortfolioError{Tickers: []string{"A", "B"}})
	if !errors.Is(err, ErrEmptyPortfolio) {
		t.Error("expected errors.Is(err, ErrEmptyPortfolio)")
	}
}

func TestDateRange(t *testing.T) {
	r, err := NewDateRange("2020-02-19", "2020-03-23")
	if err != nil {
		t.Fatalf("NewDateRange() error = %v", err)
	}
	if !r.Contains(day(2020, 2, 19)) || !r.Contains(day(2020, 3, 23)) {
		t.Error("range must be inclusive on both ends")
	}
	if r.Contains(day(2020, 3, 24)) {
		t.Error("range must exclude dates after end")
	}
	if r.String() != "2020-02-19~2020-03-23" {
		t.Errorf("String() = %s", r.String())
	}

	if _, err := NewDateRange("2020-03-23", "2020-02-19"); err == nil {
		t.Error("expected error for inverted range")
	}
}
