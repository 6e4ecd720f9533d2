package s0_data

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

func rawCloses(ticker string, closes ...float64) *contracts.RawSeries {
	raw := &contracts.RawSeries{Ticker: ticker, Columns: []contracts.RawColumn{{Levels: []string{"Close"}}}}
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		raw.Dates = append(raw.Dates, start.AddDate(0, 0, i))
		raw.Columns[0].Values = append(raw.Columns[0].Values, contracts.Float(c))
	}
	return raw
}

func TestLoader_LoadMany(t *testing.T) {
	var calls int32
	feed := contracts.PriceFeedFunc(func(_ context.Context, ticker, period, interval string) (*contracts.RawSeries, error) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, contracts.IntervalDaily, interval)
		switch ticker {
		case "MISSING":
			return nil, contracts.NewNoDataError(ticker, period, nil)
		case "BROKEN":
			return nil, errors.New("connection reset")
		}
		return rawCloses(ticker, 100, 101, 102), nil
	})

	loader := NewLoader(feed, nil, LoaderConfig{Workers: 2}, nil, nil)
	data := loader.LoadMany(context.Background(), []string{"qqq", "MISSING", "SCHD", "BROKEN"}, "10y")

	require.Len(t, data, 4)
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))

	assert.Equal(t, "QQQ", data[0].Ticker)
	assert.True(t, data[0].Available())
	assert.Equal(t, 3, data[0].Series.Len())

	assert.False(t, data[1].Available())
	assert.ErrorIs(t, data[1].Err, contracts.ErrNoData)

	assert.True(t, data[2].Available())

	assert.False(t, data[3].Available())
	assert.False(t, errors.Is(data[3].Err, contracts.ErrNoData))

	assert.Equal(t, []string{"MISSING", "BROKEN"}, UnavailableTickers(data))
	assert.Len(t, AvailableSeries(data), 2)

	joined := JoinErrors(data)
	assert.ErrorIs(t, joined, contracts.ErrNoData)
}

func TestLoader_TimeoutIsNoData(t *testing.T) {
	feed := contracts.PriceFeedFunc(func(ctx context.Context, ticker, period, _ string) (*contracts.RawSeries, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	loader := NewLoader(feed, nil, LoaderConfig{Workers: 1, FetchTimeout: 20 * time.Millisecond}, nil, nil)
	_, err := loader.LoadOne(context.Background(), "SLOW", "5d")

	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrNoData)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoader_NormalizationFailure(t *testing.T) {
	feed := contracts.PriceFeedFunc(func(_ context.Context, ticker, _, _ string) (*contracts.RawSeries, error) {
		return &contracts.RawSeries{Ticker: ticker}, nil
	})

	_, err := NewLoader(feed, nil, DefaultLoaderConfig(), nil, nil).LoadOne(context.Background(), "EMPTY", "5d")
	assert.ErrorIs(t, err, contracts.ErrNoData)
}

func TestLoader_EmptyTicker(t *testing.T) {
	feed := contracts.PriceFeedFunc(func(context.Context, string, string, string) (*contracts.RawSeries, error) {
		t.Fatal("feed must not be called")
		return nil, nil
	})
	_, err := NewLoader(feed, nil, DefaultLoaderConfig(), nil, nil).LoadOne(context.Background(), "  ", "5d")
	assert.Error(t, err)
}

func TestLoader_WithCache(t *testing.T) {
	var calls int32
	feed := contracts.PriceFeedFunc(func(_ context.Context, ticker, period, _ string) (*contracts.RawSeries, error) {
		atomic.AddInt32(&calls, 1)
		if ticker == "MISSING" {
			return nil, contracts.NewNoDataError(ticker, period, nil)
		}
		return rawCloses(ticker, 100, 101), nil
	})
	c := &mapCache{m: map[string]contracts.PriceSeries{}}
	loader := NewLoader(feed, nil, DefaultLoaderConfig(), nil, nil).WithCache(c)
	ctx := context.Background()

	_, err := loader.LoadOne(ctx, "qqq", "2y")
	require.NoError(t, err)
	s, err := loader.LoadOne(ctx, "QQQ", "2y")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "second load served from cache")

	_, err = loader.LoadOne(ctx, "QQQ", "10y")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "different period is a separate key")

	for i := 0; i < 2; i++ {
		_, err = loader.LoadOne(ctx, "MISSING", "2y")
		assert.ErrorIs(t, err, contracts.ErrNoData)
	}
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls), "failures are not cached")
}

type mapCache struct {
	m map[string]contracts.PriceSeries
}

func (c *mapCache) Get(ticker, period string) (contracts.PriceSeries, bool) {
	s, ok := c.m[ticker+"|"+period]
	return s, ok
}

func (c *mapCache) Put(ticker, period string, s contracts.PriceSeries) {
	c.m[ticker+"|"+period] = s
}
