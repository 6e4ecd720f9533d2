package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

type memoryStore struct {
	mu    sync.Mutex
	saved map[string]int
}

func (s *memoryStore) SaveRaw(_ context.Context, raw *contracts.RawSeries, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]int)
	}
	s.saved[raw.Ticker] = len(raw.Dates)
	return len(raw.Dates), nil
}

func TestCollectPrices(t *testing.T) {
	feed := contracts.PriceFeedFunc(func(_ context.Context, ticker, period, _ string) (*contracts.RawSeries, error) {
		if ticker == "GONE" {
			return nil, contracts.NewNoDataError(ticker, period, nil)
		}
		d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		return &contracts.RawSeries{
			Ticker: ticker,
			Dates:  []time.Time{d, d.AddDate(0, 0, 1)},
			Columns: []contracts.RawColumn{
				{Levels: []string{"Close"}, Values: []*float64{contracts.Float(10), contracts.Float(11)}},
			},
		}, nil
	})
	store := &memoryStore{}
	c := NewCollector(feed, store, "test", nil)

	results, err := c.CollectPrices(context.Background(), []string{"qqq", "SPY", "GONE"}, Config{Workers: 2, Period: "5d"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byTicker := make(map[string]FetchResult)
	for _, r := range results {
		byTicker[r.Ticker] = r
	}
	assert.Equal(t, 2, byTicker["QQQ"].PriceCount)
	assert.NoError(t, byTicker["SPY"].Error)
	assert.ErrorIs(t, byTicker["GONE"].Error, contracts.ErrNoData)
	assert.Equal(t, map[string]int{"QQQ": 2, "SPY": 2}, store.saved)
}

func TestCollectPrices_InvalidConfig(t *testing.T) {
	c := NewCollector(nil, &memoryStore{}, "test", nil)

	_, err := c.CollectPrices(context.Background(), []string{"QQQ"}, Config{Workers: 0, Period: "5d"})
	assert.Error(t, err)

	_, err = c.CollectPrices(context.Background(), []string{"QQQ"}, Config{Workers: 1})
	assert.Error(t, err)
}
