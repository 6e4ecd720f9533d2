package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/s0_data/collector"
)

type countingStore struct {
	mu   sync.Mutex
	rows map[string]int
}

func (s *countingStore) SaveRaw(_ context.Context, raw *contracts.RawSeries, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[raw.Ticker] += len(raw.Dates)
	return len(raw.Dates), nil
}

func feedFor(known ...string) contracts.PriceFeed {
	return contracts.PriceFeedFunc(func(_ context.Context, ticker, period, _ string) (*contracts.RawSeries, error) {
		for _, k := range known {
			if k == ticker {
				return &contracts.RawSeries{
					Ticker:  ticker,
					Dates:   []time.Time{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
					Columns: []contracts.RawColumn{{Levels: []string{"Close"}, Values: []*float64{contracts.Float(10)}}},
				}, nil
			}
		}
		return nil, contracts.NewNoDataError(ticker, period, nil)
	})
}

func TestPriceCollectionJob_Run(t *testing.T) {
	store := &countingStore{rows: map[string]int{}}
	col := collector.NewCollector(feedFor("QQQ"), store, "yahoo", nil)
	job := NewPriceCollectionJob(col, []string{"QQQ", "GONE"}, collector.Config{Workers: 2, Period: "5d"}, nil)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, store.rows["QQQ"])

	allBad := NewPriceCollectionJob(col, []string{"GONE"}, collector.Config{Workers: 1, Period: "5d"}, nil)
	assert.Error(t, allBad.Run(context.Background()))

	misconfigured := NewPriceCollectionJob(col, []string{"QQQ"}, collector.Config{}, nil)
	assert.Error(t, misconfigured.Run(context.Background()))
}
