package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// SeriesCache is an in-memory cache of normalized price series
// ⭐ SSOT: 정규화된 시계열 캐싱은 이 구조체에서만
// 키는 (ticker, period): period 는 now 기준 상대 구간이므로 TTL 이 지나면 버림
type SeriesCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	hits    int64
	misses  int64
	logger  *logger.Logger
	now     func() time.Time
}

type entry struct {
	series   contracts.PriceSeries
	storedAt time.Time
}

// NewSeriesCache creates a new series cache
func NewSeriesCache(ttl time.Duration, log *logger.Logger) *SeriesCache {
	if log == nil {
		log = logger.Nop()
	}
	return &SeriesCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		logger:  log.WithComponent("series_cache"),
		now:     time.Now,
	}
}

func key(ticker, period string) string {
	return contracts.NormalizeTicker(ticker) + "|" + period
}

// Get returns a fresh series; stale entries count as a miss.
func (c *SeriesCache) Get(ticker, period string) (contracts.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key(ticker, period)]
	if !exists || c.now().Sub(e.storedAt) > c.ttl {
		c.misses++
		return contracts.PriceSeries{}, false
	}
	c.hits++
	return e.series, true
}

// Put stores series; empty series are ignored.
func (c *SeriesCache) Put(ticker, period string, series contracts.PriceSeries) {
	if series.IsEmpty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key(ticker, period)] = &entry{series: series, storedAt: c.now()}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"period": period,
		"points": series.Len(),
	}).Debug("Updated series cache")
}

// Delete removes every cached period of ticker
func (c *SeriesCache) Delete(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := contracts.NormalizeTicker(ticker) + "|"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Clear clears all series from cache
func (c *SeriesCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.logger.Info("Cleared series cache")
}

// Len returns the number of cached series
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanStale removes stale series from cache
func (c *SeriesCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0

	for k, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale series from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *SeriesCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		TotalCount: len(c.entries),
		Hits:       c.hits,
		Misses:     c.misses,
	}

	now := c.now()
	for _, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			stats.StaleCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.StaleCount

	return stats
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalCount int   `json:"total_count"`
	FreshCount int   `json:"fresh_count"`
	StaleCount int   `json:"stale_count"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
}
