package jobs

import (
	"context"

	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// StaleCleaner drops expired cache entries (cache.SeriesCache)
type StaleCleaner interface {
	CleanStale() int
}

// CacheCleanupJob cleans stale series from cache
type CacheCleanupJob struct {
	cache  StaleCleaner
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(c StaleCleaner, log *logger.Logger) *CacheCleanupJob {
	if log == nil {
		log = logger.Nop()
	}
	return &CacheCleanupJob{
		cache:  c,
		logger: log.WithField("job", "cache_cleanup"),
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled cache cleanup")

	count := j.cache.CleanStale()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}

	return nil
}
