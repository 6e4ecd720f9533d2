package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression (with seconds)
	// Examples: "0 0 7 1 * *" (1st of each month, 07:00)
	//           "@monthly", "@daily"
	Schedule() string
}

// historyLimit 작업별 보관 실행 이력 수
const historyLimit = 100

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory stores job execution history (oldest first)
// Scheduler.mu 로 보호됨
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, keeping the most recent historyLimit entries.
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = append([]JobResult(nil), h.Results[len(h.Results)-historyLimit:]...)
	}
}

// Latest returns a copy of the last n results.
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	out := make([]JobResult, n)
	copy(out, h.Results[len(h.Results)-n:])
	return out
}

// Stats summarizes the history.
func (h *JobHistory) Stats(name, schedule string) JobStats {
	stats := JobStats{JobName: name, Schedule: schedule, TotalRuns: len(h.Results)}
	for i := range h.Results {
		r := &h.Results[i]
		stats.LastRun = &r.StartTime
		if r.Success {
			stats.SuccessCount++
			stats.LastSuccess = &r.StartTime
		} else {
			stats.FailureCount++
			stats.LastFailure = &r.StartTime
		}
	}
	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalRuns)
	}
	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}
