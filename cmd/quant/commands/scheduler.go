package commands

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/DongHyun925/RulePilot/internal/s0_data"
	"github.com/DongHyun925/RulePilot/internal/s0_data/collector"
	"github.com/DongHyun925/RulePilot/internal/scheduler"
	"github.com/DongHyun925/RulePilot/internal/scheduler/jobs"
	"github.com/DongHyun925/RulePilot/pkg/config"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `월간 신호 계산과 가격 적재를 스케줄합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run month_signal`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- month_signal: SIGNAL_SCHEDULE (기본: 매월 1일 07:00)
- price_collection: 평일 22:30 (PRICE_SOURCE=postgres 일 때만)
- cache_cleanup: 5분마다 (SERIES_CACHE_TTL > 0 일 때만)

METRICS_ENABLED=true 이면 METRICS_PORT 에서 /metrics 를 노출합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	// Flags
	schedulerTickers []string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringSliceVar(&schedulerTickers, "tickers", nil, "tickers for scheduled jobs (default: signal ticker + benchmark)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Println("=== RulePilot Scheduler ===")

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	var metricsServer *http.Server
	if a.cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              ":" + a.cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	if metricsServer != nil {
		_ = metricsServer.Close()
	}
	printJobStats(sched)
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	stats := sched.GetJobStats()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %-18s %s\n", jobName, stats[jobName].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	// 수동 실행은 재시도하지 않음
	sched.WithRetry(0, 0)

	result, err := sched.RunNow(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %s: %s", jobName, result.Duration.Round(time.Millisecond), result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func printJobStats(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Job Statistics:")
	for _, jobName := range names {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)
		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
}

func initScheduler(cmd *cobra.Command) (*app, *scheduler.Scheduler, error) {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return nil, nil, err
	}

	tickers := schedulerTickers
	if len(tickers) == 0 {
		tickers = defaultCollectTickers(a)
	}
	for i, t := range tickers {
		tickers[i] = strings.TrimSpace(t)
	}

	sched := scheduler.New(a.log)

	// 1. Monthly signal
	signalJob := jobs.NewMonthSignalJob(a.engine, tickers, a.cfg.SignalSchedule, a.log)
	if err := sched.AddJob(signalJob); err != nil {
		a.Close()
		return nil, nil, err
	}

	// 2. Price top-up (DB feed only)
	if a.cfg.PriceSource == config.PriceSourcePostgres {
		col := collector.NewCollector(a.yahoo, s0_data.NewPriceRepository(a.db.Pool), "yahoo", a.log)
		priceJob := jobs.NewPriceCollectionJob(col, tickers, collector.Config{
			Workers: a.strategy.Data.Workers,
			Period:  "1mo",
		}, a.log)
		if err := sched.AddJob(priceJob); err != nil {
			a.Close()
			return nil, nil, err
		}
	}

	// 3. Series cache cleanup
	if a.cache != nil {
		if err := sched.AddJob(jobs.NewCacheCleanupJob(a.cache, a.log)); err != nil {
			a.Close()
			return nil, nil, err
		}
	}

	return a, sched, nil
}
