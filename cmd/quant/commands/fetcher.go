package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DongHyun925/RulePilot/internal/s0_data"
	"github.com/DongHyun925/RulePilot/internal/s0_data/collector"
)

// fetcherCmd represents the fetcher command
var fetcherCmd = &cobra.Command{
	Use:   "fetcher",
	Short: "가격 데이터 수집 도구",
	Long: `Yahoo Finance 에서 일봉을 받아 PostgreSQL(data.daily_prices)에 적재합니다.
적재 후 PRICE_SOURCE=postgres 로 엔진이 DB 에서 읽을 수 있습니다.

Example:
  go run ./cmd/quant fetcher collect QQQ TLT SPY
  go run ./cmd/quant fetcher collect QQQ --period 5y`,
}

// fetcherCollectCmd represents the collect subcommand
var fetcherCollectCmd = &cobra.Command{
	Use:   "collect [tickers...]",
	Short: "가격 수집 실행",
	Long: `지정한 종목(생략 시 신호 종목 + 벤치마크)의 일봉을 수집합니다.

Example:
  go run ./cmd/quant fetcher collect
  go run ./cmd/quant fetcher collect QQQ TLT --period 20y --workers 2`,
	RunE: runFetcherCollect,
}

var (
	// Fetcher flags
	fetcherPeriod  string
	fetcherWorkers int
)

func init() {
	rootCmd.AddCommand(fetcherCmd)
	fetcherCmd.AddCommand(fetcherCollectCmd)

	// Flags
	fetcherCollectCmd.Flags().StringVar(&fetcherPeriod, "period", "20y", "lookback period (e.g. 5d, 2y, 20y, max)")
	fetcherCollectCmd.Flags().IntVar(&fetcherWorkers, "workers", 4, "concurrent fetch workers")
}

func runFetcherCollect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	a, err := newApp(ctx, appOptions{needDB: true})
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := args
	if len(tickers) == 0 {
		tickers = defaultCollectTickers(a)
	}

	PrintHeader("Price Collection")
	PrintKeyValue("Tickers", fmt.Sprint(tickers), 8)
	PrintKeyValue("Period", fetcherPeriod, 8)
	PrintSeparator()

	// 수집은 항상 Yahoo → DB (PRICE_SOURCE 무관)
	col := collector.NewCollector(a.yahoo, s0_data.NewPriceRepository(a.db.Pool), "yahoo", a.log)
	results, err := col.CollectPrices(ctx, tickers, collector.Config{
		Workers: fetcherWorkers,
		Period:  fetcherPeriod,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			PrintError(fmt.Sprintf("%s: %v", r.Ticker, r.Error))
			continue
		}
		PrintSuccess(fmt.Sprintf("%s: %d rows", r.Ticker, r.PriceCount))
	}

	fmt.Printf("\nCompleted in %.2fs (%d/%d ok)\n", time.Since(start).Seconds(), len(results)-failed, len(results))
	if failed == len(results) && failed > 0 {
		return fmt.Errorf("all %d tickers failed", failed)
	}
	return nil
}

// defaultCollectTickers signal ticker + crisis benchmark (중복 제거)
func defaultCollectTickers(a *app) []string {
	tickers := []string{a.strategy.Signal.Ticker}
	if b := a.strategy.Crisis.Benchmark; b != a.strategy.Signal.Ticker {
		tickers = append(tickers, b)
	}
	return tickers
}
