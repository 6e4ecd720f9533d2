package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DongHyun925/RulePilot/internal/brain"
	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "백테스트 + 몬테카를로 전망",
	Long: `포트폴리오의 과거 누적 가치(기준 100)와 GBM 몬테카를로 예측 밴드를 계산합니다.

Flags:
  --weights   TICKER=WEIGHT 목록 (합이 1이 아니어도 정규화)
  --months    예측 기간 (기본: strategy config)
  --paths     시뮬레이션 경로 수 (기본: strategy config)
  --crisis    위기 구간 스트레스 테스트 포함

Example:
  go run ./cmd/quant simulate --weights QQQ=0.6,TLT=0.4
  go run ./cmd/quant simulate --weights QQQ=1 --months 24 --paths 1000 --crisis`,
	RunE: runSimulate,
}

var (
	simWeights string
	simMonths  int
	simPaths   int
	simCrisis  bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simWeights, "weights", "", "portfolio weights, e.g. QQQ=0.6,TLT=0.4")
	simulateCmd.Flags().IntVar(&simMonths, "months", 0, "forecast horizon in months (0: strategy default)")
	simulateCmd.Flags().IntVar(&simPaths, "paths", 0, "Monte Carlo paths (0: strategy default)")
	simulateCmd.Flags().BoolVar(&simCrisis, "crisis", false, "include crisis stress test")
	_ = simulateCmd.MarkFlagRequired("weights")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := parseWeights(simWeights)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.engine.RunReport(ctx, brain.SimulationRequest{
		Weights:       contracts.NewPortfolioWeights(raw),
		HorizonMonths: simMonths,
		NumPaths:      simPaths,
	}, simCrisis)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	if jsonOutput {
		return PrintJSON(report)
	}

	printSimulation(report.Simulation)
	if simCrisis {
		printCrisis(report.Crisis)
	}
	return nil
}

func printSimulation(res *contracts.SimulationResult) {
	PrintHeader("Backtest & Forecast")
	PrintKeyValue("Run ID", res.RunID, 14)
	PrintKeyValue("Weights", res.Weights.String(), 14)
	if len(res.UnavailableTickers) > 0 {
		PrintKeyValue("Unavailable", fmt.Sprint(res.UnavailableTickers), 14)
	}
	if last, ok := res.LastHistory(); ok {
		first := res.History[0]
		PrintKeyValue("History", fmt.Sprintf("%s ~ %s (%d days)",
			contracts.FormatDate(first.Date), contracts.FormatDate(last.Date), len(res.History)), 14)
		PrintKeyValue("Final value", fmt.Sprintf("%.2f", last.Value), 14)
	}

	PrintSeparator()
	PrintKeyValue("CAGR", formatPercent(res.Metrics.CAGR), 14)
	PrintKeyValue("Volatility", formatPercent(res.Metrics.AnnualizedVolatility), 14)
	PrintKeyValue("Max drawdown", formatPercent(res.Metrics.MaxDrawdown), 14)
	PrintKeyValue("VaR 95 (1d)", formatPercent(res.Metrics.VaR95), 14)
	PrintKeyValue("CVaR 95 (1d)", formatPercent(res.Metrics.CVaR95), 14)
	PrintKeyValue("mu / sigma", fmt.Sprintf("%.4f / %.4f", res.Mu, res.Sigma), 14)
	PrintKeyValue("Paths", fmt.Sprintf("%d x %d steps", res.Paths, res.Steps), 14)

	if n := len(res.Forecast); n > 0 {
		fmt.Println()
		widths := []int{12, 12, 12, 12}
		PrintTableHeader([]string{"Date", "Lower 5%", "Mean", "Upper 95%"}, widths)
		// 월말 지점만 출력
		step := (n - 1) / 12
		if step < 1 {
			step = 1
		}
		for i := 0; i < n; i += step {
			printForecastRow(res.Forecast[i], widths)
		}
		if (n-1)%step != 0 {
			printForecastRow(res.Forecast[n-1], widths)
		}
	}
}

func printForecastRow(p contracts.ForecastPoint, widths []int) {
	PrintTableRow([]string{
		contracts.FormatDate(p.Date),
		fmt.Sprintf("%.2f", p.Lower5),
		fmt.Sprintf("%.2f", p.Mean),
		fmt.Sprintf("%.2f", p.Upper95),
	}, widths)
}
