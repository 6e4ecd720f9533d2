package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// crisisCmd represents the crisis command
var crisisCmd = &cobra.Command{
	Use:   "crisis",
	Short: "과거 위기 구간 스트레스 테스트",
	Long: `2008 GFC, COVID, 2022 금리 인상 구간(또는 strategy config 의 시나리오)에서
포트폴리오와 벤치마크의 수익률/MDD를 비교합니다.

구간에 데이터가 없는 종목은 제외하고 나머지 비중을 재조정합니다.

Example:
  go run ./cmd/quant crisis --weights QQQ=0.6,TLT=0.4
  go run ./cmd/quant crisis --weights QQQ=1 --benchmark SPY --json`,
	RunE: runCrisis,
}

var (
	crisisWeights   string
	crisisBenchmark string
)

func init() {
	rootCmd.AddCommand(crisisCmd)

	crisisCmd.Flags().StringVar(&crisisWeights, "weights", "", "portfolio weights, e.g. QQQ=0.6,TLT=0.4")
	crisisCmd.Flags().StringVar(&crisisBenchmark, "benchmark", "", "benchmark ticker (default: strategy config)")
	_ = crisisCmd.MarkFlagRequired("weights")
}

func runCrisis(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := parseWeights(crisisWeights)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.engine.RunCrisisStressTest(ctx, contracts.NewPortfolioWeights(raw), crisisBenchmark)
	if err != nil {
		return fmt.Errorf("crisis stress test: %w", err)
	}

	if jsonOutput {
		return PrintJSON(rows)
	}
	printCrisis(rows)
	return nil
}

func printCrisis(rows []contracts.CrisisScenarioResult) {
	PrintHeader("Crisis Stress Test")
	widths := []int{16, 23, 11, 11, 11, 11, 11}
	PrintTableHeader([]string{"Scenario", "Range", "Port Ret", "Port MDD", "Bench Ret", "Bench MDD", "Defended"}, widths)

	for _, r := range rows {
		if r.Status != contracts.CrisisOK {
			PrintTableRow([]string{r.Name, r.Range.String(), string(r.Status), "", "", "", ""}, widths)
			continue
		}
		defended := "no"
		if r.PortfolioMDD > r.BenchmarkMDD {
			defended = "yes"
		}
		PrintTableRow([]string{
			r.Name,
			r.Range.String(),
			formatPercent(r.PortfolioReturn),
			formatPercent(r.PortfolioMDD),
			formatPercent(r.BenchmarkReturn),
			formatPercent(r.BenchmarkMDD),
			defended,
		}, widths)
	}
}
