package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DongHyun925/RulePilot/internal/s2_signals"
)

// signalCmd represents the signal command
var signalCmd = &cobra.Command{
	Use:   "signal [ticker]",
	Short: "월간 주식/안전자산 비중 신호",
	Long: `추세(MA50 vs MA200)와 변동성(20일 연율 vs 1년 중앙값)으로
이번 달 주식 비중을 계산합니다.

ticker 를 생략하면 strategy config 의 signal.ticker 를 사용합니다.

Example:
  go run ./cmd/quant signal
  go run ./cmd/quant signal SPY --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSignal,
}

func init() {
	rootCmd.AddCommand(signalCmd)
}

func runSignal(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	ticker := ""
	if len(args) == 1 {
		ticker = args[0]
	}

	sig, err := a.engine.ComputeMonthSignal(ctx, ticker)
	if err != nil {
		return fmt.Errorf("compute signal: %w", err)
	}

	if jsonOutput {
		return PrintJSON(sig)
	}

	PrintHeader(fmt.Sprintf("Month Signal - %s", sig.Ticker))
	PrintKeyValue("As of", sig.AsOf.Format("2006-01-02"), 12)
	PrintKeyValue("Equity", formatWeight(sig.EquityWeight), 12)
	PrintKeyValue("Safe", formatWeight(sig.SafeWeight), 12)
	PrintKeyValue("Trend score", fmt.Sprintf("%.0f", sig.TrendScore), 12)
	PrintKeyValue("Vol score", fmt.Sprintf("%.0f", sig.VolScore), 12)

	codes := make([]string, len(sig.ReasonCodes))
	for i, c := range sig.ReasonCodes {
		codes[i] = string(c)
	}
	PrintKeyValue("Reasons", strings.Join(codes, ", "), 12)
	PrintSeparator()
	fmt.Println(s2_signals.Headline(*sig))
	fmt.Println(s2_signals.Explain(sig.ReasonCodes))

	for _, w := range sig.Warnings {
		PrintWarning(fmt.Sprintf("%s: %s", w.Code, w.Message))
	}
	return nil
}
