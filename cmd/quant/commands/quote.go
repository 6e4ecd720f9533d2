package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote [ticker]",
	Short: "최근 종가 조회 (FX_RATE 환산)",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	q, err := a.engine.LatestClose(ctx, args[0])
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}

	if jsonOutput {
		return PrintJSON(q)
	}
	PrintHeader(fmt.Sprintf("Quote - %s", q.Ticker))
	PrintKeyValue("As of", contracts.FormatDate(q.AsOf), 10)
	PrintKeyValue("Close", formatNumber(q.Close), 10)
	PrintKeyValue("FX rate", formatNumber(q.FXRate), 10)
	PrintKeyValue("Converted", formatNumber(q.Converted), 10)
	return nil
}
