package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	jsonOutput   bool
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "RulePilot - 포트폴리오 신호 & 리스크 전망 엔진",
	Long: `RulePilot Unified CLI

월간 주식/안전자산 비중 신호, 백테스트 + 몬테카를로 전망,
과거 위기 구간 스트레스 테스트를 제공합니다.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant signal QQQ
  go run ./cmd/quant simulate --weights QQQ=0.6,TLT=0.4 --months 12
  go run ./cmd/quant crisis --weights QQQ=0.6,TLT=0.4
  go run ./cmd/quant api
  go run ./cmd/quant fetcher collect QQQ TLT SPY`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C / SIGTERM cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy config YAML (default: STRATEGY_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
