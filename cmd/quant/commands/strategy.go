package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/DongHyun925/RulePilot/internal/strategyconfig"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "엔진 설정(YAML) 검증/출력",
	Long: `strategy config 를 읽어 기본값을 채우고 검증한 뒤 해시와 함께 출력합니다.

Example:
  go run ./cmd/quant strategy show
  go run ./cmd/quant strategy show --strategy configs/engine.yaml`,
}

var strategyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "유효 설정 출력",
	RunE:  runStrategyShow,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyShowCmd)
}

func runStrategyShow(cmd *cobra.Command, args []string) error {
	cfg, err := strategyconfig.LoadOrDefault(strategyFile)
	if err != nil {
		return err
	}
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	if jsonOutput {
		return PrintJSON(map[string]interface{}{"hash": hash, "config": cfg})
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal strategy config: %w", err)
	}
	fmt.Printf("# hash: %s\n", hash)
	fmt.Print(string(out))
	return nil
}
