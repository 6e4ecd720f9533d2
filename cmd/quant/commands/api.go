package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/DongHyun925/RulePilot/internal/api"
	"github.com/DongHyun925/RulePilot/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  GET  /metrics              - Prometheus (METRICS_ENABLED=true)
  GET  /api/signal/{ticker}  - 월간 비중 신호
  POST /api/simulate         - 백테스트 + 몬테카를로 (+ 위기 테스트)
  POST /api/crisis           - 위기 구간 스트레스 테스트
  GET  /api/quote/{ticker}   - 최근 종가

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fmt.Println("=== RulePilot API Server ===")

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":         a.cfg.Port,
		"env":          a.cfg.Env,
		"price_source": a.cfg.PriceSource,
	}).Info("Initializing API server")

	var gatherer prometheus.Gatherer
	if a.cfg.MetricsEnabled {
		gatherer = a.registry
	}

	engineHandler := handlers.NewEngineHandler(a.engine, a.log)
	router := api.NewRouter(engineHandler, a.metrics, gatherer, a.log)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
