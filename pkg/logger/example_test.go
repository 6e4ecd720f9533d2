package logger_test

import (
	"errors"

	"github.com/DongHyun925/RulePilot/pkg/config"
	"github.com/DongHyun925/RulePilot/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).WithComponent("brain")

	log.WithFields(map[string]interface{}{
		"tickers": []string{"QQQ", "SCHD"},
		"paths":   100,
	}).Info("simulation started")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "warn",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("no price data for ZZZ")
	log.WithError(err).WithField("ticker", "ZZZ").Warn("ticker unavailable")
}
