package strategyconfig

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/s0_data"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	validateOnce sync.Once
	structValid  *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structValid = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValid
}

// Validate checks all required constraints
// 실패 시 ValidationError 반환
func Validate(cfg *Config) error {
	// === 태그 기반 (범위/필수) ===
	if err := structValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{fieldPath(fe.Namespace()), describe(fe)}
		}
		return err
	}

	// === Data / periods ===
	for field, period := range map[string]string{
		"signal.period":             cfg.Signal.Period,
		"simulation.history_period": cfg.Simulation.HistoryPeriod,
		"crisis.history_period":     cfg.Crisis.HistoryPeriod,
	} {
		if _, err := s0_data.ParsePeriod(period, time.Now()); err != nil {
			return ValidationError{field, err.Error()}
		}
	}

	// === Signal ===
	m := cfg.Signal.Model
	if m.EquityBase < m.EquityMin || m.EquityBase > m.EquityMax {
		return ValidationError{"signal.model.equity_base", "must lie within [equity_min, equity_max]"}
	}

	// === Crisis ===
	seen := make(map[string]bool, len(cfg.Crisis.Scenarios))
	for i, sc := range cfg.Crisis.Scenarios {
		field := fmt.Sprintf("crisis.scenarios[%d]", i)
		if _, err := contracts.NewDateRange(sc.Start, sc.End); err != nil {
			return ValidationError{field, err.Error()}
		}
		if seen[sc.Name] {
			return ValidationError{field, fmt.Sprintf("duplicate scenario name %q", sc.Name)}
		}
		seen[sc.Name] = true
	}

	return nil
}

// fieldPath turns "Config.Signal.Model.VolHigh" into "signal.model.volhigh".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

func describe(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("failed %q (value %v)", fe.Tag(), fe.Value())
	}
	return fmt.Sprintf("failed %q=%s (value %v)", fe.Tag(), fe.Param(), fe.Value())
}
