package s2_signals

import (
	"fmt"
	"strings"

	"github.com/DongHyun925/RulePilot/internal/contracts"
)

var reasonText = map[contracts.ReasonCode]string{
	contracts.ReasonTrendUp:   "The market is trading above its long-term average, so the trend is positive.",
	contracts.ReasonTrendDown: "The market is trading below its long-term average, so some caution is warranted.",
	contracts.ReasonVolSpike:  "Prices have been swinging a lot lately (high volatility), so risk is elevated.",
	contracts.ReasonDefault:   "No strong signal this month, so the base strategy applies.",
}

const noSignalText = "No particular signal this month, so the default weights were used."

// Explain turns reason codes into beginner-friendly bullet lines.
// Unknown codes are echoed.
func Explain(codes []contracts.ReasonCode) string {
	if len(codes) == 0 {
		return noSignalText
	}

	lines := make([]string, 0, len(codes))
	for _, c := range codes {
		text, ok := reasonText[c]
		if !ok {
			text = fmt.Sprintf("Signal code: %s", c)
		}
		lines = append(lines, "- "+text)
	}
	return strings.Join(lines, "\n")
}

// Headline renders the weights as a one-line summary, e.g. "QQQ equity 82% / safe 18%".
func Headline(s contracts.MonthSignal) string {
	return fmt.Sprintf("%s equity %.0f%% / safe %.0f%%", s.Ticker, s.EquityWeight*100, s.SafeWeight*100)
}
