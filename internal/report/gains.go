package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-scanner/internal/backtest"
)

// RenderGains renders a backtest outcome, lowest gain first.
func RenderGains(outcome backtest.Outcome) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Backtest (%d symbols)", len(outcome.Results))))
	b.WriteString("\n")

	if len(outcome.Results) > 0 {
		rows := make([][]string, 0, len(outcome.Results))
		for _, result := range outcome.Results {
			rows = append(rows, []string{
				result.Symbol,
				result.BuyDate.Format(time.DateOnly),
				result.Cost.StringFixed(2),
				result.SellDate.Format(time.DateOnly),
				result.SellPrice.StringFixed(2),
				formatGain(result.Gain.StringFixed(2), result.Gain.Sign()),
				result.GainPercent.StringFixed(2) + "%",
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(borderStyle).
			Headers("SYMBOL", "BOUGHT", "COST", "SOLD", "PRICE", "GAIN", "GAIN %").
			Rows(rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}

				return cellStyle
			})

		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	writeExclusions(&b, "Skipped", outcome.Skipped)

	return b.String()
}

// formatGain marks a gain with an arrow for its direction.
func formatGain(value string, sign int) string {
	switch {
	case sign > 0:
		return value + " ▲"
	case sign < 0:
		return value + " ▼"
	default:
		return value
	}
}
