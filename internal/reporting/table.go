package reporting

import (
	"fmt"
	"strings"

	"crypto-backtest-lab/internal/domain"
)

// RenderDayTable renders one day's symbol rows followed by the summary
// row, the console view emitted while a backtest runs.
func RenderDayTable(rows []domain.DayRow, summary domain.DaySummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-12s %-10s %-6s %10s %12s %10s %10s %14s\n",
		"DATE", "SYMBOL", "ACTION", "QTY", "PRICE", "LONG", "SHORT", "POS VALUE"))

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%-12s %-10s %-6s %10d %12.2f %10d %10d %14.2f\n",
			row.Date, row.Symbol, row.Action,
			row.Quantity, row.Price,
			row.LongUnits, row.ShortUnits, row.PositionValue))
	}

	sb.WriteString(fmt.Sprintf("%-12s TOTAL: value=%.2f return=%+.2f%% cash=%.2f positions=%.2f",
		summary.Date, summary.TotalValue, summary.ReturnPct,
		summary.CashBalance, summary.TotalPositionValue))
	sb.WriteString(fmt.Sprintf(" sharpe=%s sortino=%s maxdd=%s",
		formatNullable(summary.SharpeRatio, "%.2f"),
		formatNullable(summary.SortinoRatio, "%.2f"),
		formatNullable(summary.MaxDrawdown, "%.2f%%")))
	if summary.BenchmarkReturnPct != nil {
		sb.WriteString(fmt.Sprintf(" benchmark=%+.2f%%", *summary.BenchmarkReturnPct))
	}
	sb.WriteString("\n")

	return sb.String()
}

// formatNullable formats a nullable metric, "-" when not yet computable.
func formatNullable(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
