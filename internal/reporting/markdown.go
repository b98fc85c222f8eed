package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a run report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Backtest Report: %s\n\n", r.Run.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Run Summary
	sb.WriteString("## Run Summary\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Symbols | %s |\n", strings.Join(r.Run.Symbols, ", ")))
	sb.WriteString(fmt.Sprintf("| Period | %s to %s |\n",
		r.Run.StartDate.Format("2006-01-02"), r.Run.EndDate.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("| Strategy | %s |\n", r.Run.StrategyID))
	sb.WriteString(fmt.Sprintf("| Initial Capital | %.2f |\n", r.Run.InitialCapital))
	if r.Run.FinalValue != nil {
		sb.WriteString(fmt.Sprintf("| Final Value | %.2f |\n", *r.Run.FinalValue))
	}
	if ret := r.TotalReturnPct(); ret != nil {
		sb.WriteString(fmt.Sprintf("| Total Return | %+.2f%% |\n", *ret))
	}
	sb.WriteString("\n")

	// Performance
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %s |\n", formatNullable(r.Run.SharpeRatio, "%.4f")))
	sb.WriteString(fmt.Sprintf("| Sortino Ratio | %s |\n", formatNullable(r.Run.SortinoRatio, "%.4f")))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %s |\n", formatNullable(r.Run.MaxDrawdown, "%.2f%%")))
	if r.Run.MaxDrawdownDate != nil {
		sb.WriteString(fmt.Sprintf("| Max Drawdown Date | %s |\n", r.Run.MaxDrawdownDate.Format("2006-01-02")))
	}
	sb.WriteString("\n")

	// Equity Curve
	sb.WriteString("## Equity Curve\n\n")
	if len(r.Curve) > 0 {
		sb.WriteString("| Date | Value | Long | Short | Net |\n")
		sb.WriteString("|------|-------|------|-------|-----|\n")
		for _, p := range r.Curve {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f |\n",
				p.Date.Format("2006-01-02"), p.PortfolioValue,
				p.LongExposure, p.ShortExposure, p.NetExposure))
		}
	} else {
		sb.WriteString("No equity points recorded.\n")
	}
	sb.WriteString("\n")

	// Executions
	sb.WriteString("## Executed Trades\n\n")
	if len(r.Executions) > 0 {
		sb.WriteString("| Date | Symbol | Action | Quantity | Price |\n")
		sb.WriteString("|------|--------|--------|----------|-------|\n")
		for _, e := range r.Executions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.4f |\n",
				e.Date.Format("2006-01-02"), e.Symbol, e.Action, e.Quantity, e.Price))
		}
	} else {
		sb.WriteString("No trades executed.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
