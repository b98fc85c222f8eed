// Package reporting renders backtest output: the per-day trade table
// printed while a run executes, and CSV/Markdown reports built from
// persisted runs.
package reporting

import (
	"time"

	"crypto-backtest-lab/internal/domain"
)

// Report is a complete view of one persisted backtest run.
type Report struct {
	GeneratedAt time.Time
	Run         *domain.BacktestRun
	Curve       []domain.EquityPoint
	Executions  []*domain.Execution
}

// TotalReturnPct is the percent return from initial capital to the final
// curve point. Returns nil with an empty curve or zero capital.
func (r *Report) TotalReturnPct() *float64 {
	if len(r.Curve) == 0 || r.Run == nil || r.Run.InitialCapital <= 0 {
		return nil
	}
	pct := (r.Curve[len(r.Curve)-1].PortfolioValue/r.Run.InitialCapital - 1) * 100
	return &pct
}
