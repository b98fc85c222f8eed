package domain

import "time"

// BacktestRun records one backtest invocation and its final metrics.
// Corresponds to the backtest_runs table in PostgreSQL.
type BacktestRun struct {
	RunID             string // PRIMARY KEY, deterministic hash
	Symbols           []string
	StartDate         time.Time
	EndDate           time.Time
	InitialCapital    float64
	MarginRequirement float64
	StrategyID        string // decision source identifier
	CreatedAt         int64  // record creation timestamp (ms)

	// Final state, nil when the run was cancelled before completion.
	FinalValue      *float64
	SharpeRatio     *float64
	SortinoRatio    *float64
	MaxDrawdown     *float64
	MaxDrawdownDate *time.Time
}

// Execution is one filled (possibly zero-size) trade booked during a run.
// Corresponds to the executions table in PostgreSQL.
type Execution struct {
	RunID    string
	Date     time.Time
	Symbol   string
	Action   Action
	Quantity int64 // units actually executed, may be 0
	Price    float64
}
