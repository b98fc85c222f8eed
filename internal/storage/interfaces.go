package storage

import (
	"context"

	"crypto-backtest-lab/internal/domain"
)

// CandleStore provides access to daily candle storage.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails entire batch on duplicate
	// (symbol, timeframe, timestamp_ms).
	InsertBulk(ctx context.Context, candles []*domain.Candle) error

	// GetBySymbol retrieves all candles for a symbol and timeframe,
	// ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol, timeframe string) ([]*domain.Candle, error)

	// GetByTimeRange retrieves candles within [start, end] (inclusive, ms),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol, timeframe string, start, end int64) ([]*domain.Candle, error)
}

// RunStore provides access to backtest_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.BacktestRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error)

	// List retrieves all runs ordered by created_at ASC.
	List(ctx context.Context) ([]*domain.BacktestRun, error)
}

// EquityPointStore provides access to per-run equity curve storage.
type EquityPointStore interface {
	// InsertBulk adds multiple points for a run. Fails entire batch on
	// duplicate (run_id, date).
	InsertBulk(ctx context.Context, runID string, points []domain.EquityPoint) error

	// GetByRunID retrieves the full equity curve for a run, ordered by
	// date ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.EquityPoint, error)
}

// ExecutionStore provides access to per-run executed trade storage.
type ExecutionStore interface {
	// InsertBulk adds multiple executions. Fails entire batch on duplicate
	// (run_id, date, symbol).
	InsertBulk(ctx context.Context, executions []*domain.Execution) error

	// GetByRunID retrieves all executions for a run, ordered by date ASC,
	// symbol ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.Execution, error)
}
