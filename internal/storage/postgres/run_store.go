package postgres

import (
	"context"
	"fmt"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (
			run_id, symbols, start_date, end_date,
			initial_capital, margin_requirement, strategy_id, created_at,
			final_value, sharpe_ratio, sortino_ratio, max_drawdown, max_drawdown_date
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12, $13
		)
	`

	_, err := s.pool.Exec(ctx, query,
		run.RunID, run.Symbols, run.StartDate, run.EndDate,
		run.InitialCapital, run.MarginRequirement, run.StrategyID, run.CreatedAt,
		run.FinalValue, run.SharpeRatio, run.SortinoRatio, run.MaxDrawdown, run.MaxDrawdownDate,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error) {
	query := `
		SELECT run_id, symbols, start_date, end_date,
			initial_capital, margin_requirement, strategy_id, created_at,
			final_value, sharpe_ratio, sortino_ratio, max_drawdown, max_drawdown_date
		FROM backtest_runs
		WHERE run_id = $1
	`

	var run domain.BacktestRun
	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&run.RunID, &run.Symbols, &run.StartDate, &run.EndDate,
		&run.InitialCapital, &run.MarginRequirement, &run.StrategyID, &run.CreatedAt,
		&run.FinalValue, &run.SharpeRatio, &run.SortinoRatio, &run.MaxDrawdown, &run.MaxDrawdownDate,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get backtest run by id: %w", err)
	}
	return &run, nil
}

// List retrieves all runs ordered by created_at ASC.
func (s *RunStore) List(ctx context.Context) ([]*domain.BacktestRun, error) {
	query := `
		SELECT run_id, symbols, start_date, end_date,
			initial_capital, margin_requirement, strategy_id, created_at,
			final_value, sharpe_ratio, sortino_ratio, max_drawdown, max_drawdown_date
		FROM backtest_runs
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list backtest runs: %w", err)
	}
	defer rows.Close()

	var result []*domain.BacktestRun
	for rows.Next() {
		var run domain.BacktestRun
		if err := rows.Scan(
			&run.RunID, &run.Symbols, &run.StartDate, &run.EndDate,
			&run.InitialCapital, &run.MarginRequirement, &run.StrategyID, &run.CreatedAt,
			&run.FinalValue, &run.SharpeRatio, &run.SortinoRatio, &run.MaxDrawdown, &run.MaxDrawdownDate,
		); err != nil {
			return nil, fmt.Errorf("scan backtest run: %w", err)
		}
		result = append(result, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest runs: %w", err)
	}
	return result, nil
}
