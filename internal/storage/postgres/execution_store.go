package postgres

import (
	"context"
	"fmt"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

// ExecutionStore implements storage.ExecutionStore using PostgreSQL.
type ExecutionStore struct {
	pool *Pool
}

// NewExecutionStore creates a new ExecutionStore.
func NewExecutionStore(pool *Pool) *ExecutionStore {
	return &ExecutionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExecutionStore = (*ExecutionStore)(nil)

// InsertBulk adds multiple executions atomically. Fails entire batch on
// duplicate (run_id, date, symbol).
func (s *ExecutionStore) InsertBulk(ctx context.Context, executions []*domain.Execution) error {
	if len(executions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO executions (
			run_id, date, symbol, action, quantity, price
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	for _, e := range executions {
		if e == nil || e.RunID == "" || e.Symbol == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			e.RunID, e.Date, e.Symbol, string(e.Action), e.Quantity, e.Price,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert execution in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves all executions for a run, ordered by date ASC, symbol ASC.
func (s *ExecutionStore) GetByRunID(ctx context.Context, runID string) ([]*domain.Execution, error) {
	query := `
		SELECT run_id, date, symbol, action, quantity, price
		FROM executions
		WHERE run_id = $1
		ORDER BY date ASC, symbol ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Execution
	for rows.Next() {
		var e domain.Execution
		var action string
		if err := rows.Scan(&e.RunID, &e.Date, &e.Symbol, &action, &e.Quantity, &e.Price); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		e.Action = domain.Action(action)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return result, nil
}
