package postgres

import (
	"context"
	"fmt"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

// EquityPointStore implements storage.EquityPointStore using PostgreSQL.
type EquityPointStore struct {
	pool *Pool
}

// NewEquityPointStore creates a new EquityPointStore.
func NewEquityPointStore(pool *Pool) *EquityPointStore {
	return &EquityPointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EquityPointStore = (*EquityPointStore)(nil)

// InsertBulk adds multiple points for a run atomically. Fails entire batch
// on duplicate (run_id, date).
func (s *EquityPointStore) InsertBulk(ctx context.Context, runID string, points []domain.EquityPoint) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO equity_points (
			run_id, date, portfolio_value,
			long_exposure, short_exposure, gross_exposure, net_exposure, long_short_ratio
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8
		)
	`

	for _, p := range points {
		_, err := tx.Exec(ctx, query,
			runID, p.Date, p.PortfolioValue,
			p.LongExposure, p.ShortExposure, p.GrossExposure, p.NetExposure, p.LongShortRatio,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert equity point in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves the full equity curve for a run, ordered by date ASC.
func (s *EquityPointStore) GetByRunID(ctx context.Context, runID string) ([]domain.EquityPoint, error) {
	query := `
		SELECT date, portfolio_value,
			long_exposure, short_exposure, gross_exposure, net_exposure, long_short_ratio
		FROM equity_points
		WHERE run_id = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query equity points: %w", err)
	}
	defer rows.Close()

	var result []domain.EquityPoint
	for rows.Next() {
		var p domain.EquityPoint
		if err := rows.Scan(
			&p.Date, &p.PortfolioValue,
			&p.LongExposure, &p.ShortExposure, &p.GrossExposure, &p.NetExposure, &p.LongShortRatio,
		); err != nil {
			return nil, fmt.Errorf("scan equity point: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equity points: %w", err)
	}
	return result, nil
}
