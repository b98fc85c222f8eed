package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

// ExecutionStore is an in-memory implementation of storage.ExecutionStore.
type ExecutionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Execution // keyed by (run_id, date, symbol)
}

// NewExecutionStore creates a new in-memory execution store.
func NewExecutionStore() *ExecutionStore {
	return &ExecutionStore{
		data: make(map[string]*domain.Execution),
	}
}

// Compile-time interface check.
var _ storage.ExecutionStore = (*ExecutionStore)(nil)

// executionKey generates a unique key for an execution.
func executionKey(e *domain.Execution) string {
	return fmt.Sprintf("%s|%s|%s", e.RunID, e.Date.Format("2006-01-02"), e.Symbol)
}

// InsertBulk adds multiple executions. Fails entire batch on duplicate.
func (s *ExecutionStore) InsertBulk(_ context.Context, executions []*domain.Execution) error {
	if len(executions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(executions))
	for _, e := range executions {
		if e == nil || e.RunID == "" || e.Symbol == "" {
			return storage.ErrInvalidInput
		}
		key := executionKey(e)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, e := range executions {
		execCopy := *e
		s.data[executionKey(e)] = &execCopy
	}

	return nil
}

// GetByRunID retrieves all executions for a run, ordered by date ASC, symbol ASC.
func (s *ExecutionStore) GetByRunID(_ context.Context, runID string) ([]*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Execution
	for _, e := range s.data {
		if e.RunID == runID {
			execCopy := *e
			result = append(result, &execCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Symbol < result[j].Symbol
	})

	return result, nil
}
