package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

// EquityPointStore is an in-memory implementation of storage.EquityPointStore.
type EquityPointStore struct {
	mu   sync.RWMutex
	data map[string]equityEntry // keyed by (run_id, date)
}

type equityEntry struct {
	runID string
	point domain.EquityPoint
}

// NewEquityPointStore creates a new in-memory equity point store.
func NewEquityPointStore() *EquityPointStore {
	return &EquityPointStore{
		data: make(map[string]equityEntry),
	}
}

// Compile-time interface check.
var _ storage.EquityPointStore = (*EquityPointStore)(nil)

// equityKey generates a unique key for an equity point.
func equityKey(runID string, p domain.EquityPoint) string {
	return fmt.Sprintf("%s|%s", runID, p.Date.Format("2006-01-02"))
}

// InsertBulk adds multiple points for a run. Fails entire batch on duplicate.
func (s *EquityPointStore) InsertBulk(_ context.Context, runID string, points []domain.EquityPoint) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		key := equityKey(runID, p)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := p
		if p.LongShortRatio != nil {
			r := *p.LongShortRatio
			pointCopy.LongShortRatio = &r
		}
		s.data[equityKey(runID, p)] = equityEntry{runID: runID, point: pointCopy}
	}

	return nil
}

// GetByRunID retrieves the full equity curve for a run, ordered by date ASC.
func (s *EquityPointStore) GetByRunID(_ context.Context, runID string) ([]domain.EquityPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.EquityPoint
	for _, e := range s.data {
		if e.runID == runID {
			pointCopy := e.point
			if e.point.LongShortRatio != nil {
				r := *e.point.LongShortRatio
				pointCopy.LongShortRatio = &r
			}
			result = append(result, pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}
