package pricing

import (
	"context"
	"fmt"
	"time"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

// StoreSource serves prices from a storage.CandleStore.
type StoreSource struct {
	store storage.CandleStore
}

// NewStoreSource creates a StoreSource backed by the given candle store.
func NewStoreSource(store storage.CandleStore) *StoreSource {
	return &StoreSource{store: store}
}

// Compile-time interface check.
var _ Source = (*StoreSource)(nil)

// Price returns the close of the latest bar within the date's UTC day.
// Returns ErrNoPriceData when the day has no bar.
func (s *StoreSource) Price(ctx context.Context, symbol string, date time.Time) (float64, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	candles, err := s.store.GetByTimeRange(ctx, symbol, domain.TimeframeDay,
		dayStart.UnixMilli(), dayEnd.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("get candles for %s: %w", symbol, err)
	}

	// Latest bar at or before end of day
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Close > 0 {
			return candles[i].Close, nil
		}
	}

	return 0, ErrNoPriceData
}

// History retrieves candles within [start, end] (inclusive), ordered by
// timestamp ASC.
func (s *StoreSource) History(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]*domain.Candle, error) {
	candles, err := s.store.GetByTimeRange(ctx, symbol, timeframe,
		start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("get candle history for %s: %w", symbol, err)
	}
	return candles, nil
}
