package pricing

import (
	"context"
	"sort"
	"time"

	"crypto-backtest-lab/internal/domain"
)

// Static is a fixed in-memory price source, keyed by symbol and date.
// Used in tests and scripted backtests.
type Static struct {
	prices map[string]map[string]float64 // symbol -> yyyy-mm-dd -> close
}

// NewStatic creates an empty Static source.
func NewStatic() *Static {
	return &Static{prices: make(map[string]map[string]float64)}
}

// Compile-time interface check.
var _ Source = (*Static)(nil)

// Set records a close price for a symbol on a date.
func (s *Static) Set(symbol string, date time.Time, close float64) {
	key := dateKey(date)
	if s.prices[symbol] == nil {
		s.prices[symbol] = make(map[string]float64)
	}
	s.prices[symbol][key] = close
}

// Price returns the recorded close for the symbol and date.
func (s *Static) Price(_ context.Context, symbol string, date time.Time) (float64, error) {
	close, ok := s.prices[symbol][dateKey(date)]
	if !ok || close <= 0 {
		return 0, ErrNoPriceData
	}
	return close, nil
}

// History synthesizes daily candles from the recorded closes within
// [start, end], ordered by timestamp ASC.
func (s *Static) History(_ context.Context, symbol, timeframe string, start, end time.Time) ([]*domain.Candle, error) {
	var candles []*domain.Candle
	for key, close := range s.prices[symbol] {
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		candles = append(candles, &domain.Candle{
			Symbol:      symbol,
			Timeframe:   timeframe,
			TimestampMs: date.UnixMilli(),
			Open:        close,
			High:        close,
			Low:         close,
			Close:       close,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].TimestampMs < candles[j].TimestampMs
	})
	return candles, nil
}

func dateKey(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}
