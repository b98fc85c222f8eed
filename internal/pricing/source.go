package pricing

import (
	"context"
	"errors"
	"time"

	"crypto-backtest-lab/internal/domain"
)

// ErrNoPriceData indicates no usable price exists for the requested
// symbol and date.
var ErrNoPriceData = errors.New("no price data available")

// Source provides daily prices and candle history for backtests.
type Source interface {
	// Price returns the daily close for a symbol on the given date.
	// Returns ErrNoPriceData when no bar exists for that date.
	Price(ctx context.Context, symbol string, date time.Time) (float64, error)

	// History retrieves candles within [start, end] (inclusive),
	// ordered by timestamp ASC.
	History(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]*domain.Candle, error)
}
