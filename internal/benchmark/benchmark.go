package benchmark

import (
	"context"
	"time"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/pricing"
)

// Return computes the buy-and-hold percent return for a symbol over
// [start, end]: (lastClose/firstClose - 1) * 100 across the daily bars
// in range. Returns nil when fewer than two usable closes exist or the
// history cannot be fetched; a benchmark failure never aborts a backtest.
func Return(ctx context.Context, source pricing.Source, symbol string, start, end time.Time) *float64 {
	candles, err := source.History(ctx, symbol, domain.TimeframeDay, start, end)
	if err != nil {
		return nil
	}

	var first, last float64
	count := 0
	for _, c := range candles {
		if c.Close <= 0 {
			continue
		}
		if count == 0 {
			first = c.Close
		}
		last = c.Close
		count++
	}
	if count < 2 || first == 0 {
		return nil
	}

	pct := (last/first - 1) * 100
	return &pct
}
