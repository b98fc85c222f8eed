// Package ingest backfills daily candles from the exchange into candle
// storage, so store-backed backtests run reproducibly offline.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/observability"
	"crypto-backtest-lab/internal/pricing"
	"crypto-backtest-lab/internal/storage"
)

// Backfiller copies candle history from a pricing source into a store.
type Backfiller struct {
	source pricing.Source
	store  storage.CandleStore
	logger *log.Logger
}

// NewBackfiller creates a Backfiller. A nil logger falls back to the
// default logger.
func NewBackfiller(source pricing.Source, store storage.CandleStore, logger *log.Logger) (*Backfiller, error) {
	if source == nil {
		return nil, fmt.Errorf("price source required")
	}
	if store == nil {
		return nil, fmt.Errorf("candle store required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Backfiller{source: source, store: store, logger: logger}, nil
}

// Result summarizes one backfill.
type Result struct {
	CandlesStored int
	Duplicates    int
	SymbolErrors  map[string]error
}

// Run backfills daily candles for each symbol over [start, end]. Symbols
// fail independently; already-stored symbols count as duplicates rather
// than failures. Returns an error only when every symbol failed.
func (b *Backfiller) Run(ctx context.Context, symbols []string, start, end time.Time) (*Result, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol required")
	}

	result := &Result{SymbolErrors: make(map[string]error)}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		candles, err := b.source.History(ctx, symbol, domain.TimeframeDay, start, end)
		if err != nil {
			b.logger.Printf("fetch history for %s: %v", symbol, err)
			observability.RecordIngestionError("fetch")
			result.SymbolErrors[symbol] = err
			continue
		}
		if len(candles) == 0 {
			b.logger.Printf("no candles for %s in range", symbol)
			result.SymbolErrors[symbol] = pricing.ErrNoPriceData
			continue
		}

		err = b.store.InsertBulk(ctx, candles)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			result.Duplicates++
			b.logger.Printf("candles for %s already stored, skipping", symbol)
		case err != nil:
			b.logger.Printf("store candles for %s: %v", symbol, err)
			observability.RecordIngestionError("store")
			result.SymbolErrors[symbol] = err
		default:
			result.CandlesStored += len(candles)
			observability.RecordCandlesIngested(len(candles))
		}
	}

	if len(result.SymbolErrors) == len(symbols) {
		return result, fmt.Errorf("backfill failed for all %d symbols", len(symbols))
	}
	return result, nil
}
