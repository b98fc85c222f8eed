package ingest

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/pricing"
	"crypto-backtest-lab/internal/storage/memory"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestBackfiller_Run(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(2), 100)
	source.Set("BTCUSDT", day(3), 110)
	source.Set("ETHUSDT", day(2), 50)

	store := memory.NewCandleStore()
	backfiller, err := NewBackfiller(source, store, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := backfiller.Run(context.Background(), []string{"BTCUSDT", "ETHUSDT"}, day(1), day(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CandlesStored != 3 {
		t.Errorf("expected 3 candles stored, got %d", result.CandlesStored)
	}
	if len(result.SymbolErrors) != 0 {
		t.Errorf("unexpected symbol errors: %v", result.SymbolErrors)
	}

	stored, err := store.GetBySymbol(context.Background(), "BTCUSDT", domain.TimeframeDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("expected 2 stored BTCUSDT candles, got %d", len(stored))
	}
}

func TestBackfiller_DuplicateIsNotFailure(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(2), 100)

	store := memory.NewCandleStore()
	backfiller, err := NewBackfiller(source, store, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := backfiller.Run(context.Background(), []string{"BTCUSDT"}, day(1), day(5)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	result, err := backfiller.Run(context.Background(), []string{"BTCUSDT"}, day(1), day(5))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Duplicates != 1 {
		t.Errorf("expected 1 duplicate symbol, got %d", result.Duplicates)
	}
	if result.CandlesStored != 0 {
		t.Errorf("expected no new candles, got %d", result.CandlesStored)
	}
}

func TestBackfiller_AllSymbolsFailing(t *testing.T) {
	source := pricing.NewStatic() // no data at all
	store := memory.NewCandleStore()

	backfiller, err := NewBackfiller(source, store, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := backfiller.Run(context.Background(), []string{"BTCUSDT", "ETHUSDT"}, day(1), day(5))
	if err == nil {
		t.Fatal("expected error when every symbol fails")
	}
	if len(result.SymbolErrors) != 2 {
		t.Errorf("expected 2 symbol errors, got %d", len(result.SymbolErrors))
	}
}

func TestBackfiller_PartialFailure(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(2), 100)

	store := memory.NewCandleStore()
	backfiller, err := NewBackfiller(source, store, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := backfiller.Run(context.Background(), []string{"BTCUSDT", "NODATA"}, day(1), day(5))
	if err != nil {
		t.Fatalf("partial failure must not fail the run: %v", err)
	}
	if result.CandlesStored != 1 {
		t.Errorf("expected 1 candle stored, got %d", result.CandlesStored)
	}
	if _, failed := result.SymbolErrors["NODATA"]; !failed {
		t.Error("expected NODATA to be reported failed")
	}
}

func TestBackfiller_Cancellation(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(2), 100)

	store := memory.NewCandleStore()
	backfiller, err := NewBackfiller(source, store, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := backfiller.Run(ctx, []string{"BTCUSDT"}, day(1), day(5)); err == nil {
		t.Fatal("expected context error")
	}
}
