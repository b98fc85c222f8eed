package memory

import (
	"context"
	"errors"
	"testing"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

func TestCandleStore_InsertBulkAndGet(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 2000, Close: 101},
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 1000, Close: 100},
		{Symbol: "ETHUSDT", Timeframe: "1d", TimestampMs: 1000, Close: 50},
	}

	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetBySymbol(ctx, "BTCUSDT", "1d")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(result))
	}
	// Ordered by timestamp ASC
	if result[0].TimestampMs != 1000 || result[1].TimestampMs != 2000 {
		t.Error("Candles not ordered by timestamp ASC")
	}
}

func TestCandleStore_DuplicateKey(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 1000, Close: 100},
	}

	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, candles)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCandleStore_IntraBatchDuplicate(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 1000, Close: 100},
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 1000, Close: 101},
	}

	err := store.InsertBulk(ctx, candles)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	// Verify nothing was inserted
	result, _ := store.GetBySymbol(ctx, "BTCUSDT", "1d")
	if len(result) != 0 {
		t.Errorf("Expected empty store after failed batch, got %d candles", len(result))
	}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 1000, Close: 100},
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 2000, Close: 101},
		{Symbol: "BTCUSDT", Timeframe: "1d", TimestampMs: 3000, Close: 102},
	}
	if err := store.InsertBulk(ctx, candles); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Inclusive bounds
	result, err := store.GetByTimeRange(ctx, "BTCUSDT", "1d", 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 candles in range, got %d", len(result))
	}
}

func TestCandleStore_InvalidInput(t *testing.T) {
	store := NewCandleStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Candle{{Symbol: "", Timeframe: "1d"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty symbol, got %v", err)
	}
}
