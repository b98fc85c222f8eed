package clickhouse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

func TestCandleStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	// Test empty insert
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	// Test single insert
	candles := []*domain.Candle{
		{
			Symbol:      "BTCUSDT",
			Timeframe:   domain.TimeframeDay,
			TimestampMs: 1704067200000,
			Open:        100,
			High:        115,
			Low:         95,
			Close:       110,
			Volume:      5000,
		},
	}

	err = store.InsertBulk(ctx, candles)
	require.NoError(t, err)

	// Verify insert
	got, err := store.GetBySymbol(ctx, "BTCUSDT", domain.TimeframeDay)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
	assert.Equal(t, domain.TimeframeDay, got[0].Timeframe)
	assert.Equal(t, int64(1704067200000), got[0].TimestampMs)
	assert.Equal(t, 100.0, got[0].Open)
	assert.Equal(t, 110.0, got[0].Close)
	assert.Equal(t, 5000.0, got[0].Volume)
}

func TestCandleStore_InsertBulk_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTCUSDT", Timeframe: domain.TimeframeDay, TimestampMs: 1000, Open: 1, High: 1, Low: 1, Close: 1, Volume: 10},
	}

	err := store.InsertBulk(ctx, candles)
	require.NoError(t, err)

	// Try to insert duplicate
	err = store.InsertBulk(ctx, candles)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCandleStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	// Same key twice in one batch
	candles := []*domain.Candle{
		{Symbol: "BTCUSDT", Timeframe: domain.TimeframeDay, TimestampMs: 1000, Close: 100},
		{Symbol: "BTCUSDT", Timeframe: domain.TimeframeDay, TimestampMs: 1000, Close: 101},
	}

	err := store.InsertBulk(ctx, candles)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Nothing persisted
	got, err := store.GetBySymbol(ctx, "BTCUSDT", domain.TimeframeDay)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCandleStore_InsertBulk_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)

	err := store.InsertBulk(context.Background(), []*domain.Candle{
		{Symbol: "", Timeframe: domain.TimeframeDay, TimestampMs: 1000},
	})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestCandleStore_GetBySymbol_Ordering(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	candles := []*domain.Candle{
		{Symbol: "BTCUSDT", Timeframe: domain.TimeframeDay, TimestampMs: 3000, Close: 120},
		{Symbol: "BTCUSDT", Timeframe: domain.TimeframeDay, TimestampMs: 1000, Close: 100},
		{Symbol: "BTCUSDT", Timeframe: domain.TimeframeDay, TimestampMs: 2000, Close: 110},
		{Symbol: "ETHUSDT", Timeframe: domain.TimeframeDay, TimestampMs: 1000, Close: 50},
	}

	require.NoError(t, store.InsertBulk(ctx, candles))

	got, err := store.GetBySymbol(ctx, "BTCUSDT", domain.TimeframeDay)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].TimestampMs, got[i].TimestampMs)
	}
}

func TestCandleStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	var candles []*domain.Candle
	for i := 1; i <= 5; i++ {
		candles = append(candles, &domain.Candle{
			Symbol:      "BTCUSDT",
			Timeframe:   domain.TimeframeDay,
			TimestampMs: int64(i) * 1000,
			Close:       float64(100 + i),
		})
	}
	require.NoError(t, store.InsertBulk(ctx, candles))

	// Inclusive bounds
	got, err := store.GetByTimeRange(ctx, "BTCUSDT", domain.TimeframeDay, 2000, 4000)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2000), got[0].TimestampMs)
	assert.Equal(t, int64(4000), got[2].TimestampMs)
}

func TestCandleStore_InsertBulk_Large(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandleStore(conn)
	ctx := context.Background()

	var candles []*domain.Candle
	for i := 0; i < 500; i++ {
		candles = append(candles, &domain.Candle{
			Symbol:      fmt.Sprintf("SYM%dUSDT", i%5),
			Timeframe:   domain.TimeframeDay,
			TimestampMs: int64(i) * 86400000,
			Close:       float64(i),
			Volume:      float64(i * 10),
		})
	}

	require.NoError(t, store.InsertBulk(ctx, candles))

	got, err := store.GetBySymbol(ctx, "SYM0USDT", domain.TimeframeDay)
	require.NoError(t, err)
	assert.Len(t, got, 100)
}
