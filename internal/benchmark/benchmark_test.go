package benchmark

import (
	"context"
	"math"
	"testing"
	"time"

	"crypto-backtest-lab/internal/pricing"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestReturn(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(2), 100)
	source.Set("BTCUSDT", day(3), 90)
	source.Set("BTCUSDT", day(4), 125)

	got := Return(context.Background(), source, "BTCUSDT", day(1), day(5))
	if got == nil {
		t.Fatal("expected non-nil return")
	}
	if math.Abs(*got-25) > 1e-9 {
		t.Errorf("expected 25%%, got %v", *got)
	}
}

func TestReturn_NegativePeriod(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(2), 200)
	source.Set("BTCUSDT", day(3), 150)

	got := Return(context.Background(), source, "BTCUSDT", day(1), day(5))
	if got == nil {
		t.Fatal("expected non-nil return")
	}
	if math.Abs(*got-(-25)) > 1e-9 {
		t.Errorf("expected -25%%, got %v", *got)
	}
}

func TestReturn_SinglePoint(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(2), 100)

	if got := Return(context.Background(), source, "BTCUSDT", day(1), day(5)); got != nil {
		t.Errorf("expected nil for single point, got %v", *got)
	}
}

func TestReturn_NoData(t *testing.T) {
	source := pricing.NewStatic()

	if got := Return(context.Background(), source, "BTCUSDT", day(1), day(5)); got != nil {
		t.Errorf("expected nil without data, got %v", *got)
	}
}

func TestReturn_RangeBounds(t *testing.T) {
	source := pricing.NewStatic()
	source.Set("BTCUSDT", day(1), 50) // outside requested range
	source.Set("BTCUSDT", day(2), 100)
	source.Set("BTCUSDT", day(4), 110)
	source.Set("BTCUSDT", day(8), 999) // outside requested range

	got := Return(context.Background(), source, "BTCUSDT", day(2), day(5))
	if got == nil {
		t.Fatal("expected non-nil return")
	}
	if math.Abs(*got-10) > 1e-9 {
		t.Errorf("expected 10%%, got %v", *got)
	}
}
