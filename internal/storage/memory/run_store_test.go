package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/storage"
)

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	sharpe := 1.2
	run := &domain.BacktestRun{
		RunID:          "run-1",
		Symbols:        []string{"BTCUSDT", "ETHUSDT"},
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital: 100000,
		StrategyID:     "momentum",
		CreatedAt:      1000,
		SharpeRatio:    &sharpe,
	}

	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.StrategyID != "momentum" || len(got.Symbols) != 2 {
		t.Errorf("Unexpected run: %+v", got)
	}
	if got.SharpeRatio == nil || *got.SharpeRatio != 1.2 {
		t.Errorf("Expected sharpe 1.2, got %v", got.SharpeRatio)
	}

	// Returned run is a copy
	got.Symbols[0] = "mutated"
	again, _ := store.GetByID(ctx, "run-1")
	if again.Symbols[0] != "BTCUSDT" {
		t.Error("Store state mutated through returned run")
	}
}

func TestRunStore_DuplicateKey(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := &domain.BacktestRun{RunID: "run-1"}
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, run)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestRunStore_NotFound(t *testing.T) {
	store := NewRunStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_ListOrderedByCreatedAt(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	_ = store.Insert(ctx, &domain.BacktestRun{RunID: "run-b", CreatedAt: 2000})
	_ = store.Insert(ctx, &domain.BacktestRun{RunID: "run-a", CreatedAt: 1000})

	runs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-a" || runs[1].RunID != "run-b" {
		t.Error("Runs not ordered by created_at ASC")
	}
}
