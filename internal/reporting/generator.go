package reporting

import (
	"context"
	"fmt"
	"time"

	"crypto-backtest-lab/internal/storage"
)

// Generator produces reports from stored runs.
type Generator struct {
	runStore       storage.RunStore
	equityStore    storage.EquityPointStore
	executionStore storage.ExecutionStore
	now            func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	runStore storage.RunStore,
	equityStore storage.EquityPointStore,
	executionStore storage.ExecutionStore,
) *Generator {
	return &Generator{
		runStore:       runStore,
		equityStore:    equityStore,
		executionStore: executionStore,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads a run with its curve and executions.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	curve, err := g.equityStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load equity curve for %s: %w", runID, err)
	}

	executions, err := g.executionStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load executions for %s: %w", runID, err)
	}

	return &Report{
		GeneratedAt: g.now(),
		Run:         run,
		Curve:       curve,
		Executions:  executions,
	}, nil
}
