package decision

import (
	"context"
	"time"

	"crypto-backtest-lab/internal/domain"
)

// Request carries everything a strategy may consult for one trading day.
// Prices are the day's closes for every requested symbol; Portfolio is a
// snapshot and mutating it has no effect on the ledger.
type Request struct {
	Date         time.Time
	Symbols      []string
	Prices       map[string]float64
	Portfolio    domain.PortfolioSnapshot
	LookbackDays int
}

// Source produces per-symbol decisions for a single day.
// Implementations must not retain or mutate the request.
type Source interface {
	// Decide returns a decision per symbol. Missing symbols are treated
	// as hold by the caller. Any error downgrades the whole day to hold.
	Decide(ctx context.Context, req Request) (map[string]domain.Decision, error)
}

// HoldAll returns a hold decision for every symbol in the request.
func HoldAll(symbols []string) map[string]domain.Decision {
	decisions := make(map[string]domain.Decision, len(symbols))
	for _, symbol := range symbols {
		decisions[symbol] = domain.HoldDecision()
	}
	return decisions
}
