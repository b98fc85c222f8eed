// Package executor translates symbolic trading decisions into ledger
// mutations.
package executor

import (
	"math"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/portfolio"
)

// Execute applies a single decision for symbol against the ledger at the
// quoted price and returns the quantity actually executed.
//
// hold and non-positive quantities always yield 0 with no mutation. An
// unrecognized action is treated as hold: malformed decisions from the
// external decision source must never halt a multi-year simulation.
func Execute(symbol string, action domain.Action, quantity float64, price float64, ledger *portfolio.Ledger) int64 {
	if quantity <= 0 || math.IsNaN(quantity) {
		return 0
	}

	units := int64(math.Floor(quantity))

	switch domain.ParseAction(string(action)) {
	case domain.ActionBuy:
		return ledger.ApplyLongBuy(symbol, units, price)
	case domain.ActionSell:
		return ledger.ApplyLongSell(symbol, units, price)
	default:
		return 0
	}
}
