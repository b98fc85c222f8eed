// Package valuation provides pure functions over ledger snapshots and a
// day's prices: total portfolio value and exposure breakdowns.
package valuation

import (
	"fmt"

	"crypto-backtest-lab/internal/domain"
)

// Exposures is the notional market value of held units for one day.
type Exposures struct {
	Long           float64
	Short          float64
	Gross          float64  // long + short
	Net            float64  // long - short
	LongShortRatio *float64 // long / short, nil when short is zero
}

// PortfolioValue computes cash plus the net market value of every
// position, marked at the day's prices. A missing price for a held symbol
// is a contract violation the caller must prevent upstream (the engine
// skips days with incomplete prices); it is reported as an error rather
// than silently marking the position at zero.
func PortfolioValue(snapshot domain.PortfolioSnapshot, prices map[string]float64) (float64, error) {
	total := snapshot.Cash
	for symbol, pos := range snapshot.Positions {
		net := pos.LongUnits - pos.ShortUnits
		if net == 0 && pos.LongUnits == 0 && pos.ShortUnits == 0 {
			continue
		}
		price, ok := prices[symbol]
		if !ok {
			return 0, fmt.Errorf("no price for held symbol %s", symbol)
		}
		total += float64(net) * price
	}
	return total, nil
}

// ComputeExposures computes long/short/gross/net exposure across all
// positions. Symbols without a price contribute nothing; the engine
// guarantees complete prices on any day it values.
func ComputeExposures(snapshot domain.PortfolioSnapshot, prices map[string]float64) Exposures {
	var long, short float64
	for symbol, pos := range snapshot.Positions {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		long += float64(pos.LongUnits) * price
		short += float64(pos.ShortUnits) * price
	}

	exp := Exposures{
		Long:  long,
		Short: short,
		Gross: long + short,
		Net:   long - short,
	}
	if short != 0 {
		ratio := long / short
		exp.LongShortRatio = &ratio
	}
	return exp
}
