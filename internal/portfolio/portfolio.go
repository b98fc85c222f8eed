// Package portfolio implements the mutable ledger at the heart of a
// backtest: cash, per-symbol positions, and realized gains. The ledger is
// pure data plus mutation operations; it performs no I/O and is owned
// exclusively by one backtest engine for the engine's lifetime.
package portfolio

import (
	"math"

	"crypto-backtest-lab/internal/domain"
)

// Ledger is the single mutable aggregate of a backtest run.
//
// Every mutation clamps the requested quantity to what is feasible and
// returns the quantity actually executed. A backtest must never abort on
// an over-sized decision: it executes the maximum feasible size and
// reports the actual fill, the way a real exchange would partially fill
// an order rather than crash the simulation.
type Ledger struct {
	cash              float64
	marginUsed        float64
	marginRequirement float64
	positions         map[string]*domain.Position
	realizedGains     map[string]*domain.RealizedGains
}

// NewLedger creates a ledger with the given starting cash and margin
// requirement, pre-seeding zero positions for the tracked symbols.
func NewLedger(symbols []string, initialCash, marginRequirement float64) *Ledger {
	l := &Ledger{
		cash:              initialCash,
		marginRequirement: marginRequirement,
		positions:         make(map[string]*domain.Position, len(symbols)),
		realizedGains:     make(map[string]*domain.RealizedGains, len(symbols)),
	}
	for _, s := range symbols {
		l.positions[s] = &domain.Position{}
		l.realizedGains[s] = &domain.RealizedGains{}
	}
	return l
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// ApplyLongBuy buys up to quantity units of symbol at price, capped at
// what the current cash balance affords. Updates the long cost basis as
// the quantity-weighted average of the existing book and the new fill.
// Returns the quantity actually executed, which may be 0.
func (l *Ledger) ApplyLongBuy(symbol string, quantity int64, price float64) int64 {
	if quantity <= 0 || price <= 0 {
		return 0
	}

	affordable := int64(math.Floor(l.cash / price))
	executed := quantity
	if affordable < executed {
		executed = affordable
	}
	if executed <= 0 {
		return 0
	}

	pos := l.position(symbol)
	oldUnits := pos.LongUnits
	newUnits := oldUnits + executed
	pos.LongCostBasis = (pos.LongCostBasis*float64(oldUnits) + price*float64(executed)) / float64(newUnits)
	pos.LongUnits = newUnits
	l.cash -= float64(executed) * price

	return executed
}

// ApplyLongSell sells up to quantity units of symbol at price, capped at
// the units currently held. Books the realized gain against the long cost
// basis and credits the proceeds to cash. When the long book empties, the
// cost basis resets to 0. Returns the quantity actually executed.
func (l *Ledger) ApplyLongSell(symbol string, quantity int64, price float64) int64 {
	if quantity <= 0 {
		return 0
	}

	pos := l.position(symbol)
	executed := quantity
	if pos.LongUnits < executed {
		executed = pos.LongUnits
	}
	if executed <= 0 {
		return 0
	}

	gains := l.realized(symbol)
	gains.Long += (price - pos.LongCostBasis) * float64(executed)

	l.cash += float64(executed) * price
	pos.LongUnits -= executed
	if pos.LongUnits == 0 {
		pos.LongCostBasis = 0
	}

	return executed
}

// Snapshot returns a read-only deep copy of the ledger state. Mutating
// the returned value never affects the live ledger.
func (l *Ledger) Snapshot() domain.PortfolioSnapshot {
	return domain.PortfolioSnapshot{
		Cash:              l.cash,
		MarginUsed:        l.marginUsed,
		MarginRequirement: l.marginRequirement,
		Positions:         l.Positions(),
		RealizedGains:     l.RealizedGains(),
	}
}

// Positions returns a deep copy of the per-symbol position map.
func (l *Ledger) Positions() map[string]domain.Position {
	out := make(map[string]domain.Position, len(l.positions))
	for s, p := range l.positions {
		out[s] = *p
	}
	return out
}

// RealizedGains returns a deep copy of the per-symbol realized gains map.
func (l *Ledger) RealizedGains() map[string]domain.RealizedGains {
	out := make(map[string]domain.RealizedGains, len(l.realizedGains))
	for s, g := range l.realizedGains {
		out[s] = *g
	}
	return out
}

func (l *Ledger) position(symbol string) *domain.Position {
	p, ok := l.positions[symbol]
	if !ok {
		p = &domain.Position{}
		l.positions[symbol] = p
	}
	return p
}

func (l *Ledger) realized(symbol string) *domain.RealizedGains {
	g, ok := l.realizedGains[symbol]
	if !ok {
		g = &domain.RealizedGains{}
		l.realizedGains[symbol] = g
	}
	return g
}
