package domain

// Position holds per-symbol position state, split into a long book and a
// short book. Invariant: when LongUnits is 0, LongCostBasis is 0; the same
// holds for the short side.
type Position struct {
	LongUnits           int64   // units held long, never negative
	ShortUnits          int64   // units held short, never negative
	LongCostBasis       float64 // weighted-average entry price of the long book
	ShortCostBasis      float64 // weighted-average entry price of the short book
	ShortMarginReserved float64 // cash reserved backing the short book
}

// RealizedGains accumulates realized profit/loss booked on closing trades
// for a single symbol, independent of unrealized marks.
type RealizedGains struct {
	Long  float64
	Short float64
}

// PortfolioSnapshot is a read-only deep copy of ledger state. Callers may
// inspect and discard it freely; mutating it never affects the live ledger.
type PortfolioSnapshot struct {
	Cash              float64
	MarginUsed        float64
	MarginRequirement float64 // fraction of short notional reserved as margin
	Positions         map[string]Position
	RealizedGains     map[string]RealizedGains
}
