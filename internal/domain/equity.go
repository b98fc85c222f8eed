package domain

import "time"

// EquityPoint is one entry of the equity curve: total portfolio value and
// exposures for a single simulated business day. The curve is append-only,
// seeded at the initial capital before any trade.
type EquityPoint struct {
	Date           time.Time
	PortfolioValue float64
	LongExposure   float64
	ShortExposure  float64
	GrossExposure  float64  // long + short
	NetExposure    float64  // long - short
	LongShortRatio *float64 // long / short, nil when short exposure is zero
}

// PerformanceMetrics holds risk/return statistics over the equity curve.
// All fields are nil until the curve has enough points (minimum 4) to be
// statistically meaningful; nil means "not yet computable", 0 means
// "computed and is zero".
type PerformanceMetrics struct {
	SharpeRatio     *float64
	SortinoRatio    *float64
	MaxDrawdown     *float64 // largest peak-to-trough decline, negative percent
	MaxDrawdownDate *time.Time
}
