package domain

// DayRow is the per-symbol display row emitted for each simulated day.
// Consumed by the reporting layer; the engine never reads it back.
type DayRow struct {
	Date          string // YYYY-MM-DD
	Symbol        string
	Action        Action
	Quantity      int64 // executed quantity, may be less than requested
	Price         float64
	LongUnits     int64
	ShortUnits    int64
	PositionValue float64 // (long - short) * price
}

// DaySummary is the one-per-day summary row accompanying the symbol rows.
type DaySummary struct {
	Date               string
	TotalValue         float64
	ReturnPct          float64 // since the start of the run
	CashBalance        float64
	TotalPositionValue float64
	SharpeRatio        *float64
	SortinoRatio       *float64
	MaxDrawdown        *float64
	BenchmarkReturnPct *float64
}
