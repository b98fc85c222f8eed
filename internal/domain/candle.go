package domain

// Timeframe identifiers for candle series.
const (
	TimeframeDay = "1d"
)

// Candle is a single OHLCV bar for a symbol.
// Corresponds to the candles table in ClickHouse.
type Candle struct {
	Symbol      string
	Timeframe   string // e.g. "1d"
	TimestampMs int64  // bar open time, Unix milliseconds
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
}
