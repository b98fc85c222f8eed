package decision

import (
	"context"
	"fmt"
	"math"
	"time"

	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/pricing"
)

// Momentum is a moving-average crossover strategy. It buys when the
// short-period SMA of daily closes is above the long-period SMA, sells
// the whole position when it drops below, and holds otherwise.
type Momentum struct {
	source      pricing.Source
	shortPeriod int
	longPeriod  int

	// allocation is the fraction of cash committed per buy signal.
	allocation float64
}

// NewMomentum creates a Momentum strategy. Periods must satisfy
// 0 < short < long. Allocation outside (0, 1] defaults to 0.25.
func NewMomentum(source pricing.Source, short, long int, allocation float64) (*Momentum, error) {
	if short <= 0 || long <= short {
		return nil, fmt.Errorf("invalid sma periods: short=%d long=%d", short, long)
	}
	if allocation <= 0 || allocation > 1 {
		allocation = 0.25
	}
	return &Momentum{
		source:      source,
		shortPeriod: short,
		longPeriod:  long,
		allocation:  allocation,
	}, nil
}

// Compile-time interface check.
var _ Source = (*Momentum)(nil)

// Decide computes crossover signals per symbol. Symbols without enough
// history hold.
func (m *Momentum) Decide(ctx context.Context, req Request) (map[string]domain.Decision, error) {
	decisions := make(map[string]domain.Decision, len(req.Symbols))

	lookback := req.LookbackDays
	if lookback < m.longPeriod {
		lookback = m.longPeriod
	}
	// Calendar days overshoot trading days; fetch a wide window.
	start := req.Date.AddDate(0, 0, -2*lookback)
	end := req.Date.Add(-24 * time.Hour)

	for _, symbol := range req.Symbols {
		candles, err := m.source.History(ctx, symbol, domain.TimeframeDay, start, end)
		if err != nil {
			return nil, fmt.Errorf("history for %s: %w", symbol, err)
		}

		closes := make([]float64, 0, len(candles)+1)
		for _, c := range candles {
			if c.Close > 0 {
				closes = append(closes, c.Close)
			}
		}
		if price := req.Prices[symbol]; price > 0 {
			closes = append(closes, price)
		}

		if len(closes) < m.longPeriod {
			decisions[symbol] = domain.HoldDecision()
			continue
		}

		shortSMA := mean(closes[len(closes)-m.shortPeriod:])
		longSMA := mean(closes[len(closes)-m.longPeriod:])

		switch {
		case shortSMA > longSMA:
			price := req.Prices[symbol]
			if price <= 0 {
				decisions[symbol] = domain.HoldDecision()
				continue
			}
			quantity := math.Floor(req.Portfolio.Cash * m.allocation / price)
			if quantity < 1 {
				decisions[symbol] = domain.HoldDecision()
				continue
			}
			decisions[symbol] = domain.Decision{Action: domain.ActionBuy, Quantity: quantity}
		case shortSMA < longSMA:
			held := req.Portfolio.Positions[symbol].LongUnits
			if held <= 0 {
				decisions[symbol] = domain.HoldDecision()
				continue
			}
			decisions[symbol] = domain.Decision{Action: domain.ActionSell, Quantity: float64(held)}
		default:
			decisions[symbol] = domain.HoldDecision()
		}
	}

	return decisions, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
