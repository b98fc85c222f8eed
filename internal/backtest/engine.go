// Package backtest drives the day-by-day simulation: it walks the
// business-day calendar, asks the decision source for per-symbol actions,
// executes them against the ledger, and records the equity curve.
package backtest

import (
	"context"
	"fmt"
	"log"
	"time"

	"crypto-backtest-lab/internal/benchmark"
	"crypto-backtest-lab/internal/calendar"
	"crypto-backtest-lab/internal/decision"
	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/executor"
	"crypto-backtest-lab/internal/metrics"
	"crypto-backtest-lab/internal/observability"
	"crypto-backtest-lab/internal/portfolio"
	"crypto-backtest-lab/internal/pricing"
	"crypto-backtest-lab/internal/valuation"
)

// Config describes one backtest run.
type Config struct {
	RunID             string
	Symbols           []string
	Start             time.Time
	End               time.Time
	InitialCapital    float64
	MarginRequirement float64

	// LookbackDays is passed through to the decision source.
	LookbackDays int

	// BenchmarkSymbol is the buy-and-hold reference. Empty disables
	// the benchmark column.
	BenchmarkSymbol string
}

// Results holds everything a run produced. On cancellation it carries
// whatever was recorded up to the last completed day.
type Results struct {
	Curve      []domain.EquityPoint
	Executions []*domain.Execution
	Rows       []domain.DayRow
	Summaries  []domain.DaySummary

	FinalValue    float64
	Metrics       *domain.PerformanceMetrics
	DaysProcessed int
	DaysSkipped   int
	Cancelled     bool
}

// Engine runs a single backtest. It exclusively owns its ledger; callers
// observe state only through snapshots and results.
type Engine struct {
	config    Config
	prices    pricing.Source
	decisions decision.Source
	ledger    *portfolio.Ledger
	logger    *log.Logger

	curve []domain.EquityPoint
}

// NewEngine creates an Engine. prices and decisions are required; a nil
// logger falls back to the default logger.
func NewEngine(config Config, prices pricing.Source, decisions decision.Source, logger *log.Logger) (*Engine, error) {
	if prices == nil {
		return nil, fmt.Errorf("price source required")
	}
	if decisions == nil {
		return nil, fmt.Errorf("decision source required")
	}
	if len(config.Symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol required")
	}
	if config.InitialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive")
	}
	if config.End.Before(config.Start) {
		return nil, fmt.Errorf("end date before start date")
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		config:    config,
		prices:    prices,
		decisions: decisions,
		ledger:    portfolio.NewLedger(config.Symbols, config.InitialCapital, config.MarginRequirement),
		logger:    logger,
	}, nil
}

// Run walks the business days in [Start, End]. Decision failures hold,
// days with incomplete prices are skipped whole, and cancellation stops
// cleanly between days with partial results. Run never fails for
// strategy or data conditions.
func (e *Engine) Run(ctx context.Context) *Results {
	started := time.Now()

	// Curve is seeded at the initial capital before any trading day.
	e.curve = append(e.curve, domain.EquityPoint{
		Date:           e.config.Start.AddDate(0, 0, -1),
		PortfolioValue: e.config.InitialCapital,
	})

	results := &Results{
		FinalValue: e.config.InitialCapital,
	}

	days := calendar.BusinessDays(e.config.Start, e.config.End)
	for _, day := range days {
		if ctx.Err() != nil {
			e.logger.Printf("backtest cancelled before %s, returning partial results", day.Format("2006-01-02"))
			results.Cancelled = true
			break
		}

		e.runDay(ctx, day, results)
	}

	results.Curve = e.PortfolioValues()
	results.Metrics = metrics.Compute(e.curve)

	status := "completed"
	if results.Cancelled {
		status = "cancelled"
	}
	observability.RecordRun(status, time.Since(started).Seconds())

	return results
}

// runDay simulates one trading day against the ledger.
func (e *Engine) runDay(ctx context.Context, day time.Time, results *Results) {
	prices, ok := e.fetchPrices(ctx, day)
	if !ok {
		results.DaysSkipped++
		observability.RecordDaySkipped("missing_price")
		return
	}

	decisions := e.decide(ctx, day, prices)

	var rows []domain.DayRow
	for _, symbol := range e.config.Symbols {
		d, found := decisions[symbol]
		if !found {
			d = domain.HoldDecision()
		}
		price := prices[symbol]

		executed := executor.Execute(symbol, d.Action, d.Quantity, price, e.ledger)
		if executed > 0 {
			observability.RecordTrade(string(d.Action))
			results.Executions = append(results.Executions, &domain.Execution{
				RunID:    e.config.RunID,
				Date:     day,
				Symbol:   symbol,
				Action:   d.Action,
				Quantity: executed,
				Price:    price,
			})
		}

		pos := e.ledger.Positions()[symbol]
		action := d.Action
		if executed == 0 {
			action = domain.ActionHold
		}
		rows = append(rows, domain.DayRow{
			Date:          day.Format("2006-01-02"),
			Symbol:        symbol,
			Action:        action,
			Quantity:      executed,
			Price:         price,
			LongUnits:     pos.LongUnits,
			ShortUnits:    pos.ShortUnits,
			PositionValue: float64(pos.LongUnits-pos.ShortUnits) * price,
		})
	}

	snapshot := e.ledger.Snapshot()
	value, err := valuation.PortfolioValue(snapshot, prices)
	if err != nil {
		// Prices were checked complete above; treat as a skipped day.
		e.logger.Printf("valuation failed on %s: %v", day.Format("2006-01-02"), err)
		results.DaysSkipped++
		observability.RecordDaySkipped("valuation")
		return
	}

	exposures := valuation.ComputeExposures(snapshot, prices)
	e.curve = append(e.curve, domain.EquityPoint{
		Date:           day,
		PortfolioValue: value,
		LongExposure:   exposures.Long,
		ShortExposure:  exposures.Short,
		GrossExposure:  exposures.Gross,
		NetExposure:    exposures.Net,
		LongShortRatio: exposures.LongShortRatio,
	})

	perf := metrics.Compute(e.curve)
	summary := domain.DaySummary{
		Date:               day.Format("2006-01-02"),
		TotalValue:         value,
		ReturnPct:          (value/e.config.InitialCapital - 1) * 100,
		CashBalance:        snapshot.Cash,
		TotalPositionValue: value - snapshot.Cash,
		SharpeRatio:        perf.SharpeRatio,
		SortinoRatio:       perf.SortinoRatio,
		MaxDrawdown:        perf.MaxDrawdown,
	}
	if e.config.BenchmarkSymbol != "" {
		summary.BenchmarkReturnPct = benchmark.Return(ctx, e.prices, e.config.BenchmarkSymbol, e.config.Start, day)
		if summary.BenchmarkReturnPct == nil {
			observability.RecordBenchmarkFailure()
		}
	}

	results.Rows = append(results.Rows, rows...)
	results.Summaries = append(results.Summaries, summary)
	results.FinalValue = value
	results.DaysProcessed++
	observability.RecordDayProcessed()
}

// fetchPrices collects the day's close for every symbol. Any missing or
// non-positive price voids the whole day.
func (e *Engine) fetchPrices(ctx context.Context, day time.Time) (map[string]float64, bool) {
	prices := make(map[string]float64, len(e.config.Symbols))
	for _, symbol := range e.config.Symbols {
		price, err := e.prices.Price(ctx, symbol, day)
		if err != nil || price <= 0 {
			e.logger.Printf("no usable price for %s on %s, skipping day", symbol, day.Format("2006-01-02"))
			return nil, false
		}
		prices[symbol] = price
	}
	return prices, true
}

// decide queries the decision source once for the day, downgrading any
// failure to hold-all.
func (e *Engine) decide(ctx context.Context, day time.Time, prices map[string]float64) map[string]domain.Decision {
	decisions, err := e.decisions.Decide(ctx, decision.Request{
		Date:         day,
		Symbols:      e.config.Symbols,
		Prices:       prices,
		Portfolio:    e.ledger.Snapshot(),
		LookbackDays: e.config.LookbackDays,
	})
	if err != nil {
		e.logger.Printf("decision source failed on %s, holding: %v", day.Format("2006-01-02"), err)
		observability.RecordDecisionError("decide")
		return decision.HoldAll(e.config.Symbols)
	}
	return decisions
}

// PortfolioValues returns a copy of the equity curve recorded so far,
// including the seed point.
func (e *Engine) PortfolioValues() []domain.EquityPoint {
	curve := make([]domain.EquityPoint, len(e.curve))
	copy(curve, e.curve)
	return curve
}

// Snapshot exposes the current portfolio state for inspection.
func (e *Engine) Snapshot() domain.PortfolioSnapshot {
	return e.ledger.Snapshot()
}

// RealizedGains exposes per-symbol realized gains for inspection.
func (e *Engine) RealizedGains() map[string]domain.RealizedGains {
	return e.ledger.RealizedGains()
}
