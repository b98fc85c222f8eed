package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crypto-backtest-lab/internal/aster"
	"crypto-backtest-lab/internal/backtest"
	"crypto-backtest-lab/internal/config"
	"crypto-backtest-lab/internal/decision"
	"crypto-backtest-lab/internal/domain"
	"crypto-backtest-lab/internal/observability"
	"crypto-backtest-lab/internal/pricing"
	"crypto-backtest-lab/internal/reporting"
	"crypto-backtest-lab/internal/runid"
	chstore "crypto-backtest-lab/internal/storage/clickhouse"
	"crypto-backtest-lab/internal/storage/migrations"
	pgstore "crypto-backtest-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	symbols := flag.String("symbols", "", "Comma-separated symbols (overrides config)")
	startDate := flag.String("start", "", "Start date YYYY-MM-DD (overrides config)")
	endDate := flag.String("end", "", "End date YYYY-MM-DD (overrides config)")
	capital := flag.Float64("capital", 0, "Initial capital (overrides config)")
	strategy := flag.String("strategy", "", "Strategy: momentum, remote, or script (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL DSN for persisting run results (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for stored candles; empty fetches from the exchange (overrides config)")
	jsonOut := flag.Bool("json", false, "Emit results as JSON instead of tables")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	applyFlagOverrides(cfg, *symbols, *startDate, *endDate, *capital, *strategy, *postgresDSN, *clickhouseDSN)

	start, end, err := cfg.Backtest.Dates()
	if err != nil {
		logger.Fatalf("invalid dates: %v", err)
	}
	if len(cfg.Backtest.Symbols) == 0 {
		logger.Fatal("no symbols configured, use -symbols or the config file")
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First SIGINT cancels between days; a second kills immediately.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping after current day...", sig)
		cancel()
		<-sigCh
		logger.Fatal("Forced shutdown")
	}()

	prices, closeSource, err := buildPriceSource(ctx, cfg)
	if err != nil {
		logger.Fatalf("price source: %v", err)
	}
	defer closeSource()

	decisions, strategyID, closeStrategy, err := buildDecisionSource(ctx, cfg, prices)
	if err != nil {
		logger.Fatalf("decision source: %v", err)
	}
	defer closeStrategy()

	createdAt := time.Now().UnixMilli()
	runID := runid.Compute(cfg.Backtest.Symbols, start, end, cfg.Backtest.InitialCapital, strategyID, createdAt)

	engine, err := backtest.NewEngine(backtest.Config{
		RunID:             runID,
		Symbols:           cfg.Backtest.Symbols,
		Start:             start,
		End:               end,
		InitialCapital:    cfg.Backtest.InitialCapital,
		MarginRequirement: cfg.Backtest.MarginRequirement,
		LookbackDays:      cfg.Backtest.LookbackDays,
		BenchmarkSymbol:   cfg.Backtest.BenchmarkSymbol,
	}, prices, decisions, logger)
	if err != nil {
		logger.Fatalf("engine: %v", err)
	}

	logger.Printf("Run %s: %s from %s to %s, strategy %s",
		runID, strings.Join(cfg.Backtest.Symbols, ","),
		start.Format("2006-01-02"), end.Format("2006-01-02"), strategyID)

	results := engine.Run(ctx)

	if *jsonOut {
		if err := printJSON(os.Stdout, runID, results); err != nil {
			logger.Fatalf("encode results: %v", err)
		}
	} else {
		printResults(results)
		printFinalSummary(results, cfg.Backtest.InitialCapital)
	}

	if cfg.Storage.PostgresDSN != "" {
		if err := persistRun(context.Background(), cfg.Storage.PostgresDSN, runID, cfg, start, end, strategyID, createdAt, results); err != nil {
			logger.Fatalf("persist run: %v", err)
		}
		logger.Printf("Run %s persisted", runID)
	}

	if results.Cancelled {
		os.Exit(130)
	}
}

func applyFlagOverrides(cfg *config.Config, symbols, start, end string, capital float64, strategy, postgresDSN, clickhouseDSN string) {
	if symbols != "" {
		cfg.Backtest.Symbols = strings.Split(symbols, ",")
	}
	if start != "" {
		cfg.Backtest.StartDate = start
	}
	if end != "" {
		cfg.Backtest.EndDate = end
	}
	if capital > 0 {
		cfg.Backtest.InitialCapital = capital
	}
	if strategy != "" {
		cfg.Strategy.Kind = strategy
	}
	if postgresDSN != "" {
		cfg.Storage.PostgresDSN = postgresDSN
	}
	if clickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = clickhouseDSN
	}
}

// buildPriceSource prefers stored candles, falling back to the exchange.
func buildPriceSource(ctx context.Context, cfg *config.Config) (pricing.Source, func(), error) {
	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		store := chstore.NewCandleStore(conn)
		return pricing.NewStoreSource(store), func() { conn.Close() }, nil
	}
	return aster.NewClient(cfg.Exchange.BaseURL), func() {}, nil
}

func buildDecisionSource(ctx context.Context, cfg *config.Config, prices pricing.Source) (decision.Source, string, func(), error) {
	noop := func() {}
	switch cfg.Strategy.Kind {
	case "momentum":
		m, err := decision.NewMomentum(prices, cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod, cfg.Strategy.Allocation)
		if err != nil {
			return nil, "", nil, err
		}
		id := fmt.Sprintf("momentum:%d:%d", cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod)
		return m, id, noop, nil
	case "remote":
		if cfg.Strategy.Endpoint == "" {
			return nil, "", nil, fmt.Errorf("remote strategy requires an endpoint")
		}
		r, err := decision.NewRemote(ctx, cfg.Strategy.Endpoint, nil)
		if err != nil {
			return nil, "", nil, err
		}
		return r, "remote:" + cfg.Strategy.Endpoint, func() { r.Close() }, nil
	case "script", "hold":
		// An empty script holds everything, useful as a buy-and-hold baseline
		// once seeded and as a do-nothing control run.
		return decision.NewScript(), cfg.Strategy.Kind, noop, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown strategy %q", cfg.Strategy.Kind)
	}
}

// printResults replays the recorded day tables to stdout.
func printResults(results *backtest.Results) {
	rowsByDate := make(map[string][]domain.DayRow)
	for _, row := range results.Rows {
		rowsByDate[row.Date] = append(rowsByDate[row.Date], row)
	}
	for _, summary := range results.Summaries {
		fmt.Println(reporting.RenderDayTable(rowsByDate[summary.Date], summary))
	}
}

func printJSON(w io.Writer, runID string, results *backtest.Results) error {
	out := struct {
		RunID         string                     `json:"run_id"`
		FinalValue    float64                    `json:"final_value"`
		DaysProcessed int                        `json:"days_processed"`
		DaysSkipped   int                        `json:"days_skipped"`
		Cancelled     bool                       `json:"cancelled"`
		Metrics       *domain.PerformanceMetrics `json:"metrics,omitempty"`
		Curve         []domain.EquityPoint       `json:"equity_curve"`
		Executions    []*domain.Execution        `json:"executions"`
		Summaries     []domain.DaySummary        `json:"day_summaries"`
	}{
		RunID:         runID,
		FinalValue:    results.FinalValue,
		DaysProcessed: results.DaysProcessed,
		DaysSkipped:   results.DaysSkipped,
		Cancelled:     results.Cancelled,
		Metrics:       results.Metrics,
		Curve:         results.Curve,
		Executions:    results.Executions,
		Summaries:     results.Summaries,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printFinalSummary(results *backtest.Results, initialCapital float64) {
	fmt.Printf("Final value: %.2f (%+.2f%%)\n",
		results.FinalValue, (results.FinalValue/initialCapital-1)*100)
	fmt.Printf("Days processed: %d, skipped: %d, trades: %d\n",
		results.DaysProcessed, results.DaysSkipped, len(results.Executions))
	if results.Cancelled {
		fmt.Println("Run cancelled, results are partial.")
	}
	if m := results.Metrics; m != nil {
		if m.SharpeRatio != nil {
			fmt.Printf("Sharpe: %.4f\n", *m.SharpeRatio)
		}
		if m.SortinoRatio != nil {
			fmt.Printf("Sortino: %.4f\n", *m.SortinoRatio)
		}
		if m.MaxDrawdown != nil {
			fmt.Printf("Max drawdown: %.2f%%", *m.MaxDrawdown)
			if m.MaxDrawdownDate != nil {
				fmt.Printf(" on %s", m.MaxDrawdownDate.Format("2006-01-02"))
			}
			fmt.Println()
		}
	}
}

func persistRun(ctx context.Context, dsn, runID string, cfg *config.Config, start, end time.Time, strategyID string, createdAt int64, results *backtest.Results) error {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	run := &domain.BacktestRun{
		RunID:             runID,
		Symbols:           cfg.Backtest.Symbols,
		StartDate:         start,
		EndDate:           end,
		InitialCapital:    cfg.Backtest.InitialCapital,
		MarginRequirement: cfg.Backtest.MarginRequirement,
		StrategyID:        strategyID,
		CreatedAt:         createdAt,
	}
	if !results.Cancelled {
		run.FinalValue = &results.FinalValue
		if m := results.Metrics; m != nil {
			run.SharpeRatio = m.SharpeRatio
			run.SortinoRatio = m.SortinoRatio
			run.MaxDrawdown = m.MaxDrawdown
			run.MaxDrawdownDate = m.MaxDrawdownDate
		}
	}

	if err := pgstore.NewRunStore(pool).Insert(ctx, run); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	if err := pgstore.NewEquityPointStore(pool).InsertBulk(ctx, runID, results.Curve); err != nil {
		return fmt.Errorf("insert equity curve: %w", err)
	}
	if err := pgstore.NewExecutionStore(pool).InsertBulk(ctx, results.Executions); err != nil {
		return fmt.Errorf("insert executions: %w", err)
	}
	return nil
}
