package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crypto-backtest-lab/internal/aster"
	"crypto-backtest-lab/internal/config"
	"crypto-backtest-lab/internal/ingest"
	"crypto-backtest-lab/internal/observability"
	"crypto-backtest-lab/internal/storage"
	chstore "crypto-backtest-lab/internal/storage/clickhouse"
	"crypto-backtest-lab/internal/storage/memory"
	"crypto-backtest-lab/internal/storage/migrations"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	symbols := flag.String("symbols", "", "Comma-separated symbols to backfill (overrides config)")
	startDate := flag.String("start", "", "Start date YYYY-MM-DD (overrides config)")
	endDate := flag.String("end", "", "End date YYYY-MM-DD (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN (overrides config)")
	baseURL := flag.String("base-url", "", "Exchange REST base URL (overrides config)")
	dryRun := flag.Bool("dry-run", false, "Fetch into an in-memory store without persisting")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *symbols != "" {
		cfg.Backtest.Symbols = strings.Split(*symbols, ",")
	}
	if *startDate != "" {
		cfg.Backtest.StartDate = *startDate
	}
	if *endDate != "" {
		cfg.Backtest.EndDate = *endDate
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = *clickhouseDSN
	}
	if *baseURL != "" {
		cfg.Exchange.BaseURL = *baseURL
	}

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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping...", sig)
		cancel()
	}()

	var store storage.CandleStore
	if *dryRun {
		logger.Println("Dry run: candles will not be persisted")
		store = memory.NewCandleStore()
	} else {
		if cfg.Storage.ClickhouseDSN == "" {
			logger.Fatal("clickhouse DSN required, use -clickhouse-dsn or -dry-run")
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse: %v", err)
		}
		defer conn.Close()
		store = chstore.NewCandleStore(conn)
	}

	backfiller, err := ingest.NewBackfiller(aster.NewClient(cfg.Exchange.BaseURL), store, logger)
	if err != nil {
		logger.Fatalf("backfiller: %v", err)
	}

	started := time.Now()
	logger.Printf("Backfilling %d symbols from %s to %s",
		len(cfg.Backtest.Symbols), start.Format("2006-01-02"), end.Format("2006-01-02"))

	result, err := backfiller.Run(ctx, cfg.Backtest.Symbols, start, end)
	if result != nil {
		for symbol, symErr := range result.SymbolErrors {
			logger.Printf("symbol %s failed: %v", symbol, symErr)
		}
		logger.Printf("Stored %d candles (%d symbols already present) in %s",
			result.CandlesStored, result.Duplicates, time.Since(started).Round(time.Millisecond))
	}
	if err != nil {
		logger.Fatalf("backfill: %v", err)
	}
}
