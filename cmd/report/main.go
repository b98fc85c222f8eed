package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"crypto-backtest-lab/internal/config"
	"crypto-backtest-lab/internal/reporting"
	pgstore "crypto-backtest-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	runID := flag.String("run-id", "", "Run ID to report on")
	list := flag.Bool("list", false, "List stored runs and exit")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL DSN (overrides config)")
	outputDir := flag.String("output-dir", "", "Directory for markdown and CSV files; empty prints markdown to stdout")
	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if cfg.Storage.PostgresDSN == "" {
		logger.Fatal("postgres DSN required, use -postgres-dsn or the config file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	runStore := pgstore.NewRunStore(pool)

	if *list {
		runs, err := runStore.List(ctx)
		if err != nil {
			logger.Fatalf("list runs: %v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No stored runs.")
			return
		}
		for _, run := range runs {
			fmt.Printf("%s  %s  %s..%s  %s\n",
				run.RunID,
				time.UnixMilli(run.CreatedAt).UTC().Format("2006-01-02 15:04"),
				run.StartDate.Format("2006-01-02"), run.EndDate.Format("2006-01-02"),
				strings.Join(run.Symbols, ","))
		}
		return
	}

	if *runID == "" {
		logger.Fatal("run ID required, use -run-id or -list")
	}

	generator := reporting.NewGenerator(
		runStore,
		pgstore.NewEquityPointStore(pool),
		pgstore.NewExecutionStore(pool),
	)

	report, err := generator.Generate(ctx, *runID)
	if err != nil {
		logger.Fatalf("generate report: %v", err)
	}

	markdown := reporting.RenderMarkdown(report)

	if *outputDir == "" {
		fmt.Print(markdown)
		return
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	files := map[string]string{
		*runID + ".md":             markdown,
		*runID + "_equity.csv":     reporting.RenderEquityCSV(report),
		*runID + "_executions.csv": reporting.RenderExecutionsCSV(report),
	}
	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			logger.Fatalf("write %s: %v", path, err)
		}
		logger.Printf("Wrote %s", path)
	}
}
