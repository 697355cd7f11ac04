package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"portfolio-backtest-lab/internal/backtest"
	"portfolio-backtest-lab/internal/metrics"
	"portfolio-backtest-lab/internal/reporting"
	chstore "portfolio-backtest-lab/internal/storage/clickhouse"
	pgstore "portfolio-backtest-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	runID := flag.String("run-id", "", "Run identifier to report on (required)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	sizerLabel := flag.String("sizer", "", "Sizer label shown in the report header")
	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *runID == "" {
		logger.Fatal("--run-id is required")
	}
	if *postgresDSN == "" || *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required")
	}

	ctx := context.Background()

	// Load the stored run
	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	conn, err := chstore.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("connect to clickhouse: %v", err)
	}
	defer conn.Close()

	trades, err := pgstore.NewTradeStore(pool).GetByRunID(ctx, *runID)
	if err != nil {
		logger.Fatalf("load trades for run %s: %v", *runID, err)
	}
	snapshots, err := chstore.NewSnapshotStore(conn).GetByRunID(ctx, *runID)
	if err != nil {
		logger.Fatalf("load snapshots for run %s: %v", *runID, err)
	}

	result := &backtest.Result{Snapshots: snapshots, Trades: trades}
	agg := metrics.Compute(result)

	// The initial capital is recoverable from any snapshot's return.
	initCapital := 0.0
	if len(snapshots) > 0 {
		first := snapshots[0]
		initCapital = first.NAV / (1 + first.RateOfReturn/100)
	}

	report := reporting.NewBuilder().Build(*runID, *sizerLabel, initCapital, result, agg)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	files := map[string]string{
		"REPORT_" + *runID + ".md":     reporting.RenderMarkdown(report),
		"VALUATION_" + *runID + ".csv": reporting.RenderValuationCSV(report.Valuation),
		"TRADES_" + *runID + ".csv":    reporting.RenderTradesCSV(report.Trades),
	}
	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			logger.Fatalf("write %s: %v", path, err)
		}
	}

	fmt.Println("report generated successfully:")
	for name := range files {
		fmt.Printf("  - %s\n", filepath.Join(*outputDir, name))
	}
}
