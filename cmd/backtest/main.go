package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"portfolio-backtest-lab/internal/backtest"
	"portfolio-backtest-lab/internal/fees"
	"portfolio-backtest-lab/internal/metrics"
	"portfolio-backtest-lab/internal/observability"
	"portfolio-backtest-lab/internal/reporting"
	"portfolio-backtest-lab/internal/signalio"
	"portfolio-backtest-lab/internal/sizing"
	chstore "portfolio-backtest-lab/internal/storage/clickhouse"
	"portfolio-backtest-lab/internal/storage/migrations"
	pgstore "portfolio-backtest-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	signalsDir := flag.String("signals-dir", "", "Directory with per-symbol signal CSV files (required)")
	priceLabel := flag.String("price-label", "close", "Price column used to transact and mark-to-market")
	initCapital := flag.Float64("init-capital", backtest.DefaultInitCapital, "Starting cash")
	testDays := flag.Int("test-days", 0, "Cap the simulation to the first N trading days (0 = all)")

	// Sizing
	sizerType := flag.String("sizer", sizing.SizerMaxFirstEncountered, "Sizer: MAX_FIRST_ENCOUNTERED, FIXED_CAPITAL_PERC, PERCENTAGE_RISK")
	sortType := flag.String("sort", string(sizing.SortAlphabetically), "Candidate order: alphabetically, random, cheapest, expensive")
	capitalPerc := flag.Float64("capital-perc", 0, "Capital fraction per position for FIXED_CAPITAL_PERC")
	percRisk := flag.Float64("perc-risk", 0, "Capital fraction at risk per position for PERCENTAGE_RISK")
	seed := flag.Int64("seed", 0, "Random seed for the random sort (0 = time-based)")

	// Fees
	feePerc := flag.Float64("fee-perc", 0.0038, "Proportional fee rate")
	minFee := flag.Float64("min-fee", 4, "Minimum fee per transaction")

	// Storage
	runID := flag.String("run-id", "", "Run identifier for persistence (default: timestamp)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	persistResult := flag.Bool("persist", false, "Persist trades and valuation series to storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output the raw result as JSON instead of Markdown")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	// Validate required flags
	if *signalsDir == "" {
		logger.Fatal("--signals-dir is required")
	}

	*sizerType = strings.ToUpper(*sizerType)
	if *runID == "" {
		*runID = time.Now().UTC().Format("20060102T150405Z")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	m := observability.NewMetrics("")
	if *metricsAddr != "" {
		go func() {
			logger.Printf("serving metrics on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, observability.Handler()); err != nil {
				logger.Printf("metrics server: %v", err)
			}
		}()
	}

	// Load signals
	signals, err := signalio.LoadDir(*signalsDir)
	if err != nil {
		logger.Fatalf("load signals: %v", err)
	}
	m.SignalSeriesLoaded.Add(float64(len(signals)))
	logger.Printf("loaded %d signal series from %s", len(signals), *signalsDir)

	// Build sizer
	sizerCfg := sizing.Config{
		SizerType: *sizerType,
		FeePerc:   *feePerc,
		MinFee:    *minFee,
		SortType:  sizing.SortType(*sortType),
	}
	if *capitalPerc > 0 {
		sizerCfg.CapitalPerc = capitalPerc
	}
	if *percRisk > 0 {
		sizerCfg.PercRisk = percRisk
	}
	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
	}
	sizer, err := sizing.FromConfig(sizerCfg, rng, logger)
	if err != nil {
		logger.Fatalf("build sizer: %v", err)
	}

	// Run simulation
	engine := backtest.New(backtest.Options{
		Config: backtest.Config{
			PriceLabel:  *priceLabel,
			InitCapital: *initCapital,
		},
		Sizer:   sizer,
		Fees:    fees.Model{FeePerc: *feePerc, MinFee: *minFee},
		Logger:  logger,
		Metrics: m,
	})

	logger.Printf("running backtest: run=%s sizer=%s capital=%v", *runID, sizer.Name(), *initCapital)

	result, err := engine.Run(ctx, signals, *testDays)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}

	// Persist
	if *persistResult {
		if err := persist(ctx, *runID, *postgresDSN, *clickhouseDSN, result); err != nil {
			logger.Fatalf("persist result: %v", err)
		}
		logger.Printf("persisted run %s", *runID)
	}

	// Output result
	agg := metrics.Compute(result)
	if *outputJSON {
		output, _ := json.MarshalIndent(struct {
			RunID     string                `json:"run_id"`
			Aggregate *metrics.RunAggregate `json:"aggregate"`
			Result    *backtest.Result      `json:"result"`
		}{*runID, agg, result}, "", "  ")
		fmt.Println(string(output))
		return
	}

	report := reporting.NewBuilder().Build(*runID, sizer.Name(), *initCapital, result, agg)
	fmt.Print(reporting.RenderMarkdown(report))
}

// persist writes the run's trades to Postgres and its valuation series to
// ClickHouse, applying migrations first.
func persist(ctx context.Context, runID, postgresDSN, clickhouseDSN string, result *backtest.Result) error {
	if postgresDSN == "" || clickhouseDSN == "" {
		return fmt.Errorf("--postgres-dsn and --clickhouse-dsn are required with --persist")
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}
	if err := pgstore.NewTradeStore(pool).InsertBulk(ctx, runID, result.Trades); err != nil {
		return fmt.Errorf("store trades: %w", err)
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		return fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer conn.Close()

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	if err := chstore.NewSnapshotStore(conn).InsertBulk(ctx, runID, result.Snapshots); err != nil {
		return fmt.Errorf("store snapshots: %w", err)
	}

	return nil
}
