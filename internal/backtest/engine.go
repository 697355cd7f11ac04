// Package backtest implements the day-by-day portfolio simulation engine.
package backtest

import (
	"context"
	"fmt"
	"log"
	"sort"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/fees"
	"portfolio-backtest-lab/internal/ledger"
	"portfolio-backtest-lab/internal/observability"
	"portfolio-backtest-lab/internal/portfolio"
	"portfolio-backtest-lab/internal/sizing"
)

// Default configuration values.
const (
	DefaultInitCapital = 10000
)

// Config holds engine configuration.
type Config struct {
	PriceLabel  string  // price field used to mark-to-market and transact
	InitCapital float64 // starting cash
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		PriceLabel:  domain.DefaultPriceLabel,
		InitCapital: DefaultInitCapital,
	}
}

// Options contains configuration for creating an Engine.
type Options struct {
	Config  Config
	Sizer   sizing.Sizer           // nil means MaxFirstEncountered with defaults
	Fees    fees.Model             // zero value means the default model
	Logger  *log.Logger            // nil discards
	Metrics *observability.Metrics // nil disables instrumentation
}

// Engine owns the simulation day-loop. All per-run mutable state (cash,
// holdings, trade ledger, snapshots) is constructed fresh inside Run and
// returned or discarded at its end, so calling Run again fully resets the
// simulation. Run is not safe for concurrent use on one Engine.
type Engine struct {
	cfg     Config
	sizer   sizing.Sizer
	fees    fees.Model
	log     *log.Logger
	metrics *observability.Metrics
}

// Result holds the output of one simulation run: the daily valuation series
// in calendar order and the full trade history keyed by trade id.
type Result struct {
	Snapshots []domain.Snapshot       `json:"snapshots"`
	Trades    map[string]domain.Trade `json:"trades"`
}

// New creates an Engine, applying defaults for unset options.
func New(opts Options) *Engine {
	cfg := opts.Config
	if cfg.PriceLabel == "" {
		cfg.PriceLabel = domain.DefaultPriceLabel
	}
	if cfg.InitCapital == 0 {
		cfg.InitCapital = DefaultInitCapital
	}
	feeModel := opts.Fees
	if feeModel == (fees.Model{}) {
		feeModel = fees.DefaultModel()
	}
	sizer := opts.Sizer
	if sizer == nil {
		szOpts := sizing.DefaultOptions()
		szOpts.Fees = feeModel
		szOpts.Logger = opts.Logger
		sizer = sizing.NewMaxFirstEncountered(szOpts)
	}
	return &Engine{
		cfg:     cfg,
		sizer:   sizer,
		fees:    feeModel,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// Run simulates the strategy over the signal series. The trading calendar is
// the sorted union of all per-symbol days; testDays > 0 caps the run to that
// prefix. Steps per day, in fixed order:
//  1. Exit pass: close held positions whose matching exit flag fires. A
//     holding only closes on its own side; the long branch is checked first.
//  2. Candidate collection: symbols with a firing entry flag, entry_long
//     checked first so long wins ties.
//  3. Sizing: the position sizer turns candidates into an ordered fill list.
//  4. Buy pass: fills applied sequentially, each mutating cash before the
//     next (the order is the sizer's commitment).
//  5. Snapshot: mark-to-market account value, NAV and return recorded.
//
// A sizing error (e.g. a missing stop loss under PercentageRisk) aborts the
// run; no partial snapshot is produced for the failing day.
func (e *Engine) Run(ctx context.Context, signals map[string]*domain.SignalSeries, testDays int) (*Result, error) {
	calendar := buildCalendar(signals)
	if testDays > 0 && testDays < len(calendar) {
		calendar = calendar[:testDays]
	}

	state := portfolio.NewState(e.cfg.InitCapital)
	trades := ledger.New()
	snapshots := make([]domain.Snapshot, 0, len(calendar))

	// Capital reference for percentage-based sizers: initial capital before
	// the first snapshot, then the latest NAV.
	capitalRef := e.cfg.InitCapital

	for _, day := range calendar {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := e.exitPass(state, trades, signals, day); err != nil {
			return nil, err
		}

		candidates := e.collectCandidates(signals, day)
		fills, err := e.sizer.DecideWhatToBuy(state.Cash(), capitalRef, candidates)
		if err != nil {
			return nil, fmt.Errorf("sizing on %s: %w", day, err)
		}

		for _, fill := range fills {
			key := domain.TradeKey{Day: day, Symbol: fill.Symbol, EntryType: fill.EntryType}
			gross := state.Buy(fill, key)
			trades.Open(key, fill.TrxValue, gross)
			if e.log != nil {
				e.log.Printf("entered trade %s: %d shares at %v, gross %v", key.ID(), fill.SharesCount, fill.Price, gross)
			}
			if e.metrics != nil {
				e.metrics.TradesExecuted.Inc()
			}
		}

		snapshot := e.summarizeDay(state, signals, day)
		snapshots = append(snapshots, snapshot)
		capitalRef = snapshot.NAV
		if e.log != nil {
			e.log.Printf("NAV after session %s is %v", day, snapshot.NAV)
		}
		if e.metrics != nil {
			e.metrics.DaysSimulated.Inc()
		}
	}

	if e.metrics != nil {
		e.metrics.RunsTotal.Inc()
		if n := len(snapshots); n > 0 {
			e.metrics.LastRunNAV.Set(snapshots[n-1].NAV)
		}
	}

	return &Result{Snapshots: snapshots, Trades: trades.Trades()}, nil
}

// exitPass closes held positions whose exit flag fires on day. Held symbols
// without a bar on that day are left open.
func (e *Engine) exitPass(state *portfolio.State, trades *ledger.Ledger, signals map[string]*domain.SignalSeries, day domain.Day) error {
	for _, sym := range state.HeldSymbols() {
		series, ok := signals[sym]
		if !ok {
			continue
		}
		pt, ok := series.At(day)
		if !ok {
			continue
		}
		price, ok := pt.Price(e.cfg.PriceLabel)
		if !ok {
			continue
		}

		h, _ := state.Held(sym)
		var exitType domain.EntryType
		switch {
		case pt.ExitLong && h.SharesCount > 0:
			exitType = domain.EntryLong
		case pt.ExitShort && h.SharesCount < 0:
			exitType = domain.EntryShort
		default:
			continue
		}

		// Fee off the signed transaction value, as on the buy side.
		fee := e.fees.Calculate(float64(h.SharesCount) * price)
		key, noFee, gross, err := state.Sell(sym, exitType, price, fee)
		if err != nil {
			return fmt.Errorf("exit pass on %s: %w", day, err)
		}
		if err := trades.Close(key, day, noFee, gross); err != nil {
			return fmt.Errorf("exit pass on %s: %w", day, err)
		}
		if e.log != nil {
			e.log.Printf("closed trade %s: gross %v, cash %v", key.ID(), gross, state.Cash())
		}
	}
	return nil
}

// collectCandidates gathers every symbol with a firing entry flag on day.
// entry_long is checked first, so a simultaneous long+short entry resolves
// as long. Symbols are visited in sorted order for determinism; the sizer
// re-sorts by its own policy anyway. Holding a symbol does not block it from
// being offered again; overlapping signals are a caller obligation.
func (e *Engine) collectCandidates(signals map[string]*domain.SignalSeries, day domain.Day) []domain.Candidate {
	symbols := make([]string, 0, len(signals))
	for sym := range signals {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var candidates []domain.Candidate
	for _, sym := range symbols {
		pt, ok := signals[sym].At(day)
		if !ok {
			continue
		}
		price, ok := pt.Price(e.cfg.PriceLabel)
		if !ok {
			continue
		}

		switch {
		case pt.EntryLong:
			candidates = append(candidates, domain.Candidate{
				Symbol: sym, EntryType: domain.EntryLong, Price: price, StopLoss: pt.StopLoss,
			})
		case pt.EntryShort:
			candidates = append(candidates, domain.Candidate{
				Symbol: sym, EntryType: domain.EntryShort, Price: price, StopLoss: pt.StopLoss,
			})
		}
	}
	return candidates
}

// summarizeDay records the end-of-day valuation. Holdings are marked at the
// most recent price at or before day, so a held symbol missing a bar keeps
// its last known value.
func (e *Engine) summarizeDay(state *portfolio.State, signals map[string]*domain.SignalSeries, day domain.Day) domain.Snapshot {
	accountValue := state.AccountValue(func(sym string) (float64, bool) {
		series, ok := signals[sym]
		if !ok {
			return 0, false
		}
		return series.PriceAt(day, e.cfg.PriceLabel)
	})
	nav := accountValue + state.Cash()
	return domain.Snapshot{
		Day:          day,
		AccountValue: accountValue,
		NAV:          nav,
		RateOfReturn: (nav - e.cfg.InitCapital) / e.cfg.InitCapital * 100,
	}
}

// buildCalendar returns the sorted union of trading days across all series.
func buildCalendar(signals map[string]*domain.SignalSeries) []domain.Day {
	seen := make(map[domain.Day]struct{})
	var days []domain.Day
	for _, series := range signals {
		for _, d := range series.Days() {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	return domain.SortDays(days)
}
