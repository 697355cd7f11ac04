// Package reporting renders simulation results as Markdown and CSV.
package reporting

import (
	"sort"
	"time"

	"portfolio-backtest-lab/internal/backtest"
	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/metrics"
)

// Report represents the run report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	SizerName   string
	InitCapital float64

	// Run summary statistics
	Aggregate *metrics.RunAggregate

	// Daily valuation series in calendar order
	Valuation []ValuationRow

	// Trade ledger sorted by entry day, trade id
	Trades []TradeRow
}

// ValuationRow represents one day in the valuation table.
type ValuationRow struct {
	Day          domain.Day
	AccountValue float64
	NAV          float64
	RateOfReturn float64
}

// TradeRow represents one trade ledger entry.
type TradeRow struct {
	ID             string
	Type           domain.EntryType
	BuyDay         domain.Day
	TrxValueNoFee  float64
	TrxValueGross  float64
	Closed         bool
	SellDay        domain.Day
	SellValueNoFee float64
	SellValueGross float64
	Profit         float64 // zero while the trade is open
}

// Builder produces reports from run results.
type Builder struct {
	now func() time.Time // injectable clock for deterministic output
}

// NewBuilder creates a new report builder.
func NewBuilder() *Builder {
	return &Builder{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function for deterministic output.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build assembles a report from a run result and its aggregate.
func (b *Builder) Build(runID, sizerName string, initCapital float64, result *backtest.Result, agg *metrics.RunAggregate) *Report {
	valuation := make([]ValuationRow, len(result.Snapshots))
	for i, s := range result.Snapshots {
		valuation[i] = ValuationRow{
			Day:          s.Day,
			AccountValue: s.AccountValue,
			NAV:          s.NAV,
			RateOfReturn: s.RateOfReturn,
		}
	}

	trades := make([]TradeRow, 0, len(result.Trades))
	for id, t := range result.Trades {
		row := TradeRow{
			ID:             id,
			Type:           t.Type,
			BuyDay:         t.BuyDay,
			TrxValueNoFee:  t.TrxValueNoFee,
			TrxValueGross:  t.TrxValueGross,
			Closed:         t.Closed,
			SellDay:        t.SellDay,
			SellValueNoFee: t.SellValueNoFee,
			SellValueGross: t.SellValueGross,
		}
		if t.Closed {
			row.Profit = metrics.TradeProfit(t)
		}
		trades = append(trades, row)
	}
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].BuyDay != trades[j].BuyDay {
			return trades[i].BuyDay.Before(trades[j].BuyDay)
		}
		return trades[i].ID < trades[j].ID
	})

	return &Report{
		GeneratedAt: b.now(),
		RunID:       runID,
		SizerName:   sizerName,
		InitCapital: initCapital,
		Aggregate:   agg,
		Valuation:   valuation,
		Trades:      trades,
	}
}
