// Package metrics computes summary statistics for a finished simulation run.
package metrics

import (
	"math"
	"sort"

	"portfolio-backtest-lab/internal/backtest"
	"portfolio-backtest-lab/internal/domain"
)

// RunAggregate summarizes one simulation run: the valuation outcome plus the
// distribution of per-trade profits over closed trades.
type RunAggregate struct {
	// Valuation
	Days         int     `json:"days"`
	FinalNAV     float64 `json:"final_nav"`
	FinalReturn  float64 `json:"final_rate_of_return"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	PeakNAV      float64 `json:"peak_nav"`

	// Trade counts
	TotalTrades  int     `json:"total_trades"`
	ClosedTrades int     `json:"closed_trades"`
	OpenTrades   int     `json:"open_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`

	// Profit distribution over closed trades
	ProfitMean   float64 `json:"profit_mean"`
	ProfitMedian float64 `json:"profit_median"`
	ProfitP10    float64 `json:"profit_p10"`
	ProfitP25    float64 `json:"profit_p25"`
	ProfitP75    float64 `json:"profit_p75"`
	ProfitP90    float64 `json:"profit_p90"`
	ProfitMin    float64 `json:"profit_min"`
	ProfitMax    float64 `json:"profit_max"`
	ProfitStddev float64 `json:"profit_stddev"`

	// Streaks (order-dependent, over trades sorted by close day)
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`
}

// Compute calculates all metrics from a run result. Closed trades are sorted
// by sell day ASC, trade id ASC before computing order-dependent metrics
// (MaxConsecutiveLosses); the valuation drawdown runs over the snapshot
// series in calendar order.
func Compute(result *backtest.Result) *RunAggregate {
	agg := &RunAggregate{Days: len(result.Snapshots)}

	if n := len(result.Snapshots); n > 0 {
		last := result.Snapshots[n-1]
		agg.FinalNAV = last.NAV
		agg.FinalReturn = last.RateOfReturn
		agg.MaxDrawdown, agg.PeakNAV = computeNAVDrawdown(result.Snapshots)
	}

	agg.TotalTrades = len(result.Trades)

	closed := closedTradesInOrder(result.Trades)
	agg.ClosedTrades = len(closed)
	agg.OpenTrades = agg.TotalTrades - agg.ClosedTrades
	if len(closed) == 0 {
		return agg
	}

	profits := make([]float64, len(closed))
	for i, ct := range closed {
		profits[i] = TradeProfit(ct.trade)
		if profits[i] > 0 {
			agg.Wins++
		} else {
			agg.Losses++
		}
	}
	agg.WinRate = float64(agg.Wins) / float64(len(closed))
	agg.MaxConsecutiveLosses = computeMaxConsecutiveLosses(profits)

	sortedProfits := make([]float64, len(profits))
	copy(sortedProfits, profits)
	sort.Float64s(sortedProfits)

	agg.ProfitMean = computeMean(profits)
	agg.ProfitStddev = computeStddev(profits, agg.ProfitMean)
	agg.ProfitMedian = computePercentile(sortedProfits, 0.50)
	agg.ProfitP10 = computePercentile(sortedProfits, 0.10)
	agg.ProfitP25 = computePercentile(sortedProfits, 0.25)
	agg.ProfitP75 = computePercentile(sortedProfits, 0.75)
	agg.ProfitP90 = computePercentile(sortedProfits, 0.90)
	agg.ProfitMin = sortedProfits[0]
	agg.ProfitMax = sortedProfits[len(sortedProfits)-1]

	return agg
}

// TradeProfit is the net cash effect of a closed round trip, fees included.
// A long pays the entry gross and collects the sell gross; a short collects
// the entry gross and pays the (negative) sell gross back.
func TradeProfit(t domain.Trade) float64 {
	if t.Type == domain.EntryShort {
		return t.TrxValueGross + t.SellValueGross
	}
	return t.SellValueGross - t.TrxValueGross
}

type closedTrade struct {
	id    string
	trade domain.Trade
}

// closedTradesInOrder filters to closed trades sorted by sell day ASC,
// trade id ASC.
func closedTradesInOrder(trades map[string]domain.Trade) []closedTrade {
	var closed []closedTrade
	for id, t := range trades {
		if t.Closed {
			closed = append(closed, closedTrade{id: id, trade: t})
		}
	}
	sort.Slice(closed, func(i, j int) bool {
		di, dj := closed[i].trade.SellDay, closed[j].trade.SellDay
		if di != dj {
			return di.Before(dj)
		}
		return closed[i].id < closed[j].id
	})
	return closed
}

// computeNAVDrawdown returns the worst peak-to-trough decline of the NAV
// series and the highest NAV seen. Snapshots must be in calendar order.
func computeNAVDrawdown(snapshots []domain.Snapshot) (maxDrawdown, peak float64) {
	peak = snapshots[0].NAV
	for _, s := range snapshots {
		if s.NAV > peak {
			peak = s.NAV
		}
		if dd := peak - s.NAV; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown, peak
}

// computeMean calculates the arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation. sorted must be pre-sorted ASC.
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// computeMaxConsecutiveLosses finds the longest streak of profit <= 0.
// Profits must be in chronological order.
func computeMaxConsecutiveLosses(profits []float64) int {
	maxStreak := 0
	currentStreak := 0
	for _, p := range profits {
		if p <= 0 {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}
