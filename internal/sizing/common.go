package sizing

import (
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"portfolio-backtest-lab/internal/domain"
)

// sortCandidates returns a copy of candidates in the priority order given by
// the sort type. Sorting is stable so equal-priced candidates keep their
// input order.
func sortCandidates(candidates []domain.Candidate, st SortType, rng *rand.Rand) []domain.Candidate {
	sorted := make([]domain.Candidate, len(candidates))
	copy(sorted, candidates)

	switch st {
	case SortRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		rng.Shuffle(len(sorted), func(i, j int) {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		})
	case SortCheapest:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })
	case SortExpensive:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
	default: // SortAlphabetically
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })
	}
	return sorted
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// makeFill assembles a fill for the candidate with computed quantities.
func makeFill(c domain.Candidate, sharesCount int64, trxValue, fee float64) domain.Fill {
	return domain.Fill{
		Symbol:      c.Symbol,
		EntryType:   c.EntryType,
		SharesCount: sharesCount,
		Price:       c.Price,
		TrxValue:    trxValue,
		Fee:         fee,
	}
}

func logDeciding(l *log.Logger, c domain.Candidate) {
	if l != nil {
		l.Printf("deciding how much of %s to buy (%s)", c.Symbol, c.EntryType)
	}
}

func logMoneyAndPrice(l *log.Logger, money, price float64) {
	if l != nil {
		l.Printf("based on available money %v and price %v", money, price)
	}
}

func logCannotAfford(l *log.Logger, symbol string) {
	if l != nil {
		l.Printf("cannot afford any amount of share, not buying %s", symbol)
	}
}

func logDecision(l *log.Logger, sharesCount int64, symbol string) {
	if l != nil {
		l.Printf("buying decision: %d shares of %s", sharesCount, symbol)
	}
}
