package sizing

import (
	"portfolio-backtest-lab/internal/domain"
)

// FixedCapitalPerc buys as many different symbols as possible, spending for
// each at most CapitalPerc of the capital reference. With capital 1000 and
// CapitalPerc 0.1 it funds up to 10 symbols at up to 100 each. Remaining
// cash caps the per-candidate spend when it falls below the ceiling.
type FixedCapitalPerc struct {
	CapitalPerc float64 // fraction of the capital reference per trade

	opts Options
}

// NewFixedCapitalPerc creates a FixedCapitalPerc sizer.
func NewFixedCapitalPerc(capitalPerc float64, opts Options) *FixedCapitalPerc {
	return &FixedCapitalPerc{CapitalPerc: capitalPerc, opts: opts}
}

// Name returns the sizer identifier.
func (s *FixedCapitalPerc) Name() string { return SizerFixedCapitalPerc }

// DecideWhatToBuy funds candidates in sort order, deducting each fill's cost
// from the available money before sizing the next one.
func (s *FixedCapitalPerc) DecideWhatToBuy(availableMoney, capital float64, candidates []domain.Candidate) ([]domain.Fill, error) {
	singleBuyLimit := round2(capital * s.CapitalPerc)
	if s.opts.Logger != nil {
		s.opts.Logger.Printf("based on capital %v, single transaction value limit is %v (%v%%)",
			capital, singleBuyLimit, s.CapitalPerc*100)
	}

	var fills []domain.Fill
	for _, candidate := range sortCandidates(candidates, s.opts.SortType, s.opts.Rand) {
		logMoneyAndPrice(s.opts.Logger, availableMoney, candidate.Price)
		logDeciding(s.opts.Logger, candidate)

		spend := singleBuyLimit
		if availableMoney < singleBuyLimit {
			spend = availableMoney
		}
		sharesCount := s.opts.Fees.SharesCount(spend, candidate.Price)
		if sharesCount == 0 {
			logCannotAfford(s.opts.Logger, candidate.Symbol)
			continue
		}

		trxValue := float64(sharesCount) * candidate.Price
		fee := s.opts.Fees.Calculate(trxValue)
		logDecision(s.opts.Logger, sharesCount, candidate.Symbol)
		fills = append(fills, makeFill(candidate, sharesCount, trxValue, fee))
		availableMoney -= trxValue + fee
	}
	return fills, nil
}

var _ Sizer = (*FixedCapitalPerc)(nil)
