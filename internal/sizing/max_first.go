package sizing

import (
	"portfolio-backtest-lab/internal/domain"
)

// MaxFirstEncountered buys the maximum affordable whole-share quantity of
// the first candidate in sort order that can be afforded at all, spending
// the entire available cash on it. Candidates that yield zero shares are
// skipped and the next one is checked.
type MaxFirstEncountered struct {
	opts Options
}

// NewMaxFirstEncountered creates a MaxFirstEncountered sizer.
func NewMaxFirstEncountered(opts Options) *MaxFirstEncountered {
	return &MaxFirstEncountered{opts: opts}
}

// Name returns the sizer identifier.
func (s *MaxFirstEncountered) Name() string { return SizerMaxFirstEncountered }

// DecideWhatToBuy returns at most one fill: all-in on the first affordable
// candidate.
func (s *MaxFirstEncountered) DecideWhatToBuy(availableMoney, _ float64, candidates []domain.Candidate) ([]domain.Fill, error) {
	for _, candidate := range sortCandidates(candidates, s.opts.SortType, s.opts.Rand) {
		logDeciding(s.opts.Logger, candidate)
		logMoneyAndPrice(s.opts.Logger, availableMoney, candidate.Price)

		sharesCount := s.opts.Fees.SharesCount(availableMoney, candidate.Price)
		if sharesCount == 0 {
			logCannotAfford(s.opts.Logger, candidate.Symbol)
			continue
		}

		trxValue := float64(sharesCount) * candidate.Price
		fee := s.opts.Fees.Calculate(trxValue)
		logDecision(s.opts.Logger, sharesCount, candidate.Symbol)
		return []domain.Fill{makeFill(candidate, sharesCount, trxValue, fee)}, nil
	}
	return nil, nil
}

var _ Sizer = (*MaxFirstEncountered)(nil)
