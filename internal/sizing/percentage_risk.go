package sizing

import (
	"fmt"
	"math"

	"portfolio-backtest-lab/internal/domain"
)

// PercentageRisk sizes each position so that at most PercRisk of the capital
// reference is lost if the price moves to the candidate's stop loss. A
// missing or NaN stop loss is a hard input error, not a skip: silently
// treating it as zero risk would imply an infinite position.
type PercentageRisk struct {
	PercRisk float64 // fraction of the capital reference risked per trade

	opts Options
}

// NewPercentageRisk creates a PercentageRisk sizer.
func NewPercentageRisk(percRisk float64, opts Options) *PercentageRisk {
	return &PercentageRisk{PercRisk: percRisk, opts: opts}
}

// Name returns the sizer identifier.
func (s *PercentageRisk) Name() string { return SizerPercentageRisk }

// DecideWhatToBuy funds candidates in sort order. Per candidate the
// theoretical spend is floor(risk budget / per-share risk) shares; the
// actual spend is capped by remaining cash and re-derived through the
// affordability formula. Aborts the whole candidate set on an invalid stop
// loss.
func (s *PercentageRisk) DecideWhatToBuy(availableMoney, capital float64, candidates []domain.Candidate) ([]domain.Fill, error) {
	var fills []domain.Fill
	for _, candidate := range sortCandidates(candidates, s.opts.SortType, s.opts.Rand) {
		if math.IsNaN(candidate.StopLoss) {
			return nil, fmt.Errorf("candidate %s: %w", candidate.Symbol, ErrMissingStopLoss)
		}

		logMoneyAndPrice(s.opts.Logger, availableMoney, candidate.Price)
		logDeciding(s.opts.Logger, candidate)

		valueAtRiskPerShare := math.Abs(candidate.Price - candidate.StopLoss)
		if valueAtRiskPerShare == 0 {
			return nil, fmt.Errorf("candidate %s: %w", candidate.Symbol, ErrInvalidStopLoss)
		}
		riskPerTransaction := round2(capital * s.PercRisk)
		theoreticalShares := math.Floor(riskPerTransaction / valueAtRiskPerShare)
		theoreticalTrxValue := theoreticalShares * candidate.Price

		spend := theoreticalTrxValue
		if availableMoney < theoreticalTrxValue {
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

var _ Sizer = (*PercentageRisk)(nil)
