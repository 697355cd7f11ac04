// Package fees implements the transaction fee model shared by the simulation
// engine and the position sizers.
package fees

import "math"

// Default fee parameters.
const (
	DefaultFeePerc = 0.0038 // 0.38%
	DefaultMinFee  = 4      // fee floor in currency units
)

// Model is a stateless proportional fee with a minimum-fee floor.
type Model struct {
	FeePerc float64 // proportional fee rate
	MinFee  float64 // fee floor in currency units
}

// DefaultModel returns a Model with the default rate and floor.
func DefaultModel() Model {
	return Model{FeePerc: DefaultFeePerc, MinFee: DefaultMinFee}
}

// Calculate returns the fee for a transaction value, rounded to 2 decimal
// places and floored at MinFee. Sell transactions pass the signed value;
// a negative value always hits the floor.
func (m Model) Calculate(trxValue float64) float64 {
	fee := trxValue * m.FeePerc
	if fee < m.MinFee {
		fee = m.MinFee
	}
	return math.Round(fee*100) / 100
}

// SharesCount returns the maximum whole-share quantity affordable for the
// given money, using the worst-case per-unit cost price + price*FeePerc.
// This deliberately over-estimates the marginal fee; the fee actually charged
// is computed by Calculate off the real transaction value.
func (m Model) SharesCount(money, price float64) int64 {
	perShare := price + price*m.FeePerc
	if perShare <= 0 || money <= 0 {
		return 0
	}
	return int64(math.Floor(money / perShare))
}
