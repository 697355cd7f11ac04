package domain

import "fmt"

// EntryType distinguishes long and short positions.
type EntryType string

// Entry type constants.
const (
	EntryLong  EntryType = "long"
	EntryShort EntryType = "short"
)

// TradeKey identifies a trade by entry day, symbol and entry type.
// The derived display string is the external trade id.
type TradeKey struct {
	Day       Day
	Symbol    string
	EntryType EntryType
}

// ID returns the external trade identifier, e.g. "2010-09-28_CDR_long".
func (k TradeKey) ID() string {
	return fmt.Sprintf("%s_%s_%s", k.Day, k.Symbol, k.EntryType)
}

// Trade is the full lifecycle record of one position from entry to exit.
// Sell-side fields are zero until the position is closed. For short trades
// the sell values are negative: covering the borrowed shares is a cash debit.
type Trade struct {
	BuyDay        Day       `json:"buy_ds"`
	Type          EntryType `json:"type"`
	TrxValueNoFee float64   `json:"trx_value_no_fee"`
	TrxValueGross float64   `json:"trx_value_gross"`

	Closed         bool    `json:"closed"`
	SellDay        Day     `json:"sell_ds,omitzero"`
	SellValueNoFee float64 `json:"sell_value_no_fee"`
	SellValueGross float64 `json:"sell_value_gross"`
}

// Holding is an open position: signed share count plus a back-reference to
// the trade that opened it. Positive count is long, negative is short.
type Holding struct {
	Symbol      string
	SharesCount int64
	Trade       TradeKey
}

// Candidate is a symbol eligible for entry on a given day. StopLoss is NaN
// when the signal source provides none; only the PercentageRisk sizer
// requires it.
type Candidate struct {
	Symbol    string
	EntryType EntryType
	Price     float64
	StopLoss  float64
}

// Fill is a sizer's decision to execute a specific share quantity for a
// candidate. SharesCount is always positive; the portfolio applies the sign
// for shorts.
type Fill struct {
	Symbol      string
	EntryType   EntryType
	SharesCount int64
	Price       float64
	TrxValue    float64
	Fee         float64
}

// Snapshot is one end-of-day valuation row.
type Snapshot struct {
	Day          Day     `json:"ds"`
	AccountValue float64 `json:"account_value"`
	NAV          float64 `json:"nav"`
	RateOfReturn float64 `json:"rate_of_return"`
}
