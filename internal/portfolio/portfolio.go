// Package portfolio holds the mutable simulation state: the cash ledger and
// the set of open holdings. State is exclusively owned by a single engine
// run; it is constructed fresh at run entry and discarded at run end, so no
// locking is needed.
package portfolio

import (
	"errors"
	"fmt"
	"sort"

	"portfolio-backtest-lab/internal/domain"
)

// State errors.
var (
	// ErrNotHeld is returned when selling a symbol with no open position.
	ErrNotHeld = errors.New("symbol not held")
	// ErrWrongSide is returned when the exit type does not match the side of
	// the open position.
	ErrWrongSide = errors.New("exit type does not match held position side")
)

// State is the portfolio: cash balance plus open holdings. Cash is the
// single mutable ledger; every Buy and Sell is an atomic adjustment to it.
type State struct {
	cash     float64
	holdings map[string]domain.Holding
}

// NewState creates a State with the given starting cash and no holdings.
func NewState(initCapital float64) *State {
	return &State{
		cash:     initCapital,
		holdings: make(map[string]domain.Holding),
	}
}

// Cash returns the current cash balance.
func (s *State) Cash() float64 { return s.cash }

// Held returns the open holding for the symbol.
func (s *State) Held(symbol string) (domain.Holding, bool) {
	h, ok := s.holdings[symbol]
	return h, ok
}

// HeldSymbols returns the symbols with open positions, sorted for
// deterministic iteration.
func (s *State) HeldSymbols() []string {
	symbols := make([]string, 0, len(s.holdings))
	for sym := range s.holdings {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Buy executes a fill against the cash ledger and opens a holding. A long
// entry debits cash by trx+fee; a short entry credits cash by trx-fee and
// records a negative share count. Returns the gross transaction value for
// the trade ledger.
func (s *State) Buy(fill domain.Fill, key domain.TradeKey) float64 {
	var gross float64
	switch fill.EntryType {
	case domain.EntryShort:
		gross = fill.TrxValue - fill.Fee
		s.cash += gross
		s.holdings[fill.Symbol] = domain.Holding{
			Symbol:      fill.Symbol,
			SharesCount: -fill.SharesCount,
			Trade:       key,
		}
	default: // domain.EntryLong
		gross = fill.TrxValue + fill.Fee
		s.cash -= gross
		s.holdings[fill.Symbol] = domain.Holding{
			Symbol:      fill.Symbol,
			SharesCount: fill.SharesCount,
			Trade:       key,
		}
	}
	return gross
}

// Sell closes the holding for symbol at the given price and fee, removing it
// and crediting cash by the signed transaction value minus the fee. For a
// long exit that is a credit of shares*price-fee; for a short exit the
// signed value is negative, so cash is debited by |shares|*price+fee (buying
// back the borrowed shares costs the fee on top). Returns the trade key of
// the closed position plus the signed no-fee and gross sell values.
func (s *State) Sell(symbol string, exitType domain.EntryType, price, fee float64) (domain.TradeKey, float64, float64, error) {
	h, ok := s.holdings[symbol]
	if !ok {
		return domain.TradeKey{}, 0, 0, fmt.Errorf("sell %s: %w", symbol, ErrNotHeld)
	}
	if (exitType == domain.EntryLong) != (h.SharesCount > 0) {
		return domain.TradeKey{}, 0, 0, fmt.Errorf("sell %s as %s: %w", symbol, exitType, ErrWrongSide)
	}

	trxValue := float64(h.SharesCount) * price
	gross := trxValue - fee
	s.cash += gross
	delete(s.holdings, symbol)
	return h.Trade, trxValue, gross, nil
}

// AccountValue marks all holdings to market using the supplied price lookup.
// Symbols without a price contribute nothing; a fully flat portfolio is 0.
func (s *State) AccountValue(priceOf func(symbol string) (float64, bool)) float64 {
	var total float64
	for sym, h := range s.holdings {
		if price, ok := priceOf(sym); ok {
			total += float64(h.SharesCount) * price
		}
	}
	return total
}
