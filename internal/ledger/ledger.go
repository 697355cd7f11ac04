// Package ledger records the full trade history of a simulation run.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"portfolio-backtest-lab/internal/domain"
)

// Ledger errors.
var (
	// ErrUnknownTrade is returned when closing a trade that was never opened.
	ErrUnknownTrade = errors.New("unknown trade")
	// ErrAlreadyClosed is returned when closing a trade twice.
	ErrAlreadyClosed = errors.New("trade already closed")
)

// Ledger records open and close events per position, keyed by the
// deterministic trade key. Trades are never deleted; re-opening the same key
// (same-day re-entry into the same symbol and type) overwrites the prior
// open record, which is a documented caller-side data-integrity edge case.
type Ledger struct {
	trades map[domain.TradeKey]domain.Trade
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{trades: make(map[domain.TradeKey]domain.Trade)}
}

// Open records the buy side of a trade.
func (l *Ledger) Open(key domain.TradeKey, trxValueNoFee, trxValueGross float64) {
	l.trades[key] = domain.Trade{
		BuyDay:        key.Day,
		Type:          key.EntryType,
		TrxValueNoFee: trxValueNoFee,
		TrxValueGross: trxValueGross,
	}
}

// Close merges the sell side into the trade opened under key.
func (l *Ledger) Close(key domain.TradeKey, sellDay domain.Day, sellValueNoFee, sellValueGross float64) error {
	t, ok := l.trades[key]
	if !ok {
		return fmt.Errorf("close %s: %w", key.ID(), ErrUnknownTrade)
	}
	if t.Closed {
		return fmt.Errorf("close %s: %w", key.ID(), ErrAlreadyClosed)
	}
	t.Closed = true
	t.SellDay = sellDay
	t.SellValueNoFee = sellValueNoFee
	t.SellValueGross = sellValueGross
	l.trades[key] = t
	return nil
}

// Get returns the trade recorded under key.
func (l *Ledger) Get(key domain.TradeKey) (domain.Trade, bool) {
	t, ok := l.trades[key]
	return t, ok
}

// Len returns the number of recorded trades.
func (l *Ledger) Len() int { return len(l.trades) }

// Trades exports the history keyed by the external trade id.
func (l *Ledger) Trades() map[string]domain.Trade {
	out := make(map[string]domain.Trade, len(l.trades))
	for key, t := range l.trades {
		out[key.ID()] = t
	}
	return out
}

// Keys returns all trade keys ordered by buy day, then symbol, then type.
func (l *Ledger) Keys() []domain.TradeKey {
	keys := make([]domain.TradeKey, 0, len(l.trades))
	for key := range l.trades {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Day != keys[j].Day {
			return keys[i].Day.Before(keys[j].Day)
		}
		if keys[i].Symbol != keys[j].Symbol {
			return keys[i].Symbol < keys[j].Symbol
		}
		return keys[i].EntryType < keys[j].EntryType
	})
	return keys
}
