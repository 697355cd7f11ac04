package domain

import (
	"math"
	"sort"
)

// DefaultPriceLabel is the price field used when none is configured.
const DefaultPriceLabel = "close"

// SignalPoint holds one trading day of prices and entry/exit flags for a
// symbol. Flags are binary; EntryLong and EntryShort firing on the same day
// is a caller data-integrity violation that the engine resolves as long.
type SignalPoint struct {
	Day        Day
	Prices     map[string]float64 // price label -> price
	EntryLong  bool
	ExitLong   bool
	EntryShort bool
	ExitShort  bool
	StopLoss   float64 // NaN when not provided
}

// Price returns the price for the given label. Returns 0 and false when the
// label is not present.
func (p SignalPoint) Price(label string) (float64, bool) {
	v, ok := p.Prices[label]
	return v, ok
}

// HasStopLoss reports whether the point carries a usable stop loss price.
func (p SignalPoint) HasStopLoss() bool {
	return !math.IsNaN(p.StopLoss)
}

// SignalSeries is an ordered-by-day sequence of signal points for one symbol
// with O(1) day lookup.
type SignalSeries struct {
	Symbol string

	points []SignalPoint
	index  map[Day]int
}

// NewSignalSeries builds a series from points. Points are sorted by day
// ascending; a later point for the same day replaces the earlier one.
func NewSignalSeries(symbol string, points []SignalPoint) *SignalSeries {
	sorted := make([]SignalPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Day.Before(sorted[j].Day) })

	s := &SignalSeries{
		Symbol: symbol,
		points: make([]SignalPoint, 0, len(sorted)),
		index:  make(map[Day]int, len(sorted)),
	}
	for _, p := range sorted {
		if i, exists := s.index[p.Day]; exists {
			s.points[i] = p
			continue
		}
		s.index[p.Day] = len(s.points)
		s.points = append(s.points, p)
	}
	return s
}

// At returns the point for the given day.
func (s *SignalSeries) At(d Day) (SignalPoint, bool) {
	i, ok := s.index[d]
	if !ok {
		return SignalPoint{}, false
	}
	return s.points[i], true
}

// PriceAt returns the price at or before the given day, walking back through
// the series. Used to mark-to-market a holding on days the symbol has no bar.
// Returns false only when no bar exists at or before d.
func (s *SignalSeries) PriceAt(d Day, label string) (float64, bool) {
	for i := len(s.points) - 1; i >= 0; i-- {
		if !s.points[i].Day.After(d) {
			v, ok := s.points[i].Prices[label]
			return v, ok
		}
	}
	return 0, false
}

// Days returns the trading days of the series in ascending order.
func (s *SignalSeries) Days() []Day {
	days := make([]Day, len(s.points))
	for i, p := range s.points {
		days[i] = p.Day
	}
	return days
}

// Len returns the number of trading days in the series.
func (s *SignalSeries) Len() int { return len(s.points) }
