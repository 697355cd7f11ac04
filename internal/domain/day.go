package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DayFormat is the wire format for trading days (ISO-8601 date).
const DayFormat = "2006-01-02"

// Day represents a trading day with calendar-day granularity.
// It is comparable and usable as a map key.
type Day struct {
	Year  int
	Month time.Month
	Date  int // day of month
}

// NewDay returns a normalized Day for the given year, month and day.
func NewDay(year int, month time.Month, day int) Day {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Day{Year: y, Month: m, Date: d}
}

// ParseDay parses a day in DayFormat.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Date: d}, nil
}

// Time returns the day as a time.Time at midnight UTC.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, time.UTC)
}

// String formats the day in DayFormat.
func (d Day) String() string { return d.Time().Format(DayFormat) }

// IsZero returns true if the day is the zero value.
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Date == 0
}

// Before reports whether d is strictly before other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Date < other.Date
}

// After reports whether d is strictly after other.
func (d Day) After(other Day) bool { return other.Before(d) }

// MarshalJSON encodes the day as a DayFormat string.
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the day from a DayFormat string.
func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	day, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = day
	return nil
}

// SortDays sorts days ascending in place and returns the slice.
func SortDays(days []Day) []Day {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
