// Package signalio loads signal series from CSV files.
//
// Each file holds one symbol: a date column, one or more price columns, the
// four entry/exit flag columns and an optional stop_loss column. Column order
// is free; unknown columns are treated as extra price labels.
package signalio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"portfolio-backtest-lab/internal/domain"
)

// Loader errors.
var (
	ErrMissingDateColumn = errors.New("signalio: missing date column")
	ErrNoPriceColumns    = errors.New("signalio: no price columns")
)

// Reserved column names; everything else in the header is a price label.
const (
	colDate       = "date"
	colEntryLong  = "entry_long"
	colExitLong   = "exit_long"
	colEntryShort = "entry_short"
	colExitShort  = "exit_short"
	colStopLoss   = "stop_loss"
)

// Load parses one symbol's signal series from r. Files saved by spreadsheet
// tools often carry a BOM, so the reader is decoded with a BOM override
// before CSV parsing.
func Load(r io.Reader, symbol string) (*domain.SignalSeries, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("signalio: read header for %s: %w", symbol, err)
	}

	cols := make(map[string]int, len(header))
	var priceLabels []string
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		cols[name] = i
		switch name {
		case colDate, colEntryLong, colExitLong, colEntryShort, colExitShort, colStopLoss:
		default:
			priceLabels = append(priceLabels, name)
		}
	}
	if _, ok := cols[colDate]; !ok {
		return nil, fmt.Errorf("%w in %s", ErrMissingDateColumn, symbol)
	}
	if len(priceLabels) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPriceColumns, symbol)
	}

	var points []domain.SignalPoint
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("signalio: %s line %d: %w", symbol, line, err)
		}

		point, err := parseRow(record, cols, priceLabels)
		if err != nil {
			return nil, fmt.Errorf("signalio: %s line %d: %w", symbol, line, err)
		}
		points = append(points, point)
	}

	return domain.NewSignalSeries(symbol, points), nil
}

// LoadFile loads one series from path; the symbol is the file name without
// its extension, upper-cased.
func LoadFile(path string) (*domain.SignalSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("signalio: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	symbol := strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
	return Load(f, symbol)
}

// LoadDir loads every *.csv file in dir into a symbol-keyed series map.
func LoadDir(dir string) (map[string]*domain.SignalSeries, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("signalio: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("signalio: no csv files in %s", dir)
	}

	signals := make(map[string]*domain.SignalSeries, len(paths))
	for _, path := range paths {
		series, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		signals[series.Symbol] = series
	}
	return signals, nil
}

func parseRow(record []string, cols map[string]int, priceLabels []string) (domain.SignalPoint, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	day, err := domain.ParseDay(field(colDate))
	if err != nil {
		return domain.SignalPoint{}, err
	}

	prices := make(map[string]float64, len(priceLabels))
	for _, label := range priceLabels {
		raw := field(label)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.SignalPoint{}, fmt.Errorf("price %q: %w", label, err)
		}
		prices[label] = v
	}

	point := domain.SignalPoint{Day: day, Prices: prices, StopLoss: math.NaN()}

	if point.EntryLong, err = parseFlag(field(colEntryLong)); err != nil {
		return domain.SignalPoint{}, fmt.Errorf("entry_long: %w", err)
	}
	if point.ExitLong, err = parseFlag(field(colExitLong)); err != nil {
		return domain.SignalPoint{}, fmt.Errorf("exit_long: %w", err)
	}
	if point.EntryShort, err = parseFlag(field(colEntryShort)); err != nil {
		return domain.SignalPoint{}, fmt.Errorf("entry_short: %w", err)
	}
	if point.ExitShort, err = parseFlag(field(colExitShort)); err != nil {
		return domain.SignalPoint{}, fmt.Errorf("exit_short: %w", err)
	}

	if raw := field(colStopLoss); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.SignalPoint{}, fmt.Errorf("stop_loss: %w", err)
		}
		point.StopLoss = v
	}

	return point, nil
}

// parseFlag accepts 0/1 and the strconv boolean spellings; empty means false.
func parseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, err
	}
	return v, nil
}
