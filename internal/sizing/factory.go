package sizing

import (
	"errors"
	"log"
	"math/rand"

	"portfolio-backtest-lab/internal/fees"
)

// Sizer type constants.
const (
	SizerMaxFirstEncountered = "MAX_FIRST_ENCOUNTERED"
	SizerFixedCapitalPerc    = "FIXED_CAPITAL_PERC"
	SizerPercentageRisk      = "PERCENTAGE_RISK"
)

// Factory and input errors.
var (
	ErrUnknownSizerType   = errors.New("unknown sizer type")
	ErrMissingCapitalPerc = errors.New("FIXED_CAPITAL_PERC requires CapitalPerc")
	ErrMissingPercRisk    = errors.New("PERCENTAGE_RISK requires PercRisk")
	ErrMissingStopLoss    = errors.New("candidate has no stop loss, cannot size by percentage risk")
	ErrInvalidStopLoss    = errors.New("candidate stop loss equals price, per-share risk is zero")
)

// Config selects and parameterizes a sizer variant.
type Config struct {
	SizerType string
	FeePerc   float64
	MinFee    float64
	SortType  SortType

	// Variant parameters; required per sizer type.
	CapitalPerc *float64 // FIXED_CAPITAL_PERC
	PercRisk    *float64 // PERCENTAGE_RISK
}

// DefaultConfig returns a Config for the all-in sizer with default fees and
// alphabetical candidate ordering.
func DefaultConfig() Config {
	return Config{
		SizerType: SizerMaxFirstEncountered,
		FeePerc:   fees.DefaultFeePerc,
		MinFee:    fees.DefaultMinFee,
		SortType:  SortAlphabetically,
	}
}

// FromConfig creates a Sizer from Config. Validates required parameters per
// sizer type and returns clear errors for missing ones. The rand source is
// used only by SortRandom; the logger may be nil.
func FromConfig(cfg Config, rng *rand.Rand, logger *log.Logger) (Sizer, error) {
	opts := Options{
		Fees:     fees.Model{FeePerc: cfg.FeePerc, MinFee: cfg.MinFee},
		SortType: cfg.SortType,
		Rand:     rng,
		Logger:   logger,
	}

	switch cfg.SizerType {
	case SizerMaxFirstEncountered:
		return NewMaxFirstEncountered(opts), nil
	case SizerFixedCapitalPerc:
		if cfg.CapitalPerc == nil {
			return nil, ErrMissingCapitalPerc
		}
		return NewFixedCapitalPerc(*cfg.CapitalPerc, opts), nil
	case SizerPercentageRisk:
		if cfg.PercRisk == nil {
			return nil, ErrMissingPercRisk
		}
		return NewPercentageRisk(*cfg.PercRisk, opts), nil
	default:
		return nil, ErrUnknownSizerType
	}
}
