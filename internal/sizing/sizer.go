// Package sizing implements the pluggable position-sizing policies that turn
// entry candidates and available cash into executable fills.
package sizing

import (
	"log"
	"math/rand"

	"portfolio-backtest-lab/internal/domain"
	"portfolio-backtest-lab/internal/fees"
)

// Sizer decides how much and of which shares to buy. Implementations never
// return a zero-share fill; candidates that cannot be afforded are skipped.
// The returned order is a commitment: the engine applies fills sequentially,
// so later fills may depend on the cash consumed by earlier ones.
type Sizer interface {
	// DecideWhatToBuy returns the ordered fills to execute given available
	// cash, the capital reference used by percentage-based sizers, and the
	// day's entry candidates.
	DecideWhatToBuy(availableMoney, capital float64, candidates []domain.Candidate) ([]domain.Fill, error)

	// Name returns the sizer identifier.
	Name() string
}

// SortType determines candidate priority order before allocation, hence
// which candidates get funded first when capital is scarce.
type SortType string

// Sort type constants.
const (
	SortAlphabetically SortType = "alphabetically"
	SortRandom         SortType = "random"
	SortCheapest       SortType = "cheapest"
	SortExpensive      SortType = "expensive"
)

// Options carries the configuration shared by all sizer variants.
type Options struct {
	Fees     fees.Model
	SortType SortType
	Rand     *rand.Rand  // used only by SortRandom; nil means time-seeded
	Logger   *log.Logger // decision logging; nil discards
}

// DefaultOptions returns Options with the default fee model and
// alphabetical candidate ordering.
func DefaultOptions() Options {
	return Options{
		Fees:     fees.DefaultModel(),
		SortType: SortAlphabetically,
	}
}
