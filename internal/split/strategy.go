// Package split implements the SplitCalculator: given an expense amount, a
// split mode, and a set of participants, it computes how much each non-payer
// participant owes. Modeled as a Strategy + Factory pair, the same shape the
// rest of this codebase uses for pluggable per-request behavior.
package split

import (
	"errors"
	"fmt"
	"sort"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// Mode identifies a split strategy.
type Mode string

const (
	ModeEqual      Mode = "EQUAL"
	ModeExact      Mode = "EXACT"
	ModePercentage Mode = "PERCENTAGE"
)

// BasisPointsTotal is the full 100% expressed in basis points.
const BasisPointsTotal = 10000

// Participant is one entry in the split request. Which fields are populated
// depends on Mode: EXACT reads ExactAmount, PERCENTAGE reads PercentBp,
// EQUAL reads neither.
type Participant struct {
	UserID      ids.UserID
	ExactAmount money.Money
	PercentBp   int
}

// Share is a computed per-debtor amount.
type Share struct {
	UserID ids.UserID
	Amount money.Money
}

var (
	ErrNoParticipants    = errors.New("invalid_split: at least one participant is required")
	ErrNegativeAmount    = errors.New("invalid_split: amounts cannot be negative")
	ErrExactExceedsTotal = errors.New("invalid_split: exact amounts exceed total amount")
	ErrPercentageExceeds = errors.New("invalid_split: percentages exceed 10000 basis points")
	ErrPercentageRange   = errors.New("invalid_split: percentage must be within [0, 10000] basis points")
	ErrUnknownMode       = errors.New("invalid_split: unknown split mode")
)

// Strategy computes per-debtor shares for one split mode.
type Strategy interface {
	Mode() Mode
	Calculate(amount money.Money, payer ids.UserID, participants []Participant) ([]Share, error)
}

// Factory creates a Strategy for a requested Mode.
type Factory struct{}

// NewFactory returns a new split strategy factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for mode.
func (f *Factory) Create(mode Mode) (Strategy, error) {
	switch mode {
	case ModeEqual:
		return equalStrategy{}, nil
	case ModeExact:
		return exactStrategy{}, nil
	case ModePercentage:
		return percentageStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

// debtors returns participants other than the payer, sorted by UserID
// ascending, since every remainder-distribution rule below operates on
// debtors in that deterministic order.
func debtors(payer ids.UserID, participants []Participant) []Participant {
	out := make([]Participant, 0, len(participants))
	for _, p := range participants {
		if p.UserID != payer {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// distributeRemainder adds one minor unit to each of the first `remainder`
// shares, in the order they're given (callers pass debtor-sorted shares).
func distributeRemainder(shares []Share, remainder int) {
	for i := 0; i < remainder && i < len(shares); i++ {
		shares[i].Amount += 1
	}
}
