package split

import (
	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// percentageStrategy splits by basis points (0-10000) rather than float
// percentages, so there is no floating-point drift to correct for. Any
// basis points not assigned to a debtor - including the payer's own share
// and any basis points left unassigned - are absorbed by the payer.
type percentageStrategy struct{}

func (percentageStrategy) Mode() Mode { return ModePercentage }

func (percentageStrategy) Calculate(amount money.Money, payer ids.UserID, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var totalBp int
	for _, p := range participants {
		if p.PercentBp < 0 || p.PercentBp > BasisPointsTotal {
			return nil, ErrPercentageRange
		}
		totalBp += p.PercentBp
	}
	if totalBp > BasisPointsTotal {
		return nil, ErrPercentageExceeds
	}

	debs := debtors(payer, participants)
	if len(debs) == 0 {
		return []Share{}, nil
	}

	shares := make([]Share, len(debs))
	var debtorsBp int
	var flooredSum money.Money
	for i, d := range debs {
		shares[i] = Share{UserID: d.UserID, Amount: amount.MulBp(d.PercentBp)}
		debtorsBp += d.PercentBp
		flooredSum += shares[i].Amount
	}

	// The exact amount debtors should owe in aggregate, computed the same
	// way EQUAL computes shares, may exceed the sum of individually floored
	// shares by a few cents; distribute those to the first debtors by
	// UserID so Sum(shares) never drifts above what the percentages imply.
	exactDebtorTotal := amount.MulBp(debtorsBp)
	remainder := int(exactDebtorTotal - flooredSum)
	distributeRemainder(shares, remainder)

	return shares, nil
}
