package split

import (
	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// exactStrategy uses each debtor's specified amount verbatim. The
// difference between the total and the sum of debtor amounts is the
// payer's own share and is never emitted as a debt.
type exactStrategy struct{}

func (exactStrategy) Mode() Mode { return ModeExact }

func (exactStrategy) Calculate(amount money.Money, payer ids.UserID, participants []Participant) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	debs := debtors(payer, participants)
	if len(debs) == 0 {
		return []Share{}, nil
	}

	var total money.Money
	for _, d := range debs {
		if d.ExactAmount.IsNegative() {
			return nil, ErrNegativeAmount
		}
		total += d.ExactAmount
	}
	if total.Cmp(amount) > 0 {
		return nil, ErrExactExceedsTotal
	}

	shares := make([]Share, len(debs))
	for i, d := range debs {
		shares[i] = Share{UserID: d.UserID, Amount: d.ExactAmount}
	}
	return shares, nil
}
