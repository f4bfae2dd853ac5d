package split

import (
	"sort"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// equalStrategy divides the amount evenly among all participants, including
// the payer in the denominator (the payer already covered their own share
// by paying). Remainder cents go one each to the first N participants by
// ascending UserID, payer included; a cent assigned to the payer is not
// emitted as a share.
type equalStrategy struct{}

func (equalStrategy) Mode() Mode { return ModeEqual }

func (equalStrategy) Calculate(amount money.Money, payer ids.UserID, participants []Participant) ([]Share, error) {
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

	n := len(participants)
	share, remainder := amount.DivEqual(n)

	shares := make([]Share, len(debs))
	for i, d := range debs {
		shares[i] = Share{UserID: d.UserID, Amount: share}
	}

	// The remainder is allocated across all n participants in UserID order,
	// including the payer; only the cents landing on a debtor are emitted
	// here (a cent landing on the payer simply isn't owed to anyone).
	allByID := make([]ids.UserID, n)
	for i, p := range participants {
		allByID[i] = p.UserID
	}
	sort.Slice(allByID, func(i, j int) bool { return allByID[i] < allByID[j] })

	debtorOwesExtra := make(map[ids.UserID]bool, remainder)
	for i := 0; i < remainder; i++ {
		debtorOwesExtra[allByID[i]] = true
	}
	for i := range shares {
		if debtorOwesExtra[shares[i].UserID] {
			shares[i].Amount += 1
		}
	}

	return shares, nil
}
