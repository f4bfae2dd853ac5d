package expense

import (
	"time"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
	"github.com/splitcore/settle/internal/split"
)

// Participant is one entry of an expense's participant list, as supplied
// by the caller. ExactAmount/PercentBp are only meaningful for the
// matching SplitMode.
type Participant struct {
	UserID      ids.UserID   `json:"user_id"`
	ExactAmount *money.Money `json:"exact_amount,omitempty"`
	PercentBp   *int         `json:"percent_bp,omitempty"`
}

// Split is one derived debt from an expense: userID owes Amount to the
// expense's payer. Never contains the payer; amount is always positive.
type Split struct {
	UserID ids.UserID  `json:"user_id"`
	Amount money.Money `json:"amount"`
}

// Expense is an immutable record of a posted expense. Once created, an
// expense and its derived splits never change; correcting a mistake means
// posting a new expense (or, for group-wide repair, Recompute).
type Expense struct {
	ID           int64        `json:"id"`
	Scope        ids.ScopeID  `json:"scope"`
	PayerID      ids.UserID   `json:"payer_id"`
	Description  string       `json:"description"`
	Amount       money.Money  `json:"amount"`
	SplitMode    split.Mode   `json:"split_mode"`
	Participants []Participant `json:"participants"`
	Splits       []Split      `json:"splits"`
	Date         time.Time    `json:"date"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ToSplitParticipants converts the registry's stored participants into the
// split package's Participant type for recomputation (e.g. by Recompute).
func ToSplitParticipants(participants []Participant) []split.Participant {
	out := make([]split.Participant, len(participants))
	for i, p := range participants {
		sp := split.Participant{UserID: p.UserID}
		if p.ExactAmount != nil {
			sp.ExactAmount = *p.ExactAmount
		}
		if p.PercentBp != nil {
			sp.PercentBp = *p.PercentBp
		}
		out[i] = sp
	}
	return out
}
