// Package settlement stores the audit/receipt row LedgerService.Settle
// writes once its BalanceStore mutation commits. Unlike the
// pending/paid/confirmed approval workflow this package originally
// implemented, there is no gate here: by the time a Settlement exists, the
// debt is already paid down.
package settlement

import (
	"time"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// Settlement is an immutable receipt: debtor paid creditor amount within
// scope, recorded after the fact.
type Settlement struct {
	ID         int64       `json:"id"`
	Scope      ids.ScopeID `json:"scope"`
	PayerID    ids.UserID  `json:"payer_id"`
	ReceiverID ids.UserID  `json:"receiver_id"`
	Amount     money.Money `json:"amount"`
	CreatedAt  time.Time   `json:"created_at"`
}
