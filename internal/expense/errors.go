package expense

import (
	"errors"
	"net/http"

	"github.com/splitcore/settle/internal/lockservice"
	"github.com/splitcore/settle/internal/split"
	"github.com/splitcore/settle/pkg/response"
)

// ErrNotMember is returned by PostExpense when the payer isn't a member of
// a group scope.
var ErrNotMember = errors.New("expense: payer is not a member of this scope")

// writeDomainError maps an error from PostExpense onto the §7 slug
// taxonomy. Anything unrecognized is treated as a store failure, since
// that's the only other thing postExpense's write path can fail on.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, split.ErrNoParticipants),
		errors.Is(err, split.ErrNegativeAmount),
		errors.Is(err, split.ErrExactExceedsTotal),
		errors.Is(err, split.ErrPercentageExceeds),
		errors.Is(err, split.ErrPercentageRange),
		errors.Is(err, split.ErrUnknownMode):
		response.InvalidSplit(w, err.Error())
	case errors.Is(err, ErrNotMember):
		response.NotMember(w, err.Error())
	case errors.Is(err, lockservice.ErrLockTimeout):
		response.LockTimeout(w, 0)
	default:
		response.StoreUnavailable(w, "the ledger is temporarily unavailable, please retry")
	}
}
