package user

import (
	"time"

	"github.com/splitcore/settle/internal/ids"
)

// User is a ledger participant's profile. ids.UserID is the same
// identifier BalanceStore, SplitCalculator, and every other component
// key their data on.
type User struct {
	ID        ids.UserID `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
