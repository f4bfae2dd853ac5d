// Package events implements EventEmitter and the append-only domain event
// log it writes to. The notification projection that reads from it lives in
// package notification.
package events

import (
	"time"

	"github.com/splitcore/settle/internal/ids"
)

// Type enumerates the domain event kinds the core emits.
type Type string

const (
	TypeExpenseAdded  Type = "expense_added"
	TypeSettlement    Type = "settlement"
	TypeGroupCreated  Type = "group_created"
	TypeGroupDeleted  Type = "group_deleted"
	TypeMemberAdded   Type = "member_added"
)

// Event is one append-only row. Payload carries the minimum identifiers
// needed to reconstruct the operation; rendering lives outside the core.
type Event struct {
	ID          string
	Type        Type
	UserID      ids.UserID
	Scope       ids.ScopeID
	EntityID    string
	Payload     []byte
	CreatedAt   time.Time
	CreatedAtNs int64
}
