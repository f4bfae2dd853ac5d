package events

import (
	"context"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/pagination"
)

// Store persists Events. Implementations must be idempotent on the
// natural key (Type, EntityID, CreatedAtNs) so an at-least-once JobRunner
// redelivery never double-inserts.
type Store interface {
	Append(ctx context.Context, e Event) error
	// ListByUser returns one page of userID's events, newest first. cursor
	// is nil for the first page; hasMore reports whether another page
	// follows.
	ListByUser(ctx context.Context, userID ids.UserID, cursor *pagination.Cursor, limit int) ([]Event, bool, error)
}
