package events

import (
	"sort"
	"sync"

	"context"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/pagination"
)

type naturalKey struct {
	typ         Type
	entityID    string
	createdAtNs int64
}

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	mu   sync.Mutex
	seen map[naturalKey]bool
	rows []Event
}

// NewMemStore returns an empty in-memory event log.
func NewMemStore() *MemStore {
	return &MemStore{seen: make(map[naturalKey]bool)}
}

func (s *MemStore) Append(ctx context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := naturalKey{e.Type, e.EntityID, e.CreatedAtNs}
	if s.seen[key] {
		return nil
	}
	s.seen[key] = true
	s.rows = append(s.rows, e)
	return nil
}

func (s *MemStore) ListByUser(ctx context.Context, userID ids.UserID, cursor *pagination.Cursor, limit int) ([]Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, e := range s.rows {
		if e.UserID != userID {
			continue
		}
		if cursor != nil && !before(e, *cursor) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtNs != out[j].CreatedAtNs {
			return out[i].CreatedAtNs > out[j].CreatedAtNs
		}
		return out[i].ID > out[j].ID
	})

	hasMore := limit > 0 && len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, hasMore, nil
}

// before reports whether e sorts strictly after cursor in the DESC
// (CreatedAtNs, ID) ordering ListByUser scans in — i.e. whether e belongs
// on the page that follows cursor.
func before(e Event, cursor pagination.Cursor) bool {
	if e.CreatedAtNs != cursor.SortValue {
		return e.CreatedAtNs < cursor.SortValue
	}
	return e.ID < cursor.ID
}
