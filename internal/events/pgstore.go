package events

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/pagination"
)

// PgStore is the Postgres-backed Store. Schema (logical):
//
//	events(id uuid, type text, user_id bigint, scope text, entity_id text,
//	       payload jsonb, created_at timestamptz, created_at_ns bigint,
//	       unique(type, entity_id, created_at_ns))
type PgStore struct {
	db *sql.DB
}

// NewPgStore wraps an open Postgres connection pool.
func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Append(ctx context.Context, e Event) error {
	const query = `
		INSERT INTO events (id, type, user_id, scope, entity_id, payload, created_at, created_at_ns)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (type, entity_id, created_at_ns) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, string(e.Type), int64(e.UserID), string(e.Scope), e.EntityID, e.Payload, e.CreatedAt, e.CreatedAtNs)
	if err != nil {
		return fmt.Errorf("events: append: %w", err)
	}
	return nil
}

func (s *PgStore) ListByUser(ctx context.Context, userID ids.UserID, cursor *pagination.Cursor, limit int) ([]Event, bool, error) {
	query := `
		SELECT id, type, user_id, scope, entity_id, payload, created_at, created_at_ns
		FROM events
		WHERE user_id = $1
	`
	args := []any{int64(userID)}
	if cursor != nil {
		query += fmt.Sprintf(` AND (created_at_ns < $%d OR (created_at_ns = $%d AND id < $%d))`,
			len(args)+1, len(args)+1, len(args)+2)
		args = append(args, cursor.SortValue, cursor.ID)
	}
	query += fmt.Sprintf(` ORDER BY created_at_ns DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("events: list by user: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var typ, scope string
		var uid int64
		if err := rows.Scan(&e.ID, &typ, &uid, &scope, &e.EntityID, &e.Payload, &e.CreatedAt, &e.CreatedAtNs); err != nil {
			return nil, false, fmt.Errorf("events: scan row: %w", err)
		}
		e.Type = Type(typ)
		e.UserID = ids.UserID(uid)
		e.Scope = ids.ScopeID(scope)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, hasMore, nil
}
