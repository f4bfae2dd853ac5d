package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/splitcore/settle/internal/ids"
)

// Repository persists Settlement receipts. It never mutates a balance row —
// LedgerService.Settle does that against BalanceStore first and only calls
// Create once that mutation has committed.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a settlement receipt and returns it with its assigned ID
// and timestamp.
func (r *Repository) Create(ctx context.Context, s *Settlement) (*Settlement, error) {
	query := `
		INSERT INTO settlements (scope, payer_id, receiver_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, s.Scope, s.PayerID, s.ReceiverID, s.Amount).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("settlement: create: %w", err)
	}
	return s, nil
}

// GetByID retrieves a settlement receipt by its ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	query := `SELECT id, scope, payer_id, receiver_id, amount, created_at FROM settlements WHERE id = $1`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Scope, &s.PayerID, &s.ReceiverID, &s.Amount, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("settlement: get by id: %w", err)
	}
	return s, nil
}

// ListByUser retrieves settlement receipts where userID was either the
// payer or the receiver, most recent first.
func (r *Repository) ListByUser(ctx context.Context, userID ids.UserID, limit, offset int) ([]*Settlement, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM settlements WHERE payer_id = $1 OR receiver_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("settlement: count by user: %w", err)
	}

	query := `
		SELECT id, scope, payer_id, receiver_id, amount, created_at
		FROM settlements
		WHERE payer_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("settlement: list by user: %w", err)
	}
	defer rows.Close()

	var out []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(&s.ID, &s.Scope, &s.PayerID, &s.ReceiverID, &s.Amount, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("settlement: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, total, nil
}

// ListByScope retrieves every settlement receipt recorded within scope,
// most recent first.
func (r *Repository) ListByScope(ctx context.Context, scope ids.ScopeID) ([]*Settlement, error) {
	query := `
		SELECT id, scope, payer_id, receiver_id, amount, created_at
		FROM settlements
		WHERE scope = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("settlement: list by scope: %w", err)
	}
	defer rows.Close()

	var out []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(&s.ID, &s.Scope, &s.PayerID, &s.ReceiverID, &s.Amount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("settlement: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}
