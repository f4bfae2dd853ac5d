package balance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// PgStore is the Postgres-backed Store. Schema (logical):
//
//	balances(scope text, debtor bigint, creditor bigint, amount bigint,
//	         updated_at timestamptz,
//	         unique(scope, debtor, creditor))
//	indexed on (debtor), (creditor), (scope).
//
// Rows with amount = 0 are deleted rather than stored, per N2.
type PgStore struct {
	db *sql.DB
}

// NewPgStore wraps an open Postgres connection pool.
func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) GetPair(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID) (money.Money, error) {
	const query = `SELECT amount FROM balances WHERE scope = $1 AND debtor = $2 AND creditor = $3`
	var amount int64
	err := s.db.QueryRowContext(ctx, query, string(scope), int64(debtor), int64(creditor)).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance: get pair: %w", err)
	}
	return money.Money(amount), nil
}

func (s *PgStore) UpsertAtomic(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID, delta money.Money, mode DeltaMode) (money.Money, error) {
	switch mode {
	case Increment:
		return s.upsertDelta(ctx, debtor, creditor, scope, int64(delta))
	case Decrement:
		return s.upsertClampedDecrement(ctx, debtor, creditor, scope, int64(delta))
	case Set:
		return s.set(ctx, debtor, creditor, scope, delta)
	case Delete:
		return 0, s.delete(ctx, debtor, creditor, scope)
	default:
		return 0, fmt.Errorf("balance: unknown delta mode %d", mode)
	}
}

func (s *PgStore) upsertDelta(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID, delta int64) (money.Money, error) {
	const query = `
		INSERT INTO balances (scope, debtor, creditor, amount, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (scope, debtor, creditor)
		DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = now()
		RETURNING amount
	`
	var result int64
	err := s.db.QueryRowContext(ctx, query, string(scope), int64(debtor), int64(creditor), delta).Scan(&result)
	if err != nil {
		return 0, fmt.Errorf("balance: upsert delta: %w", err)
	}
	if result == 0 {
		if err := s.delete(ctx, debtor, creditor, scope); err != nil {
			return 0, err
		}
	}
	return money.Money(result), nil
}

func (s *PgStore) upsertClampedDecrement(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID, delta int64) (money.Money, error) {
	const query = `
		UPDATE balances
		SET amount = GREATEST(amount - $4, 0), updated_at = now()
		WHERE scope = $1 AND debtor = $2 AND creditor = $3
		RETURNING amount
	`
	var result int64
	err := s.db.QueryRowContext(ctx, query, string(scope), int64(debtor), int64(creditor), delta).Scan(&result)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance: clamped decrement: %w", err)
	}
	if result == 0 {
		if err := s.delete(ctx, debtor, creditor, scope); err != nil {
			return 0, err
		}
	}
	return money.Money(result), nil
}

func (s *PgStore) set(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID, amount money.Money) (money.Money, error) {
	if amount.IsZero() {
		return 0, s.delete(ctx, debtor, creditor, scope)
	}
	const query = `
		INSERT INTO balances (scope, debtor, creditor, amount, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (scope, debtor, creditor)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query, string(scope), int64(debtor), int64(creditor), int64(amount)); err != nil {
		return 0, fmt.Errorf("balance: set: %w", err)
	}
	return amount, nil
}

func (s *PgStore) delete(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID) error {
	const query = `DELETE FROM balances WHERE scope = $1 AND debtor = $2 AND creditor = $3`
	if _, err := s.db.ExecContext(ctx, query, string(scope), int64(debtor), int64(creditor)); err != nil {
		return fmt.Errorf("balance: delete: %w", err)
	}
	return nil
}

func (s *PgStore) ScanByDebtor(ctx context.Context, debtor ids.UserID, scope ids.ScopeID) ([]Entry, error) {
	const query = `SELECT scope, debtor, creditor, amount FROM balances WHERE debtor = $1 AND scope = $2`
	return s.scan(ctx, query, int64(debtor), string(scope))
}

func (s *PgStore) ScanByCreditor(ctx context.Context, creditor ids.UserID, scope ids.ScopeID) ([]Entry, error) {
	const query = `SELECT scope, debtor, creditor, amount FROM balances WHERE creditor = $1 AND scope = $2`
	return s.scan(ctx, query, int64(creditor), string(scope))
}

func (s *PgStore) ScanByScope(ctx context.Context, scope ids.ScopeID) ([]Entry, error) {
	const query = `SELECT scope, debtor, creditor, amount FROM balances WHERE scope = $1`
	return s.scan(ctx, query, string(scope))
}

func (s *PgStore) ScanByUser(ctx context.Context, u ids.UserID) ([]Entry, error) {
	const query = `SELECT scope, debtor, creditor, amount FROM balances WHERE debtor = $1 OR creditor = $1`
	return s.scan(ctx, query, int64(u))
}

func (s *PgStore) scan(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("balance: scan: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var scope string
		var debtor, creditor, amount int64
		if err := rows.Scan(&scope, &debtor, &creditor, &amount); err != nil {
			return nil, fmt.Errorf("balance: scan row: %w", err)
		}
		e.Scope = ids.ScopeID(scope)
		e.Debtor = ids.UserID(debtor)
		e.Creditor = ids.UserID(creditor)
		e.Amount = money.Money(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}

// BulkReplace swaps in entries for scope inside one transaction, used only
// by Recompute.
func (s *PgStore) BulkReplace(ctx context.Context, scope ids.ScopeID, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("balance: bulk replace begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM balances WHERE scope = $1`, string(scope)); err != nil {
		return fmt.Errorf("balance: bulk replace clear: %w", err)
	}

	const insert = `INSERT INTO balances (scope, debtor, creditor, amount, updated_at) VALUES ($1, $2, $3, $4, now())`
	for _, e := range entries {
		if e.Amount.IsZero() {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, string(scope), int64(e.Debtor), int64(e.Creditor), int64(e.Amount)); err != nil {
			return fmt.Errorf("balance: bulk replace insert: %w", err)
		}
	}
	return tx.Commit()
}
