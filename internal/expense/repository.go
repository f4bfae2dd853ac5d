package expense

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
	"github.com/splitcore/settle/internal/pagination"
	"github.com/splitcore/settle/internal/split"
)

// Repository is the ExpenseRegistry: a durable, append-only store of
// Expenses and their derived splits. Nothing here ever updates a row;
// correcting a posted expense means posting a new one.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open Postgres connection pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create persists an expense and its derived splits in one transaction.
func (r *Repository) Create(ctx context.Context, e *Expense) (*Expense, error) {
	participantsJSON, err := json.Marshal(e.Participants)
	if err != nil {
		return nil, fmt.Errorf("expense: marshal participants: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("expense: begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertExpense = `
		INSERT INTO expenses (scope, payer_id, description, amount, split_mode, participants, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insertExpense,
		string(e.Scope), int64(e.PayerID), e.Description, int64(e.Amount), string(e.SplitMode), participantsJSON, e.Date,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("expense: insert: %w", err)
	}

	const insertSplit = `INSERT INTO expense_splits (expense_id, user_id, amount) VALUES ($1, $2, $3)`
	for _, s := range e.Splits {
		if _, err := tx.ExecContext(ctx, insertSplit, e.ID, int64(s.UserID), int64(s.Amount)); err != nil {
			return nil, fmt.Errorf("expense: insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("expense: commit: %w", err)
	}
	return e, nil
}

// GetByID fetches one expense with its splits, or nil if it doesn't exist.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	const query = `
		SELECT id, scope, payer_id, description, amount, split_mode, participants, date, created_at
		FROM expenses WHERE id = $1
	`
	e, err := r.scanOne(ctx, query, id)
	if err != nil || e == nil {
		return e, err
	}
	e.Splits, err = r.splitsFor(ctx, id)
	return e, err
}

// ListByScope returns every expense posted into scope, oldest first — the
// order Recompute replays in.
func (r *Repository) ListByScope(ctx context.Context, scope ids.ScopeID) ([]*Expense, error) {
	const query = `
		SELECT id, scope, payer_id, description, amount, split_mode, participants, date, created_at
		FROM expenses WHERE scope = $1 ORDER BY created_at ASC
	`
	return r.scanMany(ctx, query, string(scope))
}

// ListByScopePage returns one page of scope's expenses, newest first, for
// the cursor-paginated listing endpoint. Recompute relies on the
// unpaginated, oldest-first ListByScope instead, since it must replay
// expenses in insertion order.
func (r *Repository) ListByScopePage(ctx context.Context, scope ids.ScopeID, cursor *pagination.Cursor, limit int) ([]*Expense, bool, error) {
	query := `
		SELECT id, scope, payer_id, description, amount, split_mode, participants, date, created_at
		FROM expenses
		WHERE scope = $1
	`
	args := []any{string(scope)}
	if cursor != nil {
		afterID, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("expense: invalid cursor: %w", err)
		}
		query += fmt.Sprintf(` AND (created_at < to_timestamp($%d / 1e9) OR (created_at = to_timestamp($%d / 1e9) AND id < $%d))`,
			len(args)+1, len(args)+1, len(args)+2)
		args = append(args, cursor.SortValue, afterID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	out, err := r.scanMany(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, hasMore, nil
}

// ListByUser returns every expense u participated in (as payer or
// participant), newest first.
func (r *Repository) ListByUser(ctx context.Context, u ids.UserID) ([]*Expense, error) {
	const query = `
		SELECT DISTINCT e.id, e.scope, e.payer_id, e.description, e.amount, e.split_mode, e.participants, e.date, e.created_at
		FROM expenses e
		LEFT JOIN expense_splits s ON s.expense_id = e.id
		WHERE e.payer_id = $1 OR s.user_id = $1
		ORDER BY e.created_at DESC
	`
	return r.scanMany(ctx, query, int64(u))
}

func (r *Repository) scanOne(ctx context.Context, query string, args ...any) (*Expense, error) {
	e := &Expense{}
	var scope, splitMode string
	var payerID, amount int64
	var participantsJSON []byte

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &scope, &payerID, &e.Description, &amount, &splitMode, &participantsJSON, &e.Date, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("expense: scan: %w", err)
	}

	e.Scope = ids.ScopeID(scope)
	e.PayerID = ids.UserID(payerID)
	e.Amount = money.Money(amount)
	e.SplitMode = split.Mode(splitMode)
	if err := json.Unmarshal(participantsJSON, &e.Participants); err != nil {
		return nil, fmt.Errorf("expense: unmarshal participants: %w", err)
	}
	return e, nil
}

func (r *Repository) scanMany(ctx context.Context, query string, args ...any) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("expense: query: %w", err)
	}
	defer rows.Close()

	var out []*Expense
	for rows.Next() {
		e := &Expense{}
		var scope, splitMode string
		var payerID, amount int64
		var participantsJSON []byte

		if err := rows.Scan(&e.ID, &scope, &payerID, &e.Description, &amount, &splitMode, &participantsJSON, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("expense: scan row: %w", err)
		}
		e.Scope = ids.ScopeID(scope)
		e.PayerID = ids.UserID(payerID)
		e.Amount = money.Money(amount)
		e.SplitMode = split.Mode(splitMode)
		if err := json.Unmarshal(participantsJSON, &e.Participants); err != nil {
			return nil, fmt.Errorf("expense: unmarshal participants: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range out {
		e.Splits, err = r.splitsFor(ctx, e.ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repository) splitsFor(ctx context.Context, expenseID int64) ([]Split, error) {
	const query = `SELECT user_id, amount FROM expense_splits WHERE expense_id = $1 ORDER BY user_id ASC`
	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("expense: splits for: %w", err)
	}
	defer rows.Close()

	var out []Split
	for rows.Next() {
		var userID, amount int64
		if err := rows.Scan(&userID, &amount); err != nil {
			return nil, fmt.Errorf("expense: scan split: %w", err)
		}
		out = append(out, Split{UserID: ids.UserID(userID), Amount: money.Money(amount)})
	}
	return out, rows.Err()
}
