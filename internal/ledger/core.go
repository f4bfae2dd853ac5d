// Package ledger implements the pairwise debt algebra shared by the
// in-memory Core (used directly by unit tests and by Recompute's replay
// buffer) and by the BalanceStore-backed mutation path in ledgerservice.
// Both apply the same AddDebtPlan, so the simplification rule that keeps
// N1 (no mutual debt) true lives in exactly one place.
package ledger

import (
	"errors"
	"sync"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

var (
	ErrSelfDebt            = errors.New("ledger: debtor and creditor must differ")
	ErrNonPositiveAmount   = errors.New("ledger: amount must be positive")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance to settle")
)

// AddDebtPlan is the result of folding a new debit of `delta` from debtor to
// creditor into whatever the creditor already owed the debtor (`reverse`).
// It is the one place the mutual-debt simplification rule (N1) is decided.
type AddDebtPlan struct {
	// NewReverse is what balances[creditor][debtor] should become.
	NewReverse money.Money
	// DeleteReverse is true when NewReverse is zero and the row should be
	// removed rather than stored as zero (N2).
	DeleteReverse bool
	// ForwardIncrement is the amount to add to balances[debtor][creditor].
	ForwardIncrement money.Money
}

// PlanAddDebt computes the simplification plan for adding delta (> 0) of
// debt from debtor to creditor, given the creditor's current reverse debt
// to the debtor.
func PlanAddDebt(reverse, delta money.Money) AddDebtPlan {
	if reverse.Cmp(delta) >= 0 {
		newReverse := reverse.Sub(delta)
		return AddDebtPlan{NewReverse: newReverse, DeleteReverse: newReverse.IsZero()}
	}
	return AddDebtPlan{
		NewReverse:       0,
		DeleteReverse:    reverse.IsPositive(),
		ForwardIncrement: delta.Sub(reverse),
	}
}

// Core is a pure, in-memory pairwise ledger: balances[debtor][creditor] is
// always > 0 when present, and never both balances[a][b] and balances[b][a]
// are present at once (N1, N2).
type Core struct {
	mu       sync.Mutex
	balances map[ids.UserID]map[ids.UserID]money.Money
}

// NewCore returns an empty ledger.
func NewCore() *Core {
	return &Core{balances: make(map[ids.UserID]map[ids.UserID]money.Money)}
}

func (c *Core) get(debtor, creditor ids.UserID) money.Money {
	row, ok := c.balances[debtor]
	if !ok {
		return 0
	}
	return row[creditor]
}

func (c *Core) set(debtor, creditor ids.UserID, amount money.Money) {
	if amount.IsZero() {
		if row, ok := c.balances[debtor]; ok {
			delete(row, creditor)
			if len(row) == 0 {
				delete(c.balances, debtor)
			}
		}
		return
	}
	row, ok := c.balances[debtor]
	if !ok {
		row = make(map[ids.UserID]money.Money)
		c.balances[debtor] = row
	}
	row[creditor] = amount
}

// AddDebt folds a new debit of delta from debtor to creditor into the
// ledger, applying PlanAddDebt's simplification.
func (c *Core) AddDebt(debtor, creditor ids.UserID, delta money.Money) error {
	if debtor == creditor {
		return ErrSelfDebt
	}
	if !delta.IsPositive() {
		return ErrNonPositiveAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	reverse := c.get(creditor, debtor)
	plan := PlanAddDebt(reverse, delta)

	if plan.DeleteReverse || plan.NewReverse.IsZero() {
		c.set(creditor, debtor, 0)
	} else {
		c.set(creditor, debtor, plan.NewReverse)
	}
	if plan.ForwardIncrement.IsPositive() {
		c.set(debtor, creditor, c.get(debtor, creditor).Add(plan.ForwardIncrement))
	}
	return nil
}

// SettleDebt decrements balances[debtor][creditor] by delta, deleting the
// row if it reaches zero. Fails if the pair doesn't owe at least delta.
func (c *Core) SettleDebt(debtor, creditor ids.UserID, delta money.Money) error {
	if debtor == creditor {
		return ErrSelfDebt
	}
	if !delta.IsPositive() {
		return ErrNonPositiveAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.get(debtor, creditor)
	if current.Cmp(delta) < 0 {
		return ErrInsufficientBalance
	}
	c.set(debtor, creditor, current.Sub(delta))
	return nil
}

// NetBalance returns balances[debtor][creditor].
func (c *Core) NetBalance(debtor, creditor ids.UserID) money.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(debtor, creditor)
}

// UserOwes returns everything u owes, keyed by creditor.
func (c *Core) UserOwes(u ids.UserID) map[ids.UserID]money.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[ids.UserID]money.Money)
	for creditor, amt := range c.balances[u] {
		out[creditor] = amt
	}
	return out
}

// UserOwed returns everything owed to u, keyed by debtor.
func (c *Core) UserOwed(u ids.UserID) map[ids.UserID]money.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[ids.UserID]money.Money)
	for debtor, row := range c.balances {
		if amt, ok := row[u]; ok {
			out[debtor] = amt
		}
	}
	return out
}

// Snapshot returns a defensive copy of the full balances map, debtor -> creditor -> amount.
func (c *Core) Snapshot() map[ids.UserID]map[ids.UserID]money.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[ids.UserID]map[ids.UserID]money.Money, len(c.balances))
	for debtor, row := range c.balances {
		r := make(map[ids.UserID]money.Money, len(row))
		for creditor, amt := range row {
			r[creditor] = amt
		}
		out[debtor] = r
	}
	return out
}
