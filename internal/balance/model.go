// Package balance implements the persisted BalanceStore: the single
// authoritative table of pairwise net debts, keyed by (debtor, creditor,
// scope). There is no separate in-memory ledger kept alongside it in
// production; internal/ledger.Core exists for pure algebra and tests, and
// for replaying history during Recompute.
package balance

import (
	"context"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

// Entry is one row of the balance table: debtor owes creditor Amount
// within scope. Amount is always positive; a pair with nothing outstanding
// has no row at all (N2).
type Entry struct {
	Debtor   ids.UserID
	Creditor ids.UserID
	Scope    ids.ScopeID
	Amount   money.Money
}

// DeltaMode selects how UpsertAtomic combines Delta with whatever is
// already stored for the pair.
type DeltaMode int

const (
	// Increment adds Delta to the existing amount (used by AddDebt's
	// forward leg).
	Increment DeltaMode = iota
	// Decrement subtracts Delta from the existing amount, clamped so it
	// never goes negative (used by ledgerservice.Settle).
	Decrement
	// Set replaces the existing amount outright (used by the reverse leg of
	// ledgerservice.applySplit).
	Set
	// Delete removes the row regardless of its current amount.
	Delete
)

// Store is the persistence interface every ledger mutation goes through.
// Implementations must make UpsertAtomic safe to call concurrently for the
// same pair without external locking corrupting the data, though
// ledgerservice still takes a LockService lease for cross-row atomicity
// (the addDebt/settleDebt pair of rows must move together).
type Store interface {
	// GetPair returns the current amount for (debtor, creditor, scope), or
	// zero if no row exists.
	GetPair(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID) (money.Money, error)

	// UpsertAtomic applies delta to the stored amount for the pair
	// according to mode, returning the resulting amount. A result of zero
	// must delete the row, never store a zero (N2).
	UpsertAtomic(ctx context.Context, debtor, creditor ids.UserID, scope ids.ScopeID, delta money.Money, mode DeltaMode) (money.Money, error)

	// ScanByDebtor returns every row where debtor owes someone within scope.
	ScanByDebtor(ctx context.Context, debtor ids.UserID, scope ids.ScopeID) ([]Entry, error)

	// ScanByCreditor returns every row where someone owes creditor within scope.
	ScanByCreditor(ctx context.Context, creditor ids.UserID, scope ids.ScopeID) ([]Entry, error)

	// ScanByScope returns every row in scope, used by AggregationService's
	// scope matrix and SettlementPlanner.
	ScanByScope(ctx context.Context, scope ids.ScopeID) ([]Entry, error)

	// ScanByUser returns every row touching u across all scopes, used by
	// AggregationService's user view.
	ScanByUser(ctx context.Context, u ids.UserID) ([]Entry, error)

	// BulkReplace atomically replaces every row in scope with entries,
	// used by Recompute to swap in a freshly-rebuilt scope in one step.
	BulkReplace(ctx context.Context, scope ids.ScopeID, entries []Entry) error
}
