package settlementplan

import (
	"context"
	"testing"

	"github.com/splitcore/settle/internal/aggregation"
	"github.com/splitcore/settle/internal/balance"
	"github.com/splitcore/settle/internal/cache"
	"github.com/splitcore/settle/internal/ids"
)

func TestPlanTwoPartyScope(t *testing.T) {
	ctx := context.Background()
	store := balance.NewMemStore()
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.GroupScope(7), 500, balance.Increment)

	planner := New(store, aggregation.New(store, cache.NewMemCache()))
	txns, err := planner.Plan(ctx, ids.GroupScope(7), []ids.UserID{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 || txns[0].From != 1 || txns[0].To != 2 || txns[0].Amount != 500 {
		t.Fatalf("got %+v", txns)
	}
}

func TestPlanThreePartyMinimizesTransactionCount(t *testing.T) {
	// 1 owes 2: 1000; 3 owes 2: 500. Net: 1=-1000, 2=+1500, 3=-500.
	// A correct minimum-cardinality plan needs exactly 2 transactions
	// (can't do it in fewer since there are 2 debtors and 1 creditor).
	ctx := context.Background()
	store := balance.NewMemStore()
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.GroupScope(1), 1000, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 3, 2, ids.GroupScope(1), 500, balance.Increment)

	planner := New(store, aggregation.New(store, cache.NewMemCache()))
	txns, err := planner.Plan(ctx, ids.GroupScope(1), []ids.UserID{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %+v", txns)
	}

	var total int64
	for _, tx := range txns {
		if tx.To != 2 {
			t.Fatalf("everyone should pay user 2, got %+v", tx)
		}
		total += int64(tx.Amount)
	}
	if total != 1500 {
		t.Fatalf("expected transactions to sum to 1500, got %d", total)
	}
}

func TestPlanCollapsesTriangle(t *testing.T) {
	// Classic triangle: 1->2: 100, 2->3: 100, 3->1: 100 nets everyone to
	// zero; the plan must be empty.
	ctx := context.Background()
	store := balance.NewMemStore()
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.GroupScope(1), 100, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 2, 3, ids.GroupScope(1), 100, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 3, 1, ids.GroupScope(1), 100, balance.Increment)

	planner := New(store, aggregation.New(store, cache.NewMemCache()))
	txns, err := planner.Plan(ctx, ids.GroupScope(1), []ids.UserID{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected fully netted triangle to need no transactions, got %+v", txns)
	}
}

func TestPlanDeterministicTieBreak(t *testing.T) {
	// Two creditors tied at the same amount; ties break by ascending
	// userId, so the lower id is matched first.
	ctx := context.Background()
	store := balance.NewMemStore()
	_, _ = store.UpsertAtomic(ctx, 1, 10, ids.GroupScope(1), 500, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 1, 20, ids.GroupScope(1), 500, balance.Increment)

	planner := New(store, aggregation.New(store, cache.NewMemCache()))
	txns1, err := planner.Plan(ctx, ids.GroupScope(1), []ids.UserID{1, 10, 20})
	if err != nil {
		t.Fatal(err)
	}
	txns2, err := planner.Plan(ctx, ids.GroupScope(1), []ids.UserID{1, 10, 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns1) != len(txns2) {
		t.Fatalf("expected deterministic output, got %+v vs %+v", txns1, txns2)
	}
	for i := range txns1 {
		if txns1[i] != txns2[i] {
			t.Fatalf("expected identical repeated runs, got %+v vs %+v", txns1, txns2)
		}
	}
	if txns1[0].To != 10 {
		t.Fatalf("expected tie broken toward lower userId first, got %+v", txns1)
	}
}

func TestPlanAllScopesNetsAcrossScopes(t *testing.T) {
	ctx := context.Background()
	store := balance.NewMemStore()
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.GroupScope(1), 500, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 2, 1, ids.DirectScope, 200, balance.Increment)

	planner := New(store, aggregation.New(store, cache.NewMemCache()))
	txns, err := planner.Plan(ctx, AllScopes, []ids.UserID{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 || txns[0].From != 1 || txns[0].To != 2 || txns[0].Amount != 300 {
		t.Fatalf("expected net 500-200=300 from 1 to 2, got %+v", txns)
	}
}
