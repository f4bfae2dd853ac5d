package aggregation

import (
	"context"
	"testing"

	"github.com/splitcore/settle/internal/balance"
	"github.com/splitcore/settle/internal/cache"
	"github.com/splitcore/settle/internal/ids"
)

func TestGetUserViewCollapsesCounterparties(t *testing.T) {
	ctx := context.Background()
	store := balance.NewMemStore()
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.GroupScope(7), 300, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 3, 1, ids.DirectScope, 200, balance.Increment)

	svc := New(store, cache.NewMemCache())
	view, err := svc.GetUserView(ctx, 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(view.Owes) != 1 || view.Owes[0].Counterparty != 2 || view.Owes[0].Amount != 800 {
		t.Fatalf("expected owes[2]=800 (500+300 summed across scopes), got %+v", view.Owes)
	}
	if len(view.Owed) != 1 || view.Owed[0].Counterparty != 3 || view.Owed[0].Amount != 200 {
		t.Fatalf("got %+v", view.Owed)
	}
	if view.TotalOwes != 800 || view.TotalOwed != 200 || view.NetBalance != -600 {
		t.Fatalf("got totals owes=%d owed=%d net=%d", view.TotalOwes, view.TotalOwed, view.NetBalance)
	}
}

func TestGetScopeMatrix(t *testing.T) {
	ctx := context.Background()
	store := balance.NewMemStore()
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.GroupScope(7), 500, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 3, 2, ids.GroupScope(7), 900, balance.Increment)
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 100, balance.Increment)

	svc := New(store, cache.NewMemCache())
	matrix, err := svc.GetScopeMatrix(ctx, ids.GroupScope(7), false)
	if err != nil {
		t.Fatal(err)
	}
	if matrix[1][2] != 500 || matrix[3][2] != 900 {
		t.Fatalf("got %+v", matrix)
	}
	if _, ok := matrix[1][2]; !ok {
		t.Fatal("expected entry present")
	}
}

func TestGetUserViewFreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	store := balance.NewMemStore()
	svc := New(store, cache.NewMemCache())

	// Prime the cache with an empty view.
	if _, err := svc.GetUserView(ctx, 1, false); err != nil {
		t.Fatal(err)
	}

	// Mutate after caching.
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, balance.Increment)

	cached, err := svc.GetUserView(ctx, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached.Owes) != 0 {
		t.Fatalf("expected stale cached view to still show no debt, got %+v", cached.Owes)
	}

	fresh, err := svc.GetUserView(ctx, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh.Owes) != 1 || fresh.Owes[0].Amount != 500 {
		t.Fatalf("expected fresh=true to bypass cache, got %+v", fresh.Owes)
	}
}

func TestInvalidateUserEvictsCache(t *testing.T) {
	ctx := context.Background()
	store := balance.NewMemStore()
	svc := New(store, cache.NewMemCache())

	_, _ = svc.GetUserView(ctx, 1, false)
	_, _ = store.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, balance.Increment)

	if err := svc.InvalidateUser(ctx, 1); err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetUserView(ctx, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Owes) != 1 {
		t.Fatalf("expected invalidation to force recompute, got %+v", view.Owes)
	}
}
