package balance

import (
	"context"
	"testing"

	"github.com/splitcore/settle/internal/ids"
)

func TestMemStoreIncrementAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	got, err := s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, Increment)
	if err != nil {
		t.Fatal(err)
	}
	if got != 500 {
		t.Fatalf("got %d", got)
	}

	amt, err := s.GetPair(ctx, 1, 2, ids.DirectScope)
	if err != nil {
		t.Fatal(err)
	}
	if amt != 500 {
		t.Fatalf("got %d", amt)
	}
}

func TestMemStoreDecrementDeletesAtZero(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, _ = s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, Increment)
	got, err := s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, Decrement)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("got %d", got)
	}

	entries, err := s.ScanByDebtor(ctx, 1, ids.DirectScope)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("zero row should not appear in scan, got %+v", entries)
	}
}

func TestMemStoreDecrementClampsAtZero(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, _ = s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 300, Increment)
	got, err := s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, Decrement)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("decrement should clamp at zero, got %d", got)
	}
}

func TestMemStoreScansExcludeOtherScopes(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, _ = s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, Increment)
	_, _ = s.UpsertAtomic(ctx, 1, 2, ids.GroupScope(7), 700, Increment)

	direct, _ := s.ScanByDebtor(ctx, 1, ids.DirectScope)
	if len(direct) != 1 || direct[0].Amount != 500 {
		t.Fatalf("got %+v", direct)
	}

	group, _ := s.ScanByScope(ctx, ids.GroupScope(7))
	if len(group) != 1 || group[0].Amount != 700 {
		t.Fatalf("got %+v", group)
	}
}

func TestMemStoreScanByUserCoversBothSides(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, _ = s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, Increment)
	_, _ = s.UpsertAtomic(ctx, 3, 1, ids.DirectScope, 200, Increment)

	entries, err := s.ScanByUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both rows touching user 1, got %+v", entries)
	}
}

func TestMemStoreBulkReplaceSwapsScope(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, _ = s.UpsertAtomic(ctx, 1, 2, ids.GroupScope(7), 500, Increment)
	_, _ = s.UpsertAtomic(ctx, 1, 3, ids.DirectScope, 900, Increment)

	err := s.BulkReplace(ctx, ids.GroupScope(7), []Entry{
		{Debtor: 4, Creditor: 5, Scope: ids.GroupScope(7), Amount: 111},
	})
	if err != nil {
		t.Fatal(err)
	}

	scope, _ := s.ScanByScope(ctx, ids.GroupScope(7))
	if len(scope) != 1 || scope[0].Debtor != 4 || scope[0].Amount != 111 {
		t.Fatalf("got %+v", scope)
	}

	direct, _ := s.ScanByDebtor(ctx, 1, ids.DirectScope)
	if len(direct) != 1 || direct[0].Amount != 900 {
		t.Fatalf("bulk replace of one scope should not affect another, got %+v", direct)
	}
}

func TestMemStoreSetZeroDeletesRow(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, _ = s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 500, Increment)
	got, err := s.UpsertAtomic(ctx, 1, 2, ids.DirectScope, 0, Set)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("got %d", got)
	}
	entries, _ := s.ScanByDebtor(ctx, 1, ids.DirectScope)
	if len(entries) != 0 {
		t.Fatalf("expected no rows, got %+v", entries)
	}
}
