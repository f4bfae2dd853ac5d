package events

import (
	"context"
	"testing"
	"time"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/jobs"
)

func TestEmitPersistsViaRunner(t *testing.T) {
	runner := jobs.NewMemRunner(1)
	store := NewMemStore()
	RegisterPersister(runner, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	emitter := NewEmitter(runner)
	if err := emitter.Emit(ctx, TypeExpenseAdded, 1, ids.DirectScope, "expense:42", map[string]any{"amount": 500}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, _, _ := store.ListByUser(ctx, 1, nil, 10)
		if len(got) == 1 {
			if got[0].Type != TypeExpenseAdded || got[0].EntityID != "expense:42" {
				t.Fatalf("got %+v", got[0])
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("event was never persisted")
}

func TestMemStoreAppendIsIdempotent(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	e := Event{ID: "a", Type: TypeSettlement, UserID: 1, EntityID: "settlement:1", CreatedAtNs: 100}
	if err := store.Append(ctx, e); err != nil {
		t.Fatal(err)
	}
	// Redelivery with the same natural key must not duplicate the row.
	if err := store.Append(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, _, err := store.ListByUser(ctx, 1, nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(got))
	}
}
