package ledgerservice

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/splitcore/settle/internal/balance"
	"github.com/splitcore/settle/internal/events"
	"github.com/splitcore/settle/internal/expense"
	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/jobs"
	"github.com/splitcore/settle/internal/lockservice"
	"github.com/splitcore/settle/internal/settlement"
)

// noMembers always reports membership true; DIRECT-scope tests never
// consult it, but New requires a non-nil MembershipChecker.
type noMembers struct{}

func (noMembers) IsMember(ctx context.Context, groupID int64, userID ids.UserID) (bool, error) {
	return true, nil
}

// newTestService wires a Service whose expense repo is unused (DIRECT-scope
// Settle tests never touch it) and whose settlement repo mock is returned
// for the caller to set expectations on.
func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *balance.MemStore) {
	t.Helper()

	edb, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock expense: %v", err)
	}
	t.Cleanup(func() { edb.Close() })

	sdb, smock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock settlement: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })

	locks, err := lockservice.NewProcessService(1)
	if err != nil {
		t.Fatalf("new process lock: %v", err)
	}

	runner := jobs.NewMemRunner(1)
	emitter := events.NewEmitter(runner)
	store := balance.NewMemStore()

	svc := New(
		expense.NewRepository(edb),
		store,
		locks,
		runner,
		emitter,
		settlement.NewRepository(sdb),
		noMembers{},
		Config{LockTTL: time.Second, WaitTTL: time.Second},
	)

	return svc, smock, store
}

func TestPostExpenseSplitsEqually(t *testing.T) {
	svc, _, store := newTestService(t)

	// swap in a fresh expense repo whose mock we actually assert against
	edb, emock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer edb.Close()
	svc.expenses = expense.NewRepository(edb)

	emock.ExpectBegin()
	emock.ExpectQuery("INSERT INTO expenses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	emock.ExpectExec("INSERT INTO expense_splits").
		WithArgs(int64(1), int64(2), int64(500)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	emock.ExpectCommit()

	req := expense.CreateExpenseRequest{
		Scope:       ids.DirectScope,
		Description: "lunch",
		Amount:      1000,
		SplitMode:   "EQUAL",
		Participants: []expense.Participant{
			{UserID: 1}, {UserID: 2},
		},
	}

	got, err := svc.PostExpense(context.Background(), ids.UserID(1), req)
	if err != nil {
		t.Fatalf("PostExpense: %v", err)
	}
	if len(got.Splits) != 1 {
		t.Fatalf("expected one non-payer split, got %d", len(got.Splits))
	}

	bal, err := store.GetPair(context.Background(), ids.UserID(2), ids.UserID(1), ids.DirectScope)
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if bal != 500 {
		t.Fatalf("expected 2 owes 1 500, got %d", bal)
	}

	if err := emock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSettleRejectsAmountAboveBalance(t *testing.T) {
	svc, _, store := newTestService(t)

	if _, err := store.UpsertAtomic(context.Background(), ids.UserID(2), ids.UserID(1), ids.DirectScope, 500, balance.Increment); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	_, err := svc.Settle(context.Background(), ids.DirectScope, ids.UserID(2), ids.UserID(1), 600)
	if err == nil {
		t.Fatal("expected ErrInvalidSettlement")
	}
}

func TestSettleRecordsReceiptAndDecrements(t *testing.T) {
	svc, smock, store := newTestService(t)

	if _, err := store.UpsertAtomic(context.Background(), ids.UserID(2), ids.UserID(1), ids.DirectScope, 500, balance.Increment); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	smock.ExpectQuery("INSERT INTO settlements").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	receipt, err := svc.Settle(context.Background(), ids.DirectScope, ids.UserID(2), ids.UserID(1), 500)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if receipt.Amount != 500 {
		t.Fatalf("expected receipt amount 500, got %d", receipt.Amount)
	}

	bal, err := store.GetPair(context.Background(), ids.UserID(2), ids.UserID(1), ids.DirectScope)
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected balance cleared, got %d", bal)
	}

	if err := smock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
