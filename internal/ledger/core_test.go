package ledger

import (
	"testing"

	"github.com/splitcore/settle/internal/money"
)

func TestAddDebtSimpleCase(t *testing.T) {
	c := NewCore()
	if err := c.AddDebt(1, 2, 500); err != nil {
		t.Fatal(err)
	}
	if got := c.NetBalance(1, 2); got != 500 {
		t.Fatalf("got %d", got)
	}
	if got := c.NetBalance(2, 1); got != 0 {
		t.Fatalf("reverse should be empty, got %d", got)
	}
}

func TestAddDebtCancelsReverse(t *testing.T) {
	c := NewCore()
	if err := c.AddDebt(1, 2, 500); err != nil {
		t.Fatal(err)
	}
	// 2 now owes 1 300, which nets against 1's existing 500 debt to 2.
	if err := c.AddDebt(2, 1, 300); err != nil {
		t.Fatal(err)
	}
	if got := c.NetBalance(1, 2); got != 200 {
		t.Fatalf("expected 1 still owes 2 200, got %d", got)
	}
	if got := c.NetBalance(2, 1); got != 0 {
		t.Fatalf("expected no reverse row, got %d", got)
	}
}

func TestAddDebtFlipsDirection(t *testing.T) {
	c := NewCore()
	if err := c.AddDebt(1, 2, 300); err != nil {
		t.Fatal(err)
	}
	// 2 now owes 1 a bigger amount than 1 owed 2; direction should flip.
	if err := c.AddDebt(2, 1, 800); err != nil {
		t.Fatal(err)
	}
	if got := c.NetBalance(1, 2); got != 0 {
		t.Fatalf("expected forward row cleared, got %d", got)
	}
	if got := c.NetBalance(2, 1); got != 500 {
		t.Fatalf("expected 2 owes 1 500, got %d", got)
	}
}

func TestAddDebtSelfRejected(t *testing.T) {
	c := NewCore()
	if err := c.AddDebt(1, 1, 100); err != ErrSelfDebt {
		t.Fatalf("got %v", err)
	}
}

func TestAddDebtNonPositiveRejected(t *testing.T) {
	c := NewCore()
	if err := c.AddDebt(1, 2, 0); err != ErrNonPositiveAmount {
		t.Fatalf("got %v", err)
	}
	if err := c.AddDebt(1, 2, -5); err != ErrNonPositiveAmount {
		t.Fatalf("got %v", err)
	}
}

func TestSettleDebtExact(t *testing.T) {
	c := NewCore()
	_ = c.AddDebt(1, 2, 500)
	if err := c.SettleDebt(1, 2, 500); err != nil {
		t.Fatal(err)
	}
	if got := c.NetBalance(1, 2); got != 0 {
		t.Fatalf("got %d", got)
	}
}

func TestSettleDebtPartial(t *testing.T) {
	c := NewCore()
	_ = c.AddDebt(1, 2, 500)
	if err := c.SettleDebt(1, 2, 200); err != nil {
		t.Fatal(err)
	}
	if got := c.NetBalance(1, 2); got != 300 {
		t.Fatalf("got %d", got)
	}
}

func TestSettleDebtInsufficient(t *testing.T) {
	c := NewCore()
	_ = c.AddDebt(1, 2, 500)
	if err := c.SettleDebt(1, 2, 600); err != ErrInsufficientBalance {
		t.Fatalf("got %v", err)
	}
}

func TestUserOwesAndOwed(t *testing.T) {
	c := NewCore()
	_ = c.AddDebt(1, 2, 500)
	_ = c.AddDebt(1, 3, 700)
	owes := c.UserOwes(1)
	if owes[2] != 500 || owes[3] != 700 {
		t.Fatalf("got %+v", owes)
	}
	owed := c.UserOwed(2)
	if owed[1] != 500 {
		t.Fatalf("got %+v", owed)
	}
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	c := NewCore()
	_ = c.AddDebt(1, 2, 500)
	snap := c.Snapshot()
	snap[1][2] = 999
	if got := c.NetBalance(1, 2); got != 500 {
		t.Fatalf("mutating snapshot leaked into core, got %d", got)
	}
}

func TestPlanAddDebtTable(t *testing.T) {
	cases := []struct {
		reverse, delta  money.Money
		wantNewReverse  money.Money
		wantDeleteRev   bool
		wantForwardIncr money.Money
	}{
		{reverse: 0, delta: 500, wantNewReverse: 0, wantDeleteRev: false, wantForwardIncr: 500},
		{reverse: 500, delta: 500, wantNewReverse: 0, wantDeleteRev: true, wantForwardIncr: 0},
		{reverse: 800, delta: 300, wantNewReverse: 500, wantDeleteRev: false, wantForwardIncr: 0},
		{reverse: 300, delta: 800, wantNewReverse: 0, wantDeleteRev: true, wantForwardIncr: 500},
	}
	for _, tc := range cases {
		plan := PlanAddDebt(tc.reverse, tc.delta)
		if plan.NewReverse != tc.wantNewReverse || plan.DeleteReverse != tc.wantDeleteRev || plan.ForwardIncrement != tc.wantForwardIncr {
			t.Fatalf("case %+v: got %+v", tc, plan)
		}
	}
}
