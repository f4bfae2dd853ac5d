package split

import (
	"testing"

	"github.com/splitcore/settle/internal/ids"
	"github.com/splitcore/settle/internal/money"
)

func sum(shares []Share) money.Money {
	var t money.Money
	for _, s := range shares {
		t += s.Amount
	}
	return t
}

func TestEqualSplitExact(t *testing.T) {
	f := NewFactory()
	strat, _ := f.Create(ModeEqual)
	shares, err := strat.Calculate(9000, 1, []Participant{{UserID: 1}, {UserID: 2}, {UserID: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if len(shares) != 2 || shares[0].Amount != 3000 || shares[1].Amount != 3000 {
		t.Fatalf("got %+v", shares)
	}
}

func TestEqualSplitRemainder(t *testing.T) {
	f := NewFactory()
	strat, _ := f.Create(ModeEqual)
	// 1000 / 3 participants = 333 each, remainder 1 cent. Payer is userID 4
	// (highest id), so the remainder cent lands on the lowest-id debtor, 2.
	shares, err := strat.Calculate(1000, 4, []Participant{{UserID: 2}, {UserID: 3}, {UserID: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if sum(shares) != 1000-333 {
		t.Fatalf("sum=%d", sum(shares))
	}
	for _, s := range shares {
		if s.UserID == 2 && s.Amount != 334 {
			t.Fatalf("expected userID 2 to get remainder cent, got %+v", shares)
		}
		if s.UserID == 3 && s.Amount != 333 {
			t.Fatalf("expected userID 3 to get base share, got %+v", shares)
		}
	}
}

func TestExactSplit(t *testing.T) {
	f := NewFactory()
	strat, _ := f.Create(ModeExact)
	shares, err := strat.Calculate(1000, 1, []Participant{
		{UserID: 1, ExactAmount: 400},
		{UserID: 2, ExactAmount: 600},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(shares) != 1 || shares[0].Amount != 600 {
		t.Fatalf("got %+v", shares)
	}
}

func TestExactExceedsTotal(t *testing.T) {
	f := NewFactory()
	strat, _ := f.Create(ModeExact)
	_, err := strat.Calculate(500, 1, []Participant{
		{UserID: 1, ExactAmount: 100},
		{UserID: 2, ExactAmount: 600},
	})
	if err != ErrExactExceedsTotal {
		t.Fatalf("got %v", err)
	}
}

func TestPercentageSplit(t *testing.T) {
	f := NewFactory()
	strat, _ := f.Create(ModePercentage)
	shares, err := strat.Calculate(9999, 1, []Participant{
		{UserID: 1, PercentBp: 3334},
		{UserID: 2, PercentBp: 3333},
		{UserID: 3, PercentBp: 3333},
	})
	if err != nil {
		t.Fatal(err)
	}
	byUser := map[ids.UserID]money.Money{}
	for _, s := range shares {
		byUser[s.UserID] = s.Amount
	}
	// floor(9999*3333/10000) = 3332 each individually; the aggregate
	// debtor total floors to 6665, one cent more, which goes to the
	// lowest userID (2).
	if byUser[2] != 3333 || byUser[3] != 3332 {
		t.Fatalf("got %+v", shares)
	}
	if sum(shares) != 6665 {
		t.Fatalf("sum=%d", sum(shares))
	}
}

func TestPercentageExceedsBasisPoints(t *testing.T) {
	f := NewFactory()
	strat, _ := f.Create(ModePercentage)
	_, err := strat.Calculate(1000, 1, []Participant{
		{UserID: 1, PercentBp: 6000},
		{UserID: 2, PercentBp: 6000},
	})
	if err != ErrPercentageExceeds {
		t.Fatalf("got %v", err)
	}
}

func TestFactoryUnknownMode(t *testing.T) {
	f := NewFactory()
	if _, err := f.Create("BOGUS"); err == nil {
		t.Fatal("expected error")
	}
}
