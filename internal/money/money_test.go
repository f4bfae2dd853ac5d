package money

import "testing"

func TestDivEqual(t *testing.T) {
	share, rem := Money(9000).DivEqual(3)
	if share != 3000 || rem != 0 {
		t.Fatalf("got share=%d rem=%d", share, rem)
	}

	share, rem = Money(1000).DivEqual(3)
	if share != 333 || rem != 1 {
		t.Fatalf("got share=%d rem=%d", share, rem)
	}
}

func TestMulBp(t *testing.T) {
	if got := Money(10000).MulBp(2500); got != 2500 {
		t.Fatalf("25%% of 10000 = %d, want 2500", got)
	}
	if got := Money(10001).MulBp(3333); got != 3333 {
		t.Fatalf("got %d", got)
	}
}

func TestSum(t *testing.T) {
	if got := Sum([]Money{100, 200, 300}); got != 600 {
		t.Fatalf("got %d", got)
	}
}

func TestRoundHalfEven(t *testing.T) {
	cases := []struct {
		num, den int64
		want     Money
	}{
		{5, 2, 2},  // 2.5 -> 2 (even)
		{7, 2, 4},  // 3.5 -> 4 (even)
		{3, 2, 2},  // 1.5 -> 2 (even)
		{10, 4, 2}, // 2.5 -> 2 (even)
	}
	for _, c := range cases {
		if got := RoundHalfEven(c.num, c.den); got != c.want {
			t.Errorf("RoundHalfEven(%d,%d) = %d, want %d", c.num, c.den, got, c.want)
		}
	}
}

func TestString(t *testing.T) {
	if Money(12345).String() != "123.45" {
		t.Fatalf("got %s", Money(12345).String())
	}
	if Money(-50).String() != "-0.50" {
		t.Fatalf("got %s", Money(-50).String())
	}
}
