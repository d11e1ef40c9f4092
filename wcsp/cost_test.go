package wcsp

import "testing"

func TestCostAddSaturatesToTop(t *testing.T) {
	if got := Top.Add(1); got != Top {
		t.Errorf("Top.Add(1) = %d, want Top", got)
	}
	if got := Cost(Top - 1).Add(2); got != Top {
		t.Errorf("(Top-1).Add(2) = %d, want Top", got)
	}
}

func TestCostSubClamped(t *testing.T) {
	if got := Cost(3).SubClamped(5); got != MinCost {
		t.Errorf("3.SubClamped(5) = %d, want 0", got)
	}
	if got := Cost(5).SubClamped(3); got != 2 {
		t.Errorf("5.SubClamped(3) = %d, want 2", got)
	}
}

func TestCostMulOverflowSaturates(t *testing.T) {
	got, err := Cost(Top / 2).Mul(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Top {
		t.Errorf("(Top/2).Mul(4) = %d, want Top", got)
	}
}

func TestApplyMediumMultiplierScalesProhibitiveCosts(t *testing.T) {
	ub := Cost(100)
	got := ApplyMediumMultiplier(Cost(100), ub)
	if got != 400 {
		t.Errorf("ApplyMediumMultiplier(100, 100) = %d, want 400", got)
	}
	got = ApplyMediumMultiplier(Cost(50), ub)
	if got != 50 {
		t.Errorf("ApplyMediumMultiplier(50, 100) = %d, want 50 (unchanged, below ub)", got)
	}
}

func TestParseDecimalCost(t *testing.T) {
	cases := []struct {
		in        string
		precision int
		want      int64
	}{
		{"12", 0, 12},
		{"12.345", 3, 12345},
		{"-0.5", 1, -5},
		{"0", 0, 0},
		{"+3", 0, 3},
	}
	for _, c := range cases {
		got, err := ParseDecimalCost(c.in, c.precision)
		if err != nil {
			t.Errorf("ParseDecimalCost(%q, %d) error: %v", c.in, c.precision, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDecimalCost(%q, %d) = %d, want %d", c.in, c.precision, got, c.want)
		}
	}
}

func TestParseDecimalCostRejectsTooManyFractionalDigits(t *testing.T) {
	if _, err := ParseDecimalCost("1.2345", 2); err == nil {
		t.Error("expected error for excess fractional digits, got nil")
	}
}

func TestApplyMultiplierNegativeSign(t *testing.T) {
	got, err := ApplyMultiplier(5, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -5 {
		t.Errorf("ApplyMultiplier(5, -1) = %d, want -5", got)
	}
}
