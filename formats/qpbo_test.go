package formats

import (
	"strings"
	"testing"

	"github.com/crillab/gowcsp/wcsp"
)

func TestParseQPBOZeroOneDiagonalBecomesUnary(t *testing.T) {
	src := `2
2
1 1 3
2 2 2
`
	w, err := ParseQPBO(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfVariables() != 2 {
		t.Fatalf("NumberOfVariables() = %d, want 2", w.NumberOfVariables())
	}
	if w.NumberOfConstraints() != 2 {
		t.Fatalf("NumberOfConstraints() = %d, want 2", w.NumberOfConstraints())
	}
	uc0 := w.Constraints[0].(*wcsp.UnaryConstraint)
	if uc0.Cost(1) != 3 || uc0.Cost(0) != 0 {
		t.Errorf("first diagonal unary costs = [%d %d], want [0 3]", uc0.Cost(0), uc0.Cost(1))
	}
}

func TestParseQPBOOffDiagonalBecomesBinary(t *testing.T) {
	src := `2
1
1 2 5
`
	w, err := ParseQPBO(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfConstraints() != 1 {
		t.Fatalf("NumberOfConstraints() = %d, want 1", w.NumberOfConstraints())
	}
	bc := w.Constraints[0].(*wcsp.BinaryConstraint)
	if bc.Cost(1, 1) != 5 {
		t.Errorf("Cost(1,1) = %d, want 5", bc.Cost(1, 1))
	}
}

// TestParseQPBOMaximizeFlipsSignAndShiftsNegCost exercises spec scenario
// S4's core mechanism: a negative M signals maximisation, which ParseQPBO
// resolves per coefficient while the multiplier stays 1: the magnitude of a
// positive diagonal coefficient goes on value 0 and the same amount is
// folded into negCost, so no stored Cost is negative.
func TestParseQPBOMaximizeFlipsSignAndShiftsNegCost(t *testing.T) {
	src := `2
-1
1 1 3
`
	w, err := ParseQPBO(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NegCost == 0 {
		t.Error("maximising a positive diagonal coefficient should shift negCost")
	}
	uc := w.Constraints[0].(*wcsp.UnaryConstraint)
	for i := 0; i < 2; i++ {
		if uc.Cost(i) < 0 {
			t.Errorf("stored cost at value %d is negative: %d", i, uc.Cost(i))
		}
	}
}

// TestParseQPBOPMOneDomain exercises the {1,-1}-domain diagonal
// conversion's Ising-to-QUBO doubling: a diagonal coefficient coef=2,
// minimized, must produce costs=[4,0] (2*coef at value 0) with negCost
// shifted by exactly coef, not by the doubled amount.
func TestParseQPBOPMOneDomain(t *testing.T) {
	src := `-1
1
1 1 2
`
	w, err := ParseQPBO(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uc := w.Constraints[0].(*wcsp.UnaryConstraint)
	if uc.Cost(0) != 4 || uc.Cost(1) != 0 {
		t.Errorf("costs = [%d %d], want [4 0]", uc.Cost(0), uc.Cost(1))
	}
	if w.NegCost != 2 {
		t.Errorf("NegCost = %d, want 2", w.NegCost)
	}
}
