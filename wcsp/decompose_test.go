package wcsp

import "testing"

func TestDecomposeAllDiffForbidsEqualPairs(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	a, _ := w.MakeEnumeratedVariable("a", 2)
	b, _ := w.MakeEnumeratedVariable("b", 2)
	c, _ := w.MakeEnumeratedVariable("c", 2)
	if err := w.PostDecomposable(GlobalAllDiff, []int{a, b, c}, nil, Top); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Three Boolean variables can never be pairwise distinct: every
	// binary pair constraint forbids equal values, so every complete
	// assignment has at least one equal pair by pigeonhole.
	total := 0
	for _, constraint := range w.Constraints {
		bc, ok := constraint.(*BinaryConstraint)
		if !ok {
			t.Fatalf("expected a BinaryConstraint, got %T", constraint)
		}
		total++
		if bc.Cost(0, 0) != Top || bc.Cost(1, 1) != Top {
			t.Errorf("equal-value tuples should cost top, got (0,0)=%d (1,1)=%d", bc.Cost(0, 0), bc.Cost(1, 1))
		}
		if bc.Cost(0, 1) != MinCost || bc.Cost(1, 0) != MinCost {
			t.Errorf("distinct-value tuples should cost 0, got (0,1)=%d (1,0)=%d", bc.Cost(0, 1), bc.Cost(1, 0))
		}
	}
	if total != 3 {
		t.Errorf("expected 3 pairwise binary constraints for 3 variables, got %d", total)
	}
}

func TestDecomposeGCCCountBound(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	a, _ := w.MakeEnumeratedVariable("a", 2)
	b, _ := w.MakeEnumeratedVariable("b", 2)
	c, _ := w.MakeEnumeratedVariable("c", 2)
	err := w.PostDecomposable(GlobalGCC, []int{a, b, c}, []Cardinality{{Value: 1, Min: 0, Max: 1}}, Top)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nc := w.Constraints[len(w.Constraints)-1].(*NaryConstraint)
	if nc.Cost(Tuple{1, 1, 0}) != Top {
		t.Errorf("two 1s should exceed max=1 and cost top, got %d", nc.Cost(Tuple{1, 1, 0}))
	}
	if nc.Cost(Tuple{1, 0, 0}) != MinCost {
		t.Errorf("one 1 should be within bounds, got %d", nc.Cost(Tuple{1, 0, 0}))
	}
}

func TestDecomposeAmongCountsTargetValues(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	a, _ := w.MakeEnumeratedVariable("a", 3)
	b, _ := w.MakeEnumeratedVariable("b", 3)
	params := NewAmongParams(1, 2, []int{0, 1})
	if err := w.PostDecomposable(GlobalAmong, []int{a, b}, params, Top); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nc := w.Constraints[len(w.Constraints)-1].(*NaryConstraint)
	if nc.Cost(Tuple{2, 2}) != Top {
		t.Errorf("zero values in {0,1} should violate min=1, got %d", nc.Cost(Tuple{2, 2}))
	}
	if nc.Cost(Tuple{0, 1}) != MinCost {
		t.Errorf("two values in {0,1} should satisfy [1,2], got %d", nc.Cost(Tuple{0, 1}))
	}
}

func TestDecomposeWSumComparison(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	a, _ := w.MakeEnumeratedVariable("a", 3)
	b, _ := w.MakeEnumeratedVariable("b", 3)
	params := WSumParams{Coeffs: []int64{1, 1}, Kind: ArithLE, RHS: 2}
	if err := w.PostDecomposable(GlobalWSum, []int{a, b}, params, Top); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nc := w.Constraints[len(w.Constraints)-1].(*NaryConstraint)
	if nc.Cost(Tuple{2, 2}) != Top {
		t.Errorf("sum 4 > 2 should cost top, got %d", nc.Cost(Tuple{2, 2}))
	}
	if nc.Cost(Tuple{1, 1}) != MinCost {
		t.Errorf("sum 2 <= 2 should cost 0, got %d", nc.Cost(Tuple{1, 1}))
	}
}
