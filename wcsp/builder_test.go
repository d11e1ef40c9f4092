package wcsp

import "testing"

func TestPostUnaryRejectsWrongTableSize(t *testing.T) {
	w := New("t")
	x, _ := w.MakeEnumeratedVariable("x", 3)
	if _, err := w.PostUnary(x, []Cost{0, 1}); err == nil {
		t.Error("expected error for a table of the wrong size")
	}
}

func TestPostUnaryInitialCostShifting(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	x, _ := w.MakeEnumeratedVariable("x", 3)
	id, err := w.PostUnary(x, []Cost{5, 7, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Lb() != 5 {
		t.Errorf("lb after shifting = %d, want 5 (the table minimum)", w.Lb())
	}
	if w.NegCost != 5 {
		t.Errorf("negCost after shifting = %d, want 5", w.NegCost)
	}
	uc := w.Constraints[id].(*UnaryConstraint)
	if uc.Cost(0) != 0 || uc.Cost(1) != 2 || uc.Cost(2) != 4 {
		t.Errorf("shifted costs = %v, want [0 2 4]", uc.Costs)
	}
}

func TestPostBinaryScopeValidation(t *testing.T) {
	w := New("t")
	x, _ := w.MakeEnumeratedVariable("x", 2)
	if _, err := w.PostBinary(x, x, []Cost{0, 0, 0, 0}); err == nil {
		t.Error("expected error for a binary scope with a duplicate variable")
	}
}

func TestPostBinaryRowMajorOrder(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	x, _ := w.MakeEnumeratedVariable("x", 2)
	y, _ := w.MakeEnumeratedVariable("y", 3)
	id, err := w.PostBinary(x, y, []Cost{0, 1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bc := w.Constraints[id].(*BinaryConstraint)
	if bc.Cost(1, 2) != 5 {
		t.Errorf("Cost(1,2) = %d, want 5", bc.Cost(1, 2))
	}
	if bc.Cost(0, 1) != 1 {
		t.Errorf("Cost(0,1) = %d, want 1", bc.Cost(0, 1))
	}
}

func TestNaryBuilderRejectsDuplicateTuple(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	a, _ := w.MakeEnumeratedVariable("a", 2)
	b, _ := w.MakeEnumeratedVariable("b", 2)
	c, _ := w.MakeEnumeratedVariable("c", 2)
	d, _ := w.MakeEnumeratedVariable("d", 2)
	nb, err := w.PostNaryBegin([]int{a, b, c, d}, MinCost, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := nb.PostNaryTuple(Tuple{0, 0, 0, 0}, Cost(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := nb.PostNaryTuple(Tuple{0, 0, 0, 0}, Cost(4)); err == nil {
		t.Error("expected error for a duplicate tuple")
	}
}

func TestNaryBuilderZeroArityFoldsIntoLb(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	nb, err := w.PostNaryBegin(nil, Cost(7), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, err := nb.PostNaryEnd()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != -1 {
		t.Errorf("zero-arity PostNaryEnd id = %d, want -1", id)
	}
	if w.Lb() != 7 {
		t.Errorf("lb = %d, want 7", w.Lb())
	}
}

func TestPostKnapsackAndCliqueRecordRepresentation(t *testing.T) {
	w := New("t")
	a, _ := w.MakeEnumeratedVariable("a", 2)
	b, _ := w.MakeEnumeratedVariable("b", 2)
	id, err := w.PostKnapsack([]int{a, b}, []int64{1, 1}, nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lc := w.Constraints[id].(*LinearConstraint)
	if lc.IsClique {
		t.Error("PostKnapsack should not set IsClique")
	}
	id2, err := w.PostClique([]int{a, b}, []int64{1, 1}, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Constraints[id2].(*LinearConstraint).IsClique {
		t.Error("PostClique should set IsClique")
	}
}

func TestEveryConstraintScopeMatchesArity(t *testing.T) {
	w := New("t")
	w.ub.Set(Top)
	x, _ := w.MakeEnumeratedVariable("x", 2)
	y, _ := w.MakeEnumeratedVariable("y", 2)
	z, _ := w.MakeEnumeratedVariable("z", 2)
	w.PostUnary(x, []Cost{0, 1})
	w.PostBinary(x, y, []Cost{0, 0, 0, 0})
	w.PostTernary(x, y, z, make([]Cost, 8))
	for _, c := range w.Constraints {
		if c.Arity() != len(c.Scope()) {
			t.Errorf("constraint arity %d != len(scope) %d", c.Arity(), len(c.Scope()))
		}
		for _, idx := range c.Scope() {
			if idx < 0 || idx >= w.NumberOfVariables() {
				t.Errorf("scope index %d out of range [0,%d)", idx, w.NumberOfVariables())
			}
		}
	}
}
