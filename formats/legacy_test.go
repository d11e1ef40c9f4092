package formats

import (
	"strings"
	"testing"

	"github.com/crillab/gowcsp/wcsp"
)

// TestParseLegacyHeaderAndDomains exercises the header/domain-line parsing
// discipline described in spec §4.4/§6.1 for the legacy WCSP format: name,
// N, maxDomain, C, UB, followed by N domain-size tokens (negative meaning
// interval).
func TestParseLegacyHeaderAndDomains(t *testing.T) {
	src := `tiny 3 3 0 1000
3 -2 2
`
	w, err := ParseLegacy(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Name != "tiny" {
		t.Errorf("name = %q, want tiny", w.Name)
	}
	if w.NumberOfVariables() != 3 {
		t.Fatalf("NumberOfVariables() = %d, want 3", w.NumberOfVariables())
	}
	if w.Var(0).Kind != wcsp.Enumerated || w.Var(0).InitDomainSize() != 3 {
		t.Errorf("variable 0 should be enumerated with domain size 3")
	}
	if w.Var(1).Kind != wcsp.Interval {
		t.Errorf("variable 1 (negative domain size) should be an interval variable")
	}
	if w.Var(1).Inf() != 0 || w.Var(1).Sup() != 1 {
		t.Errorf("interval variable domain = [%d,%d], want [0,1]", w.Var(1).Inf(), w.Var(1).Sup())
	}
}

// TestParseLegacyUnaryAndBinaryBlocks exercises ordinary (non-shared)
// function blocks of arity 1 and 2.
func TestParseLegacyUnaryAndBinaryBlocks(t *testing.T) {
	src := `pair 2 2 2 1000
2 2
1 0 0 1
0 1
2 0 1 0 2
0 0 1
1 1 1
`
	w, err := ParseLegacy(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfConstraints() != 2 {
		t.Fatalf("NumberOfConstraints() = %d, want 2", w.NumberOfConstraints())
	}
	// Unary blocks are accumulated and committed only after every block
	// in the file has been read, so the binary block (posted as it is
	// read) lands at index 0 and the merged unary table at index 1.
	bc, ok := w.Constraints[0].(*wcsp.BinaryConstraint)
	if !ok {
		t.Fatalf("constraint 0 = %T, want *wcsp.BinaryConstraint", w.Constraints[0])
	}
	if bc.Cost(0, 0) != 1 || bc.Cost(1, 1) != 1 || bc.Cost(0, 1) != 0 || bc.Cost(1, 0) != 0 {
		t.Errorf("binary costs don't match the posted table")
	}
	uc, ok := w.Constraints[1].(*wcsp.UnaryConstraint)
	if !ok {
		t.Fatalf("constraint 1 = %T, want *wcsp.UnaryConstraint", w.Constraints[1])
	}
	if uc.Cost(0) != 1 || uc.Cost(1) != 0 {
		t.Errorf("unary costs = [%d %d], want [1 0]", uc.Cost(0), uc.Cost(1))
	}
}

// TestParseLegacyUnaryBlocksMergeAdditively exercises the
// accumulate-then-commit behavior: the same variable appears in two
// separate unary blocks, and their costs must be summed before a single
// PostUnary call, rather than the second block silently overwriting the
// first.
func TestParseLegacyUnaryBlocksMergeAdditively(t *testing.T) {
	src := `split 1 2 2 1000
2
1 0 0 1
0 1
1 0 0 1
0 2
`
	w, err := ParseLegacy(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfConstraints() != 1 {
		t.Fatalf("NumberOfConstraints() = %d, want 1 (the two unary blocks merge into one)", w.NumberOfConstraints())
	}
	uc, ok := w.Constraints[0].(*wcsp.UnaryConstraint)
	if !ok {
		t.Fatalf("constraint 0 = %T, want *wcsp.UnaryConstraint", w.Constraints[0])
	}
	if uc.Cost(0) != 3 || uc.Cost(1) != 0 {
		t.Errorf("merged unary costs = [%d %d], want [3 0] (1+2 at value 0, already minimal)", uc.Cost(0), uc.Cost(1))
	}
}

// TestParseLegacySharedTable exercises the negative-arity/negative-tuple
// table-sharing mechanism of spec §4.4/§9: a block with negative arity
// registers its table for reuse, and a later block with a negative tuple
// count reuses it.
func TestParseLegacySharedTable(t *testing.T) {
	src := `shared 4 2 2 1000
2 2 2 2
-2 0 1 0 2
0 0 1
1 1 1
2 2 3 0 -1
`
	w, err := ParseLegacy(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfConstraints() != 2 {
		t.Fatalf("NumberOfConstraints() = %d, want 2", w.NumberOfConstraints())
	}
	first := w.Constraints[0].(*wcsp.BinaryConstraint)
	second := w.Constraints[1].(*wcsp.BinaryConstraint)
	if first.Cost(0, 0) != second.Cost(0, 0) || first.Cost(1, 1) != second.Cost(1, 1) {
		t.Errorf("shared table should produce identical costs in both blocks")
	}
	if second.Arity() != 2 || second.Scope()[0] != 2 || second.Scope()[1] != 3 {
		t.Errorf("reusing block should still apply its own scope")
	}
}

func TestParseLegacyDuplicateTupleIsStructuralError(t *testing.T) {
	src := `dup 2 2 1 1000
2 2
2 0 1 0 2
0 0 1
0 0 1
`
	if _, err := ParseLegacy(strings.NewReader(src), wcsp.DefaultOptions()); err == nil {
		t.Error("expected a structural error for a duplicate tuple")
	}
}
