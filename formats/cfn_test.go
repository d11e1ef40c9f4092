package formats

import (
	"strings"
	"testing"

	"github.com/crillab/gowcsp/wcsp"
)

func TestParseCFNTagQualified(t *testing.T) {
	src := `{
problem: { name: tiny, mustbe: >1000 }
variables: { x: 2, y: 2 }
functions: {
  f1: { scope: { x }, defaultcost: 0, costs: { 1 0 } }
  f2: { scope: { x y }, defaultcost: 0, costs: { 0 1 1 0 } }
}
}`
	w, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfVariables() != 2 {
		t.Fatalf("NumberOfVariables() = %d, want 2", w.NumberOfVariables())
	}
	if w.NumberOfConstraints() != 2 {
		t.Fatalf("NumberOfConstraints() = %d, want 2", w.NumberOfConstraints())
	}
	uc := w.Constraints[0].(*wcsp.UnaryConstraint)
	if uc.Cost(0) != 1 || uc.Cost(1) != 0 {
		t.Errorf("unary costs = [%d %d], want [1 0]", uc.Cost(0), uc.Cost(1))
	}
	bc := w.Constraints[1].(*wcsp.BinaryConstraint)
	if bc.Cost(0, 1) != 1 || bc.Cost(1, 0) != 1 {
		t.Errorf("binary costs don't match the posted table")
	}
}

func TestParseCFNNamedValues(t *testing.T) {
	src := `{
variables: { color: { red green blue } }
functions: { }
}`
	w, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx, ok := w.Var(0).ValueIndex("green")
	if !ok || idx != 1 {
		t.Errorf("ValueIndex(green) = (%d,%v), want (1,true)", idx, ok)
	}
	if w.Var(0).ValueName(2) != "blue" {
		t.Errorf("ValueName(2) = %q, want blue", w.Var(0).ValueName(2))
	}
}

func TestParseCFNTableSharing(t *testing.T) {
	src := `{
variables: { a: 2, b: 2, c: 2, d: 2 }
functions: {
  f1: { scope: { a b }, defaultcost: 0, costs: { 0 1 1 0 } }
  f2: { scope: { c d }, shares: f1 }
}
}`
	w, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := w.Constraints[0].(*wcsp.BinaryConstraint)
	second := w.Constraints[1].(*wcsp.BinaryConstraint)
	if first.Cost(0, 1) != second.Cost(0, 1) || first.Cost(0, 0) != second.Cost(0, 0) {
		t.Errorf("shared function should reproduce the original table's costs")
	}
}

func TestParseCFNUnknownShareIsStructuralError(t *testing.T) {
	src := `{
variables: { a: 2, b: 2 }
functions: {
  f1: { scope: { a b }, shares: ghost }
}
}`
	if _, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions()); err == nil {
		t.Error("expected a structural error for an unknown shared table")
	}
}

// TestParseCFNMismatchedShareArityIsStructuralError exercises spec §4.4's
// "arities and domain sizes of the two scopes must match exactly": f2
// shares f1's table but has a ternary scope against f1's binary one, which
// must be rejected rather than silently reused.
func TestParseCFNMismatchedShareArityIsStructuralError(t *testing.T) {
	src := `{
variables: { a: 2, b: 2, c: 2, d: 2, e: 2 }
functions: {
  f1: { scope: { a b }, defaultcost: 0, costs: { 0 1 1 0 } }
  f2: { scope: { c d e }, shares: f1 }
}
}`
	if _, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions()); err == nil {
		t.Error("expected a structural error for a shared table with mismatched arity")
	}
}

func TestParseCFNAllDiffTemplateForbidsEqualPairs(t *testing.T) {
	src := `{
variables: { a: 2, b: 2, c: 2 }
functions: {
  f1: { scope: { a b c }, type: salldiff, params: { cost: 1000 } }
}
}`
	w, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfConstraints() == 0 {
		t.Fatal("salldiff template should post at least one pairwise constraint")
	}
	for _, c := range w.Constraints {
		bc, ok := c.(*wcsp.BinaryConstraint)
		if !ok {
			continue
		}
		if bc.Cost(0, 0) == 0 || bc.Cost(1, 1) == 0 {
			t.Errorf("equal-value tuples should be penalised by the salldiff decomposition")
		}
	}
}

func TestParseCFNWSumTemplate(t *testing.T) {
	src := `{
variables: { a: 3, b: 3 }
functions: {
  f1: { scope: { a b }, type: wsum, params: { keyword: ge, coeffs: { 1 1 }, rhs: 2, cost: 5 } }
}
}`
	w, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.NumberOfConstraints() == 0 {
		t.Fatal("wsum template should post at least one cost function")
	}
}

func TestParseCFNUnknownTemplateIsStructuralError(t *testing.T) {
	src := `{
variables: { a: 2 }
functions: {
  f1: { scope: { a }, type: sgrammardp, params: { } }
}
}`
	if _, err := ParseCFN(strings.NewReader(src), wcsp.DefaultOptions()); err == nil {
		t.Error("expected a structural error for an unimplemented template name")
	}
}
