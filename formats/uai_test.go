package formats

import (
	"math"
	"strings"
	"testing"

	"github.com/crillab/gowcsp/wcsp"
)

// TestParseUAINonLogProbabilityConversion checks the plain (non-LG)
// probability-to-cost conversion -log(p/max(p))*NormFactor against a known
// (p, maxP) pair: p=2.0, maxP=4.0 gives -log(2.0/4.0) = log(2) ~= 0.693,
// rounding to cost 1; p=maxP itself always costs 0. The accumulated Markov
// shift must be log(maxP) = log(4.0), not the raw maxP (the bug this
// guards against would report 4.0 instead of ~1.386).
func TestParseUAINonLogProbabilityConversion(t *testing.T) {
	src := `MARKOV
1
2
1
1 0
2
2.0
4.0
`
	w, shift, err := ParseUAI(strings.NewReader(src), wcsp.DefaultOptions(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uc := w.Constraints[0].(*wcsp.UnaryConstraint)
	if uc.Cost(0) != 1 {
		t.Errorf("Cost(0) = %d, want 1 (-log(2.0/4.0) ~= 0.693 rounded)", uc.Cost(0))
	}
	if uc.Cost(1) != 0 {
		t.Errorf("Cost(1) = %d, want 0 (p == maxP)", uc.Cost(1))
	}
	wantShift := math.Log(4.0)
	if math.Abs(shift-wantShift) > 1e-9 {
		t.Errorf("shift = %g, want log(maxP) = %g", shift, wantShift)
	}
}
