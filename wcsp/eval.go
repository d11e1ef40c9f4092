package wcsp

import "fmt"

// EvaluateCost returns the total cost of assigning every variable exactly
// as given in values (indexed by variable index): lb's already-folded
// baseline plus every connected tabular cost function's looked-up entry,
// saturating to Top as soon as the running sum reaches it. It is the
// concrete mechanism behind spec §4.6.5's eval()/getCost() probe, used by
// metawcsp.Constraint.Eval in place of the full constraint-propagation
// engine (tb2globalwcsp.hpp's assignLS) this package does not implement.
//
// Only the tabular cost functions (unary/binary/ternary/n-ary) are
// summed; global and arithmetic constraints do not carry a scope-level
// cost table in this package and are not evaluated here, consistent with
// the package's Non-goal of full search-time consistency checking.
func (w *WCSP) EvaluateCost(values []int) (Cost, error) {
	if len(values) != len(w.Variables) {
		return 0, &FormatError{Msg: fmt.Sprintf("EvaluateCost expects %d values, got %d variables", len(values), len(w.Variables))}
	}
	total := w.Lb()
	for _, c := range w.Constraints {
		if !c.Connected() {
			continue
		}
		scope := c.Scope()
		switch cc := c.(type) {
		case *UnaryConstraint:
			total = total.Add(cc.Cost(values[scope[0]]))
		case *BinaryConstraint:
			total = total.Add(cc.Cost(values[scope[0]], values[scope[1]]))
		case *TernaryConstraint:
			total = total.Add(cc.Cost(values[scope[0]], values[scope[1]], values[scope[2]]))
		case *NaryConstraint:
			tuple := make(Tuple, len(scope))
			for i, v := range scope {
				tuple[i] = values[v]
			}
			total = total.Add(cc.Cost(tuple))
		default:
			continue
		}
		if total.IsTop() {
			return Top, nil
		}
	}
	return total, nil
}
