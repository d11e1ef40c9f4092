package wcsp

import "fmt"

// baseConstraint implements the Connected()/Scope()/Arity() trio shared by
// every tabular and specialised cost function in this file.
type baseConstraint struct {
	scope     []int
	connected bool
}

func (b *baseConstraint) Scope() []int    { return b.scope }
func (b *baseConstraint) Arity() int      { return len(b.scope) }
func (b *baseConstraint) Connected() bool { return b.connected }

// UnaryConstraint is a full cost table over a single variable.
type UnaryConstraint struct {
	baseConstraint
	Costs []Cost // length == domain size of the scope variable
}

// Cost returns the cost of assigning the scope variable to value.
func (c *UnaryConstraint) Cost(value int) Cost { return c.Costs[value] }

// BinaryConstraint is a full cost table over two variables, in row-major
// lexicographic order (spec §4.3).
type BinaryConstraint struct {
	baseConstraint
	dx, dy int
	Costs  []Cost // length == dx*dy
}

// Cost returns the cost of the tuple (x, y).
func (c *BinaryConstraint) Cost(x, y int) Cost { return c.Costs[x*c.dy+y] }

// TernaryConstraint is a full cost table over three variables, in
// row-major lexicographic order.
type TernaryConstraint struct {
	baseConstraint
	dx, dy, dz int
	Costs      []Cost // length == dx*dy*dz
}

// Cost returns the cost of the tuple (x, y, z).
func (c *TernaryConstraint) Cost(x, y, z int) Cost {
	return c.Costs[(x*c.dy+y)*c.dz+z]
}

// NaryConstraint is a sparse table over an arbitrary scope (arity >= 4 in
// practice, though nothing here forbids a smaller arity): a default cost
// plus exceptions for explicitly listed tuples (spec §3).
type NaryConstraint struct {
	baseConstraint
	DefaultCost Cost
	sparse      map[string]Cost
	expected    int // expected number of tuples, a capacity hint only
}

// Cost returns the cost of tuple, falling back to DefaultCost if the tuple
// has no explicit entry.
func (c *NaryConstraint) Cost(tuple Tuple) Cost {
	if cost, ok := c.sparse[tuple.Key()]; ok {
		return cost
	}
	return c.DefaultCost
}

// Len returns the number of explicitly listed (non-default) tuples.
func (c *NaryConstraint) Len() int { return len(c.sparse) }

// ArithKind enumerates the arithmetic constraint forms of spec §4.3/§6.
type ArithKind int

const (
	ArithGE ArithKind = iota
	ArithGT
	ArithLE
	ArithLT
	ArithEQ
	ArithDisj  // x != y, or a disjunction of two linear conditions offset by a constant
	ArithSDisj // "soft" disjunction: allows one side at a given cost instead of forbidding it
)

func (k ArithKind) String() string {
	switch k {
	case ArithGE:
		return ">="
	case ArithGT:
		return ">"
	case ArithLE:
		return "<="
	case ArithLT:
		return "<"
	case ArithEQ:
		return "="
	case ArithDisj:
		return "disj"
	case ArithSDisj:
		return "sdisj"
	default:
		return "?"
	}
}

// ArithmeticConstraint is a specialised binary constraint between two
// variables with integer offsets: x <kind> y + offset (spec §4.3).
// ArithSDisj additionally carries soft costs for violating either side.
type ArithmeticConstraint struct {
	baseConstraint
	Kind       ArithKind
	Offset     int
	CostXTrue  Cost // sdisj only: cost when forcing x side true
	CostYTrue  Cost // sdisj only: cost when forcing y side true
}

// LinearConstraint is the shared representation behind Knapsack and
// Clique: a linear 0/1 constraint sum(coeff_i * lit_i) >= capacity, where
// lit_i is either x_i (Negated[i]==false) or its complement (spec §4.3).
type LinearConstraint struct {
	baseConstraint
	Coeffs   []int64
	Negated  []bool
	Capacity int64
	IsClique bool // true if this was posted via PostClique rather than PostKnapsack
}

// validateScope checks (a) arity == len(scope) and (b) scope entries are
// distinct and within [0, NumberOfVariables) (spec §3 invariants).
func (w *WCSP) validateScope(scope []int, wantArity int) error {
	if wantArity >= 0 && len(scope) != wantArity {
		return &FormatError{Msg: fmt.Sprintf("scope has %d variables, expected arity %d", len(scope), wantArity)}
	}
	seen := make(map[int]bool, len(scope))
	for _, idx := range scope {
		if idx < 0 || idx >= len(w.Variables) {
			return &FormatError{Msg: fmt.Sprintf("scope references variable index %d, out of range [0,%d)", idx, len(w.Variables))}
		}
		if seen[idx] {
			return &FormatError{Msg: fmt.Sprintf("scope contains duplicate variable index %d", idx)}
		}
		seen[idx] = true
	}
	return nil
}

func (w *WCSP) connect(c Constraint) {
	for _, idx := range c.Scope() {
		w.Variables[idx].incDegree()
	}
	w.Constraints = append(w.Constraints, c)
}

// PostConstraint registers an already-built Constraint directly, without
// going through one of the Post* builder calls. Package metawcsp uses this
// to attach a WCSP-as-constraint meta-constraint to its master (spec
// §4.6): the meta-constraint's scope lists master variables exactly the
// way any other cost function's scope would.
func (w *WCSP) PostConstraint(c Constraint) {
	w.connect(c)
}
