package wcsp

import "fmt"

// PostUnary posts a unary cost table over variable x (spec §4.3). costs
// must have exactly InitDomainSize(x) entries. The table is shifted so its
// minimum is zero (initial cost shifting, spec §4.3(d)): the minimum is
// subtracted from every entry and folded into lb/negCost.
func (w *WCSP) PostUnary(x int, costs []Cost) (int, error) {
	if err := w.validateScope([]int{x}, 1); err != nil {
		return -1, err
	}
	if len(costs) != w.Variables[x].InitDomainSize() {
		return -1, &FormatError{Msg: fmt.Sprintf("unary table for %s has %d entries, want %d", w.Variables[x].Name, len(costs), w.Variables[x].InitDomainSize())}
	}
	scaled, minCost, err := w.scaleAndShift(costs)
	if err != nil {
		return -1, err
	}
	if err := w.increaseLbAndNegCost(minCost); err != nil {
		return -1, err
	}
	c := &UnaryConstraint{baseConstraint: baseConstraint{scope: []int{x}, connected: true}, Costs: scaled}
	w.connect(c)
	return len(w.Constraints) - 1, nil
}

// PostBinary posts a binary cost table over (x, y), in row-major
// lexicographic order: costs[i*Dy+j] is the cost of (x=i, y=j).
func (w *WCSP) PostBinary(x, y int, costs []Cost) (int, error) {
	if err := w.validateScope([]int{x, y}, 2); err != nil {
		return -1, err
	}
	dx, dy := w.Variables[x].InitDomainSize(), w.Variables[y].InitDomainSize()
	if len(costs) != dx*dy {
		return -1, &FormatError{Msg: fmt.Sprintf("binary table over (%s,%s) has %d entries, want %d", w.Variables[x].Name, w.Variables[y].Name, len(costs), dx*dy)}
	}
	scaled, minCost, err := w.scaleAndShift(costs)
	if err != nil {
		return -1, err
	}
	if err := w.increaseLbAndNegCost(minCost); err != nil {
		return -1, err
	}
	c := &BinaryConstraint{baseConstraint: baseConstraint{scope: []int{x, y}, connected: true}, dx: dx, dy: dy, Costs: scaled}
	w.connect(c)
	return len(w.Constraints) - 1, nil
}

// PostTernary posts a ternary cost table over (x, y, z), in row-major
// lexicographic order.
func (w *WCSP) PostTernary(x, y, z int, costs []Cost) (int, error) {
	if err := w.validateScope([]int{x, y, z}, 3); err != nil {
		return -1, err
	}
	dx, dy, dz := w.Variables[x].InitDomainSize(), w.Variables[y].InitDomainSize(), w.Variables[z].InitDomainSize()
	if len(costs) != dx*dy*dz {
		return -1, &FormatError{Msg: fmt.Sprintf("ternary table has %d entries, want %d", len(costs), dx*dy*dz)}
	}
	scaled, minCost, err := w.scaleAndShift(costs)
	if err != nil {
		return -1, err
	}
	if err := w.increaseLbAndNegCost(minCost); err != nil {
		return -1, err
	}
	c := &TernaryConstraint{baseConstraint: baseConstraint{scope: []int{x, y, z}, connected: true}, dx: dx, dy: dy, dz: dz, Costs: scaled}
	w.connect(c)
	return len(w.Constraints) - 1, nil
}

// NaryBuilder accumulates a sparse n-ary table between PostNaryBegin and
// PostNaryEnd.
type NaryBuilder struct {
	w        *WCSP
	scope    []int
	defaultC Cost
	expected int
	entries  map[string]Cost
	minSeen  Cost
	anySeen  bool
}

// PostNaryBegin starts building a sparse n-ary cost table over scope, with
// the given default cost and an expected tuple count (a capacity hint
// only; exceeding it is not an error). If scope is empty (arity 0) the
// "tabular-0ary" case of spec §3 applies: the table is a single constant,
// immediately folded into lb, and PostNaryEnd returns a nil builder id
// (-1) since no constraint object is created.
func (w *WCSP) PostNaryBegin(scope []int, defaultCost Cost, expectedTuples int) (*NaryBuilder, error) {
	if err := w.validateScope(scope, -1); err != nil {
		return nil, err
	}
	scaledDefault, err := w.scaleOne(defaultCost)
	if err != nil {
		return nil, err
	}
	return &NaryBuilder{
		w:        w,
		scope:    scope,
		defaultC: scaledDefault,
		expected: expectedTuples,
		entries:  make(map[string]Cost, expectedTuples),
		minSeen:  scaledDefault,
		anySeen:  true,
	}, nil
}

// PostNaryTuple records the cost of one tuple. It fails if the tuple was
// already recorded (spec §3: "tabular sparse entries for the same tuple
// are unique").
func (b *NaryBuilder) PostNaryTuple(tuple Tuple, cost Cost) error {
	if len(tuple) != len(b.scope) {
		return &FormatError{Msg: fmt.Sprintf("n-ary tuple has %d values, want %d", len(tuple), len(b.scope))}
	}
	key := tuple.Key()
	if _, dup := b.entries[key]; dup {
		return &StructuralError{Msg: fmt.Sprintf("duplicate tuple %v in n-ary table", []int(tuple))}
	}
	scaled, err := b.w.scaleOne(cost)
	if err != nil {
		return err
	}
	b.entries[key] = scaled
	if scaled < b.minSeen {
		b.minSeen = scaled
	}
	return nil
}

// PostNaryEnd finalises the table: it applies initial cost shifting across
// the default cost and every explicit entry together, then connects the
// constraint. For an arity-0 scope it instead adds the (already scaled)
// default cost straight to lb and returns (-1, nil).
func (b *NaryBuilder) PostNaryEnd() (int, error) {
	if len(b.scope) == 0 {
		if err := b.w.increaseLbAndNegCost(b.defaultC); err != nil {
			return -1, err
		}
		return -1, nil
	}
	min := b.minSeen
	shiftedDefault := b.defaultC.SubClamped(min)
	shifted := make(map[string]Cost, len(b.entries))
	for k, c := range b.entries {
		shifted[k] = c.SubClamped(min)
	}
	if err := b.w.increaseLbAndNegCost(min); err != nil {
		return -1, err
	}
	c := &NaryConstraint{
		baseConstraint: baseConstraint{scope: b.scope, connected: true},
		DefaultCost:    shiftedDefault,
		sparse:         shifted,
		expected:       b.expected,
	}
	b.w.connect(c)
	return len(b.w.Constraints) - 1, nil
}

// PostArithmetic posts an arithmetic constraint x <kind> y + offset
// between two variables (spec §4.3/§6.2).
func (w *WCSP) PostArithmetic(x, y int, kind ArithKind, offset int) (int, error) {
	if err := w.validateScope([]int{x, y}, 2); err != nil {
		return -1, err
	}
	c := &ArithmeticConstraint{baseConstraint: baseConstraint{scope: []int{x, y}, connected: true}, Kind: kind, Offset: offset}
	w.connect(c)
	return len(w.Constraints) - 1, nil
}

// PostSoftDisjunction posts an "sdisj" arithmetic constraint (spec §4.3):
// a disjunction between two linear conditions on x and y that, instead of
// being hard-forbidden, costs costXTrue or costYTrue when only one side
// holds.
func (w *WCSP) PostSoftDisjunction(x, y int, offset int, costXTrue, costYTrue Cost) (int, error) {
	if err := w.validateScope([]int{x, y}, 2); err != nil {
		return -1, err
	}
	sx, err := w.scaleOne(costXTrue)
	if err != nil {
		return -1, err
	}
	sy, err := w.scaleOne(costYTrue)
	if err != nil {
		return -1, err
	}
	c := &ArithmeticConstraint{
		baseConstraint: baseConstraint{scope: []int{x, y}, connected: true},
		Kind:           ArithSDisj,
		Offset:         offset,
		CostXTrue:      sx,
		CostYTrue:      sy,
	}
	w.connect(c)
	return len(w.Constraints) - 1, nil
}

// PostKnapsack posts a linear 0/1 constraint sum(coeffs[i] * lit_i) >=
// capacity over scope, where lit_i is the positive literal of scope[i]
// unless negated[i] is true (spec §4.3). negated may be nil, meaning no
// literal is negated.
func (w *WCSP) PostKnapsack(scope []int, coeffs []int64, negated []bool, capacity int64) (int, error) {
	return w.postLinear(scope, coeffs, negated, capacity, false)
}

// PostClique posts a linear 0/1 constraint using the same representation
// as PostKnapsack, flagged as a clique cover for callers that want to
// distinguish the two at inspection time (spec §3).
func (w *WCSP) PostClique(scope []int, coeffs []int64, negated []bool, capacity int64) (int, error) {
	return w.postLinear(scope, coeffs, negated, capacity, true)
}

func (w *WCSP) postLinear(scope []int, coeffs []int64, negated []bool, capacity int64, isClique bool) (int, error) {
	if err := w.validateScope(scope, -1); err != nil {
		return -1, err
	}
	if len(coeffs) != len(scope) {
		return -1, &FormatError{Msg: fmt.Sprintf("linear constraint has %d coefficients, want %d (scope size)", len(coeffs), len(scope))}
	}
	if negated != nil && len(negated) != len(scope) {
		return -1, &FormatError{Msg: fmt.Sprintf("linear constraint has %d negation flags, want %d", len(negated), len(scope))}
	}
	cp := make([]int64, len(coeffs))
	copy(cp, coeffs)
	var neg []bool
	if negated != nil {
		neg = make([]bool, len(negated))
		copy(neg, negated)
	} else {
		neg = make([]bool, len(scope))
	}
	c := &LinearConstraint{
		baseConstraint: baseConstraint{scope: scope, connected: true},
		Coeffs:         cp,
		Negated:        neg,
		Capacity:       capacity,
		IsClique:       isClique,
	}
	w.connect(c)
	return len(w.Constraints) - 1, nil
}

// scaleOne applies the multiplier to a single raw cost and folds a
// negative result into negCost, returning a non-negative Cost (spec
// §4.3(c)). Top is the forbidden sentinel and is returned unchanged.
func (w *WCSP) scaleOne(raw Cost) (Cost, error) {
	if raw.IsTop() {
		return Top, nil
	}
	scaled, err := ApplyMultiplier(int64(raw), w.Options.Multiplier)
	if err != nil {
		return 0, &OverflowError{Msg: err.Error()}
	}
	if scaled < 0 {
		w.AddNegCost(Cost(-scaled))
		return MinCost, nil
	}
	result := Cost(scaled)
	return ApplyMediumMultiplier(result, w.Ub()), nil
}

// scaleAndShift applies the multiplier to every entry of costs and
// performs initial cost shifting: if some scaled entry is negative, the
// whole table is raised by the magnitude of the most negative one and that
// amount is added to negCost; it then returns the table plus its remaining
// minimum cost, which the caller must fold into lb/negCost via
// increaseLbAndNegCost (spec §4.3(d)). Top entries stay Top.
func (w *WCSP) scaleAndShift(costs []Cost) ([]Cost, Cost, error) {
	scaled := make([]Cost, len(costs))
	var lowest Cost
	for i, raw := range costs {
		scaled[i] = Top
		if !raw.IsTop() {
			s, err := ApplyMultiplier(int64(raw), w.Options.Multiplier)
			if err != nil {
				return nil, 0, &OverflowError{Msg: err.Error()}
			}
			scaled[i] = Cost(s)
		}
		if scaled[i] < lowest {
			lowest = scaled[i]
		}
	}
	w.AddNegCost(-lowest)
	min := Top
	for i, s := range scaled {
		if !s.IsTop() {
			scaled[i] = ApplyMediumMultiplier(s-lowest, w.Ub())
		}
		if scaled[i] < min {
			min = scaled[i]
		}
	}
	if min > MinCost {
		for i := range scaled {
			scaled[i] = scaled[i].SubClamped(min)
		}
	} else {
		min = MinCost
	}
	return scaled, min, nil
}

// increaseLbAndNegCost folds a shift extracted from a cost table into both
// lb and negCost, the way every builder posting method does once it has
// subtracted a table's minimum (spec §4.3(d), §4.5).
func (w *WCSP) increaseLbAndNegCost(shift Cost) error {
	if shift <= MinCost {
		return nil
	}
	w.AddNegCost(shift)
	return w.IncreaseLb(shift)
}
