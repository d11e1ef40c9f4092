package wcsp

import "fmt"

// GlobalKind enumerates the subset of the global constraint catalogue of
// spec §6.2 this package decomposes directly (package formats' template
// engine maps catalogue names onto this set or onto PostKnapsack/PostClique,
// and rejects the rest).
type GlobalKind int

const (
	// GlobalAllDiff requires every variable in scope to take a distinct
	// value.
	GlobalAllDiff GlobalKind = iota
	// GlobalGCC ("global cardinality constraint") bounds how many times
	// each value may be used across scope.
	GlobalGCC
	// GlobalAmong bounds how many variables in scope take a value in a
	// given set.
	GlobalAmong
	// GlobalWSum bounds a weighted sum of scope variables' values against
	// a comparison operator and right-hand side, softly.
	GlobalWSum
)

// Cardinality bounds the number of occurrences of a single value, used by
// PostDecomposable's GCC and Among variants (spec §6.2).
type Cardinality struct {
	Value int
	Min   int
	Max   int
}

// PostDecomposable posts one global constraint from the catalogue subset
// above by expanding it into tabular cost functions: pairwise binary tables
// for all-diff, and one n-ary table over the whole scope per bound for
// GCC, Among and WSum. No auxiliary variables are created, and this package
// never introduces a single monolithic global cost function object. cost is applied as a uniform violation penalty (Top for a hard
// constraint).
func (w *WCSP) PostDecomposable(kind GlobalKind, scope []int, params interface{}, cost Cost) error {
	if err := w.validateScope(scope, -1); err != nil {
		return err
	}
	switch kind {
	case GlobalAllDiff:
		return w.decomposeAllDiff(scope, cost)
	case GlobalGCC:
		cards, ok := params.([]Cardinality)
		if !ok {
			return &StructuralError{Msg: "gcc decomposition requires []Cardinality params"}
		}
		return w.decomposeGCC(scope, cards, cost)
	case GlobalAmong:
		among, ok := params.(amongParams)
		if !ok {
			return &StructuralError{Msg: "among decomposition requires amongParams params (see NewAmongParams)"}
		}
		return w.decomposeAmong(scope, among.Cardinality, among.values, cost)
	case GlobalWSum:
		ws, ok := params.(WSumParams)
		if !ok {
			return &StructuralError{Msg: "wsum decomposition requires WSumParams params"}
		}
		return w.decomposeWSum(scope, ws, cost)
	default:
		return &StructuralError{Msg: fmt.Sprintf("unsupported global constraint kind %d", int(kind))}
	}
}

// amongParams is the concrete params type NewAmongParams builds for
// GlobalAmong: the Cardinality bound plus the set of values counted toward
// it.
type amongParams struct {
	Cardinality
	values []int
}

// NewAmongParams builds the params value PostDecomposable(GlobalAmong, ...)
// expects.
func NewAmongParams(min, max int, values []int) interface{} {
	return amongParams{Cardinality: Cardinality{Min: min, Max: max}, values: values}
}

// WSumParams configures a weighted-sum decomposition (spec §6.2 "wsum").
type WSumParams struct {
	Coeffs []int64
	Kind   ArithKind // GE/GT/LE/LT/EQ against RHS
	RHS    int64
}

// decomposeAllDiff posts a binary disequality cost function, at cost, for
// every pair in scope (the pairwise decomposition toulbar2 falls back to
// when not using a dedicated alldifferent propagator; spec §6.2 "salldiff
// decomposes into pairwise binary constraints").
func (w *WCSP) decomposeAllDiff(scope []int, cost Cost) error {
	for i := 0; i < len(scope); i++ {
		for j := i + 1; j < len(scope); j++ {
			if _, err := w.postPairwiseDisequality(scope[i], scope[j], cost); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *WCSP) postPairwiseDisequality(x, y int, cost Cost) (int, error) {
	dx := w.Variables[x].InitDomainSize()
	dy := w.Variables[y].InitDomainSize()
	costs := make([]Cost, dx*dy)
	for i := 0; i < dx; i++ {
		for j := 0; j < dy; j++ {
			if i == j {
				costs[i*dy+j] = cost
			}
		}
	}
	return w.PostBinary(x, y, costs)
}

// decomposeGCC posts one counting table per bounded value: for each
// Cardinality entry it builds an n-ary table over scope that counts
// occurrences of Value and costs `cost` for every tuple outside [Min,Max]
// (spec §6.2 "sgcc"). This is the direct, table-based decomposition; it is
// only tractable for small scopes, matching the way a reader falls back to
// an explicit table for small global constraints rather than building a
// counter-automaton.
func (w *WCSP) decomposeGCC(scope []int, cards []Cardinality, cost Cost) error {
	for _, card := range cards {
		if err := w.postCountBound(scope, []int{card.Value}, card.Min, card.Max, cost); err != nil {
			return err
		}
	}
	return nil
}

// decomposeAmong posts a single n-ary table over scope counting
// occurrences of any value in among.values, costing `cost` outside
// [among.Min, among.Max] (spec §6.2 "samong").
func (w *WCSP) decomposeAmong(scope []int, among Cardinality, values []int, cost Cost) error {
	return w.postCountBound(scope, values, among.Min, among.Max, cost)
}

// postCountBound posts an n-ary table over scope whose cost is `cost` for
// every tuple whose count of values-in-target falls outside [min,max], and
// zero otherwise. It enumerates the full Cartesian product of scope, so it
// is only used for the small scopes this decomposition targets.
func (w *WCSP) postCountBound(scope []int, target []int, min, max int, cost Cost) error {
	inTarget := make(map[int]bool, len(target))
	for _, v := range target {
		inTarget[v] = true
	}
	sizes := make([]int, len(scope))
	for i, vi := range scope {
		sizes[i] = w.Variables[vi].InitDomainSize()
	}
	total := product(sizes)
	b, err := w.PostNaryBegin(scope, MinCost, total)
	if err != nil {
		return err
	}
	tuple := make([]int, len(scope))
	var rec func(pos, count int) error
	rec = func(pos, count int) error {
		if pos == len(scope) {
			if count < min || count > max {
				t := make(Tuple, len(tuple))
				copy(t, tuple)
				return b.PostNaryTuple(t, cost)
			}
			return nil
		}
		for v := 0; v < sizes[pos]; v++ {
			tuple[pos] = v
			inc := 0
			if inTarget[v] {
				inc = 1
			}
			if err := rec(pos+1, count+inc); err != nil {
				return err
			}
		}
		return nil
	}
	if err := rec(0, 0); err != nil {
		return err
	}
	_, err = b.PostNaryEnd()
	return err
}

// decomposeWSum posts a single n-ary table over scope that costs `cost`
// for every tuple whose weighted sum fails the comparison against RHS
// (spec §6.2 "wsum"). Like decomposeGCC/decomposeAmong this is a direct
// table decomposition, tractable only for small scopes.
func (w *WCSP) decomposeWSum(scope []int, params WSumParams, cost Cost) error {
	if len(params.Coeffs) != len(scope) {
		return &FormatError{Msg: fmt.Sprintf("wsum has %d coefficients, want %d (scope size)", len(params.Coeffs), len(scope))}
	}
	sizes := make([]int, len(scope))
	for i, vi := range scope {
		sizes[i] = w.Variables[vi].InitDomainSize()
	}
	total := product(sizes)
	b, err := w.PostNaryBegin(scope, MinCost, total)
	if err != nil {
		return err
	}
	tuple := make([]int, len(scope))
	var rec func(pos int, sum int64) error
	rec = func(pos int, sum int64) error {
		if pos == len(scope) {
			if !satisfiesWSum(sum, params.Kind, params.RHS) {
				t := make(Tuple, len(tuple))
				copy(t, tuple)
				return b.PostNaryTuple(t, cost)
			}
			return nil
		}
		for v := 0; v < sizes[pos]; v++ {
			tuple[pos] = v
			if err := rec(pos+1, sum+params.Coeffs[pos]*int64(v)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := rec(0, 0); err != nil {
		return err
	}
	_, err = b.PostNaryEnd()
	return err
}

func satisfiesWSum(sum int64, kind ArithKind, rhs int64) bool {
	switch kind {
	case ArithGE:
		return sum >= rhs
	case ArithGT:
		return sum > rhs
	case ArithLE:
		return sum <= rhs
	case ArithLT:
		return sum < rhs
	case ArithEQ:
		return sum == rhs
	default:
		return true
	}
}
