package formats

import (
	"fmt"
	"io"

	"github.com/crillab/gowcsp/wcsp"
)

// sharedTable is a previously loaded table kept around so that a later
// block in the same file can reuse it via a negative tuple count (spec
// §4.4, §9 "table sharing").
type sharedTable struct {
	arity       int
	defaultCost wcsp.Cost
	tuples      map[string]wcsp.Cost // keyed the same way wcsp.Tuple.Key encodes
	order       []wcsp.Tuple         // insertion order, for deterministic re-emission
}

// ParseLegacy reads the legacy WCSP text format (spec §4.4, §6.1): header
// line `<name> N maxDomain C UB`, a line of N domain sizes (negative means
// interval), then C cost-function blocks.
func ParseLegacy(r io.Reader, opts wcsp.Options) (*wcsp.WCSP, error) {
	lx := newLexer(r)

	name, err := lx.Token()
	if err != nil {
		return nil, fmt.Errorf("legacy wcsp: reading name: %v", err)
	}
	n, err := lx.Int()
	if err != nil {
		return nil, fmt.Errorf("legacy wcsp: reading N: %v", err)
	}
	if _, err := lx.Int(); err != nil { // maxDomain, informational only
		return nil, fmt.Errorf("legacy wcsp: reading maxDomain: %v", err)
	}
	numFuncs, err := lx.Int()
	if err != nil {
		return nil, fmt.Errorf("legacy wcsp: reading C: %v", err)
	}
	ubTok, err := lx.Token()
	if err != nil {
		return nil, fmt.Errorf("legacy wcsp: reading UB: %v", err)
	}
	fileUbRaw, err := wcsp.ParseDecimalCost(ubTok, opts.Precision)
	if err != nil {
		return nil, fmt.Errorf("legacy wcsp: UB %q: %v", ubTok, err)
	}

	w := wcsp.NewWithOptions(name, opts)
	if fileUbRaw > 0 {
		w.UpdateUb(wcsp.Cost(fileUbRaw))
	}

	for i := 0; i < n; i++ {
		d, err := lx.Int()
		if err != nil {
			return nil, fmt.Errorf("legacy wcsp: reading domain size for variable %d: %v", i, err)
		}
		if d < 0 {
			if _, err := w.MakeIntervalVariable(fmt.Sprintf("v%d", i), 0, -d-1); err != nil {
				return nil, err
			}
		} else {
			if _, err := w.MakeEnumeratedVariable(fmt.Sprintf("v%d", i), d); err != nil {
				return nil, err
			}
		}
	}

	var shared []sharedTable
	unary := &unaryAccumulator{}
	for i := 0; i < numFuncs; i++ {
		if err := parseLegacyBlock(lx, w, &shared, unary); err != nil {
			return nil, fmt.Errorf("legacy wcsp: function block %d: %v", i, err)
		}
	}
	for _, v := range unary.order {
		if _, err := w.PostUnary(v, unary.costs[v]); err != nil {
			return nil, fmt.Errorf("legacy wcsp: posting merged unary costs for variable %d: %v", v, err)
		}
	}

	if fileUbRaw > 0 {
		if err := w.UpdateUb(wcsp.Cost(fileUbRaw)); err != nil {
			return nil, err
		}
	}
	w.SortConstraints()
	return w, nil
}

// unaryAccumulator gathers unary costs for a variable across possibly
// several function blocks before a single PostUnary call commits them,
// merging additively, the way tb2reader.cpp's TemporaryUnaryConstraint
// vector accumulates per-variable unary costs until the whole file has
// been read.
type unaryAccumulator struct {
	order []int // variable indices in first-seen order
	costs map[int][]wcsp.Cost
}

func (u *unaryAccumulator) add(v int, table []wcsp.Cost) {
	if u.costs == nil {
		u.costs = make(map[int][]wcsp.Cost)
	}
	existing, ok := u.costs[v]
	if !ok {
		existing = make([]wcsp.Cost, len(table))
		u.order = append(u.order, v)
	}
	for i, c := range table {
		existing[i] += c
	}
	u.costs[v] = existing
}

func parseLegacyBlock(lx *lexer, w *wcsp.WCSP, shared *[]sharedTable, unary *unaryAccumulator) error {
	rawArity, err := lx.Int()
	if err != nil {
		return fmt.Errorf("reading arity: %v", err)
	}
	isSharing := rawArity < 0
	arity := rawArity
	if isSharing {
		arity = -arity
	}

	scope := make([]int, arity)
	for i := 0; i < arity; i++ {
		v, err := lx.Int()
		if err != nil {
			return fmt.Errorf("reading scope variable %d: %v", i, err)
		}
		scope[i] = v
	}

	defTok, err := lx.Token()
	if err != nil {
		return fmt.Errorf("reading default cost: %v", err)
	}
	defRaw, err := wcsp.ParseDecimalCost(defTok, w.Options.Precision)
	if err != nil {
		return fmt.Errorf("default cost %q: %v", defTok, err)
	}
	defCost, negShift := signedToCost(defRaw)
	w.AddNegCost(negShift)

	numTuples, err := lx.Int()
	if err != nil {
		return fmt.Errorf("reading tuple count: %v", err)
	}

	var table sharedTable
	if numTuples < 0 {
		idx := -numTuples - 1
		if idx < 0 || idx >= len(*shared) {
			return fmt.Errorf("tuple count %d references unknown shared table", numTuples)
		}
		table = (*shared)[idx]
		if table.arity != arity {
			return &wcsp.StructuralError{Msg: fmt.Sprintf("shared table arity %d does not match block arity %d", table.arity, arity)}
		}
		// The reusing block keeps its own default cost (already parsed
		// above) but borrows the shared table's explicit tuples.
		table.defaultCost = defCost
	} else {
		table = sharedTable{arity: arity, defaultCost: defCost, tuples: make(map[string]wcsp.Cost, numTuples)}
		for i := 0; i < numTuples; i++ {
			tuple := make(wcsp.Tuple, arity)
			for j := 0; j < arity; j++ {
				v, err := lx.Int()
				if err != nil {
					return fmt.Errorf("reading tuple %d value %d: %v", i, j, err)
				}
				tuple[j] = v
			}
			cTok, err := lx.Token()
			if err != nil {
				return fmt.Errorf("reading tuple %d cost: %v", i, err)
			}
			raw, err := wcsp.ParseDecimalCost(cTok, w.Options.Precision)
			if err != nil {
				return fmt.Errorf("tuple %d cost %q: %v", i, cTok, err)
			}
			cost, shift := signedToCost(raw)
			w.AddNegCost(shift)
			key := tuple.Key()
			if _, dup := table.tuples[key]; dup {
				return &wcsp.StructuralError{Msg: fmt.Sprintf("duplicate tuple %v", []int(tuple))}
			}
			table.tuples[key] = cost
			table.order = append(table.order, tuple)
		}
	}
	if isSharing {
		*shared = append(*shared, table)
	}

	if arity == 1 {
		d := w.Var(scope[0]).InitDomainSize()
		unary.add(scope[0], fullTable([]int{d}, table.defaultCost, table.tuples, table.order))
		return nil
	}
	return postTable(w, scope, table.defaultCost, table.tuples, table.order)
}

// signedToCost splits a signed raw cost into a non-negative Cost plus a
// shift to fold into negCost, for formats (legacy, CFN) that may carry
// negative costs directly in their tables rather than through a global
// multiplier (spec §3 negCost contract).
func signedToCost(raw int64) (wcsp.Cost, wcsp.Cost) {
	if raw >= 0 {
		return wcsp.Cost(raw), wcsp.MinCost
	}
	return wcsp.MinCost, wcsp.Cost(-raw)
}

// postTable materialises a (possibly sparse) table over scope into the
// right builder call by arity: full Cartesian tables for arity <= 3,
// sparse n-ary otherwise (spec §3 "Tabular-n-ary (arity >= 4)").
func postTable(w *wcsp.WCSP, scope []int, defaultCost wcsp.Cost, tuples map[string]wcsp.Cost, order []wcsp.Tuple) error {
	switch len(scope) {
	case 0:
		nb, err := w.PostNaryBegin(nil, defaultCost, 0)
		if err != nil {
			return err
		}
		_, err = nb.PostNaryEnd()
		return err
	case 1:
		d := w.Var(scope[0]).InitDomainSize()
		costs := fullTable([]int{d}, defaultCost, tuples, order)
		_, err := w.PostUnary(scope[0], costs)
		return err
	case 2:
		dx, dy := w.Var(scope[0]).InitDomainSize(), w.Var(scope[1]).InitDomainSize()
		costs := fullTable([]int{dx, dy}, defaultCost, tuples, order)
		_, err := w.PostBinary(scope[0], scope[1], costs)
		return err
	case 3:
		dx, dy, dz := w.Var(scope[0]).InitDomainSize(), w.Var(scope[1]).InitDomainSize(), w.Var(scope[2]).InitDomainSize()
		costs := fullTable([]int{dx, dy, dz}, defaultCost, tuples, order)
		_, err := w.PostTernary(scope[0], scope[1], scope[2], costs)
		return err
	default:
		sizes := make([]int, len(scope))
		for i, v := range scope {
			sizes[i] = w.Var(v).InitDomainSize()
		}
		nb, err := w.PostNaryBegin(scope, defaultCost, len(order))
		if err != nil {
			return err
		}
		for _, t := range order {
			if err := nb.PostNaryTuple(t, tuples[t.Key()]); err != nil {
				return err
			}
		}
		_, err = nb.PostNaryEnd()
		return err
	}
}

func fullTable(sizes []int, defaultCost wcsp.Cost, tuples map[string]wcsp.Cost, order []wcsp.Tuple) []wcsp.Cost {
	total := 1
	for _, d := range sizes {
		total *= d
	}
	costs := make([]wcsp.Cost, total)
	for i := range costs {
		costs[i] = defaultCost
	}
	for _, t := range order {
		idx := 0
		for i, v := range t {
			idx = idx*sizes[i] + v
		}
		costs[idx] = tuples[t.Key()]
	}
	return costs
}
