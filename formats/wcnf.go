package formats

import (
	"fmt"
	"io"

	"github.com/crillab/gowcsp/wcsp"
)

// ParseWCNF reads DIMACS-style WCNF/CNF (spec §4.4, §6.1): a header line
// `p wcnf N C [top]` or `p cnf N C`, followed by clauses ending in 0. Each
// clause becomes a single-tuple n-ary cost function: the one tuple that
// falsifies every literal costs the clause weight, every other tuple costs
// zero. CNF clauses use unit weight and top = nbClauses+1. Tautological
// clauses (containing both a literal and its negation) are skipped (spec
// §4.4: "Tautological clauses are skipped").
//
// It returns the built WCSP and the number of clauses actually posted
// (skipping tautologies), so a caller can report "one fewer effective
// clause" the way spec scenario S3 expects.
func ParseWCNF(r io.Reader, opts wcsp.Options) (w *wcsp.WCSP, posted int, err error) {
	lx := newLexer(r, "c")

	if err := lx.Expect("p"); err != nil {
		return nil, 0, fmt.Errorf("wcnf: reading header: %v", err)
	}
	kind, err := lx.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("wcnf: reading format keyword: %v", err)
	}
	if kind != "wcnf" && kind != "cnf" {
		return nil, 0, &wcsp.FormatError{Msg: fmt.Sprintf("wcnf: unknown format keyword %q", kind)}
	}
	n, err := lx.Int()
	if err != nil {
		return nil, 0, fmt.Errorf("wcnf: reading N: %v", err)
	}
	nbClauses, err := lx.Int()
	if err != nil {
		return nil, 0, fmt.Errorf("wcnf: reading C: %v", err)
	}
	headerLine := lx.Line()
	var top wcsp.Cost
	weighted := kind == "wcnf"
	if weighted {
		if tok, err := lx.Peek(); err == nil && lx.Line() == headerLine {
			if v, ok := parseOptionalInt(tok); ok {
				lx.Token()
				top = wcsp.Cost(v)
			}
		}
	}
	if top == 0 {
		top = wcsp.Cost(nbClauses + 1)
	}

	w = wcsp.NewWithOptions("wcnf", opts)
	for i := 0; i < n; i++ {
		if _, err := w.MakeEnumeratedVariable(fmt.Sprintf("v%d", i), 2); err != nil {
			return nil, 0, err
		}
	}

	for c := 0; c < nbClauses; c++ {
		weight := wcsp.Cost(1)
		if weighted {
			wv, err := lx.Int64()
			if err != nil {
				return nil, 0, fmt.Errorf("wcnf: clause %d weight: %v", c, err)
			}
			weight = wcsp.Cost(wv)
		}
		lits, err := readClause(lx)
		if err != nil {
			return nil, 0, fmt.Errorf("wcnf: clause %d literals: %v", c, err)
		}
		if isTautology(lits) {
			continue
		}
		if err := postClauseCost(w, lits, weight); err != nil {
			return nil, 0, err
		}
		posted++
	}

	if err := w.UpdateUb(top); err != nil {
		return nil, 0, err
	}
	w.SortConstraints()
	return w, posted, nil
}

// parseOptionalInt reports whether tok parses cleanly as an int, without
// consuming it (the WCNF header's optional top value, spec §6.1).
func parseOptionalInt(tok string) (int, bool) {
	v := 0
	neg := false
	if tok == "" {
		return 0, false
	}
	for i, c := range tok {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int(c-'0')
	}
	if neg {
		v = -v
	}
	return v, true
}

// readClause reads literals up to and including the terminating 0 (the
// weight, if any, has already been consumed by the caller).
func readClause(lx *lexer) ([]int, error) {
	var lits []int
	for {
		v, err := lx.Int()
		if err != nil {
			return nil, err
		}
		if v == 0 {
			return lits, nil
		}
		lits = append(lits, v)
	}
}

func isTautology(lits []int) bool {
	seen := make(map[int]bool, len(lits))
	for _, l := range lits {
		if seen[-l] {
			return true
		}
		seen[l] = true
	}
	return false
}

// postClauseCost posts the single-tuple n-ary cost function for one
// clause: the falsifying tuple (every literal set to make it false) costs
// weight, everything else costs zero.
func postClauseCost(w *wcsp.WCSP, lits []int, weight wcsp.Cost) error {
	scope := make([]int, len(lits))
	tuple := make(wcsp.Tuple, len(lits))
	for i, l := range lits {
		v := l
		if v < 0 {
			v = -v
		}
		scope[i] = v - 1
		if l > 0 {
			tuple[i] = 0 // false
		} else {
			tuple[i] = 1 // true, negated literal is false when var is true... see below
		}
	}
	// A literal l is false exactly when var(l) takes the value that makes
	// l false: for a positive literal that's value 0, for a negated
	// literal that's value 1 (domain 0=false,1=true).
	nb, err := w.PostNaryBegin(scope, wcsp.MinCost, 1)
	if err != nil {
		return err
	}
	if err := nb.PostNaryTuple(tuple, weight); err != nil {
		return err
	}
	_, err = nb.PostNaryEnd()
	return err
}
