package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/crillab/gowcsp/wcsp"
)

// ParseOPB reads pseudo-Boolean optimisation input (spec §4.4, §6.1):
// an objective line `{min:|max:} term+ ;`, then any number of linear
// constraints `term+ {<=|=|>=} rhs;`. Terms are `coef varname`, and
// variables are declared implicitly on first use (the one format in this
// package that allows forward references, per spec §4.4 point 2). `=` is
// encoded as two knapsacks of opposite sign. Non-linear terms (products of
// variables) are compiled, at every arity, to sparse n-ary cost functions
// whose only non-default tuple is all-ones.
func ParseOPB(r io.Reader, opts wcsp.Options) (*wcsp.WCSP, error) {
	lx := newLexer(r, "*")
	w := wcsp.NewWithOptions("opb", opts)
	varIndex := make(map[string]int)

	declareVar := func(name string) int {
		if idx, ok := varIndex[name]; ok {
			return idx
		}
		idx, _ := w.MakeEnumeratedVariable(name, 2)
		varIndex[name] = idx
		return idx
	}

	kindTok, err := lx.Token()
	if err != nil {
		return nil, fmt.Errorf("opb: reading objective: %v", err)
	}
	minimize := true
	switch kindTok {
	case "min:":
		minimize = true
	case "max:":
		minimize = false
	default:
		return nil, &wcsp.FormatError{Msg: fmt.Sprintf("opb: expected min: or max:, got %q", kindTok)}
	}
	objTerms, err := readOPBTerms(lx, declareVar)
	if err != nil {
		return nil, fmt.Errorf("opb: reading objective terms: %v", err)
	}
	for _, t := range objTerms {
		coef := t.coef
		if !minimize {
			coef = -coef
		}
		if err := postOPBTerm(w, t.vars, coef); err != nil {
			return nil, err
		}
	}

	for !lx.AtEOF() {
		terms, err := readOPBTerms(lx, declareVar)
		if err != nil {
			return nil, fmt.Errorf("opb: reading constraint terms: %v", err)
		}
		opTok, err := lx.Token()
		if err != nil {
			return nil, fmt.Errorf("opb: reading comparator: %v", err)
		}
		rhsTok, err := lx.Token()
		if err != nil {
			return nil, fmt.Errorf("opb: reading rhs: %v", err)
		}
		rhsTok = strings.TrimSuffix(rhsTok, ";")
		rhs, err := wcsp.ParseDecimalCost(rhsTok, opts.Precision)
		if err != nil {
			return nil, fmt.Errorf("opb: rhs %q: %v", rhsTok, err)
		}
		if err := postLinearConstraint(w, terms, opTok, rhs); err != nil {
			return nil, err
		}
	}

	w.SortConstraints()
	return w, nil
}

type opbTerm struct {
	coef int64
	vars []int // one variable for a linear term, 2-3 for a product term
}

// readOPBTerms reads `coef var [* var]* ...` repeated (a product may also be
// written without spaces, as `var*var`) until a token ending in ';', a
// comparator (<=, >=, =), or EOF is seen.
func readOPBTerms(lx *lexer, declareVar func(string) int) ([]opbTerm, error) {
	var terms []opbTerm
	for {
		tok, err := lx.Peek()
		if err != nil {
			return terms, nil
		}
		if tok == "<=" || tok == ">=" || tok == "=" {
			return terms, nil
		}
		coefTok, err := lx.Token()
		if err != nil {
			return terms, nil
		}
		terminated := strings.HasSuffix(coefTok, ";")
		coefTok = strings.TrimSuffix(coefTok, ";")
		coef, err := parseSignedInt(coefTok)
		if err != nil {
			return nil, fmt.Errorf("term coefficient %q: %v", coefTok, err)
		}
		var vars []int
		if terminated {
			terms = append(terms, opbTerm{coef: coef, vars: vars})
			return terms, nil
		}
		for {
			nameTok, err := lx.Token()
			if err != nil {
				return nil, err
			}
			if nameTok == ";" {
				terms = append(terms, opbTerm{coef: coef, vars: vars})
				return terms, nil
			}
			final := strings.HasSuffix(nameTok, ";")
			nameTok = strings.TrimSuffix(nameTok, ";")
			for _, factor := range strings.Split(nameTok, "*") {
				if factor != "" {
					vars = append(vars, declareVar(factor))
				}
			}
			if final {
				terms = append(terms, opbTerm{coef: coef, vars: vars})
				return terms, nil
			}
			next, err := lx.Peek()
			if err != nil || next != "*" {
				break
			}
			lx.Token() // consume '*'
		}
		terms = append(terms, opbTerm{coef: coef, vars: vars})
	}
}

func parseSignedInt(tok string) (int64, error) {
	v, err := wcsp.ParseDecimalCost(tok, 0)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// postOPBTerm folds one objective term into the network: a plain linear
// term becomes a unary cost shift (added to the variable's unary table via
// increaseLb-style folding through PostUnary), and a product term of any
// arity becomes a sparse n-ary cost function whose only non-default tuple
// is all-ones.
func postOPBTerm(w *wcsp.WCSP, vars []int, coef int64) error {
	if len(vars) == 0 {
		nb, err := w.PostNaryBegin(nil, wcsp.Cost(coef), 0)
		if err != nil {
			return err
		}
		_, err = nb.PostNaryEnd()
		return err
	}
	if len(vars) == 1 {
		_, err := w.PostUnary(vars[0], []wcsp.Cost{0, wcsp.Cost(coef)})
		return err
	}
	allOnes := make(wcsp.Tuple, len(vars))
	for i := range allOnes {
		allOnes[i] = 1
	}
	nb, err := w.PostNaryBegin(vars, wcsp.MinCost, 1)
	if err != nil {
		return err
	}
	if err := nb.PostNaryTuple(allOnes, wcsp.Cost(coef)); err != nil {
		return err
	}
	_, err = nb.PostNaryEnd()
	return err
}

// postLinearConstraint posts `sum(coef_i * var_i) op rhs` as a knapsack
// (spec §4.4: "<=" and ">=" map directly; "=" is encoded as two knapsacks
// of opposite sign). PostKnapsack only accepts non-negative coefficients
// paired with a negated-literal flag, so a negative coef_i*x_i is rewritten
// as |coef_i|*(1-x_i) - |coef_i| first, which moves |coef_i| from the sum
// onto the capacity (toKnapsack below does this for an arbitrary sign of
// coefficient and of direction).
func postLinearConstraint(w *wcsp.WCSP, terms []opbTerm, op string, rhs int64) error {
	var scope []int
	var coeffs []int64
	for _, t := range terms {
		if len(t.vars) != 1 {
			return &wcsp.StructuralError{Msg: "opb: non-linear terms are only supported in the objective"}
		}
		scope = append(scope, t.vars[0])
		coeffs = append(coeffs, t.coef)
	}
	switch op {
	case ">=":
		abs, negated, capacity := toKnapsack(coeffs, rhs)
		_, err := w.PostKnapsack(scope, abs, negated, capacity)
		return err
	case "<=":
		flipped := negateCoeffs(coeffs)
		abs, negated, capacity := toKnapsack(flipped, -rhs)
		_, err := w.PostKnapsack(scope, abs, negated, capacity)
		return err
	case "=":
		abs, negated, capacity := toKnapsack(coeffs, rhs)
		if _, err := w.PostKnapsack(scope, abs, negated, capacity); err != nil {
			return err
		}
		flipped := negateCoeffs(coeffs)
		abs2, negated2, capacity2 := toKnapsack(flipped, -rhs)
		_, err := w.PostKnapsack(scope, abs2, negated2, capacity2)
		return err
	default:
		return &wcsp.FormatError{Msg: fmt.Sprintf("opb: unknown comparator %q", op)}
	}
}

// toKnapsack rewrites sum(coeffs[i]*x_i) >= rhs into the non-negative-
// coefficient, negated-literal form PostKnapsack expects.
func toKnapsack(coeffs []int64, rhs int64) (abs []int64, negated []bool, capacity int64) {
	abs = make([]int64, len(coeffs))
	negated = make([]bool, len(coeffs))
	capacity = rhs
	for i, c := range coeffs {
		if c < 0 {
			abs[i] = -c
			negated[i] = true
			capacity += -c
		} else {
			abs[i] = c
		}
	}
	return abs, negated, capacity
}

func negateCoeffs(v []int64) []int64 {
	out := make([]int64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}
