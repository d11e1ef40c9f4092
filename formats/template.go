package formats

import (
	"fmt"
	"strconv"

	"github.com/crillab/gowcsp/wcsp"
)

// templateParams is the parameter stream a CFN global-constraint block
// assembles before handing it to postDecomposable (spec §6.1: "The parser
// assembles a parameter stream and hands it to postDecomposable"). Only
// the fields a given template needs are populated; the rest stay at their
// zero value.
type templateParams struct {
	keyword string  // K: e.g. "var", "dec", "ge", "le", "eq"
	cost    wcsp.Cost
	min, max int
	values  []int
	coeffs  []int64
	rhs     int64
	cards   []wcsp.Cardinality
}

// postTemplate expands one CFN global-constraint declaration (spec §6.2's
// catalogue) into calls on the builder API. It covers the subset package
// wcsp decomposes directly (salldiff, sgcc, samong, wsum) plus the two
// names that map straight onto the linear builder (knapsack, clique); any
// other catalogue name is rejected as unimplemented rather than silently
// dropped; propagator-only ("monolithic") globals are out of scope for a
// loader (spec §3 "Monolithic global").
func postTemplate(w *wcsp.WCSP, template string, scope []int, p templateParams) error {
	switch template {
	case "salldiff", "salldiffdp":
		return w.PostDecomposable(wcsp.GlobalAllDiff, scope, nil, p.cost)
	case "sgcc", "sgccdp", "wgcc":
		if len(p.cards) == 0 {
			return &wcsp.StructuralError{Msg: fmt.Sprintf("%s: missing bounds list", template)}
		}
		return w.PostDecomposable(wcsp.GlobalGCC, scope, p.cards, p.cost)
	case "samong", "samongdp", "wamong":
		return w.PostDecomposable(wcsp.GlobalAmong, scope, wcsp.NewAmongParams(p.min, p.max, p.values), p.cost)
	case "wsum", "wvarsum":
		kind, err := parseComparisonKeyword(p.keyword)
		if err != nil {
			return err
		}
		return w.PostDecomposable(wcsp.GlobalWSum, scope, wcsp.WSumParams{Coeffs: p.coeffs, Kind: kind, RHS: p.rhs}, p.cost)
	case "knapsack":
		negated := make([]bool, len(p.coeffs))
		_, err := w.PostKnapsack(scope, p.coeffs, negated, p.rhs)
		return err
	case "clique":
		negated := make([]bool, len(p.coeffs))
		_, err := w.PostClique(scope, p.coeffs, negated, p.rhs)
		return err
	default:
		return &wcsp.StructuralError{Msg: fmt.Sprintf("global constraint template %q is not implemented by this loader", template)}
	}
}

func parseComparisonKeyword(k string) (wcsp.ArithKind, error) {
	switch k {
	case "ge", ">=":
		return wcsp.ArithGE, nil
	case "gt", ">":
		return wcsp.ArithGT, nil
	case "le", "<=":
		return wcsp.ArithLE, nil
	case "lt", "<":
		return wcsp.ArithLT, nil
	case "eq", "=", "==":
		return wcsp.ArithEQ, nil
	default:
		return 0, &wcsp.FormatError{Msg: fmt.Sprintf("unknown comparison keyword %q", k)}
	}
}

// parseTemplateInt is a small helper for the CFN parser below: numeric
// template fields (N, v, C, c codes of spec §6.2) are plain tokens.
func parseTemplateInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &wcsp.FormatError{Token: tok, Msg: "expected an integer template field"}
	}
	return v, nil
}
