package formats

import (
	"fmt"
	"io"
	"math"

	"github.com/crillab/gowcsp/wcsp"
)

// ParseQPBO reads the QPBO format (spec §4.4, §6.1): a first line N
// (positive means {0,1} domains, negative means {1,-1} domains), a second
// line M (positive means minimize, negative means maximize), then M
// triples (i, j, coef) with 1-based indices. Diagonal entries (i==j)
// become unary costs; off-diagonal entries become binary costs, scaled by
// QPBOMultiplier (which never touches diagonal coefficients). Every
// branch below mirrors tb2reader.cpp's read_qpbo term for term: costs are
// always posted non-negative, and a coefficient's sign/minimize-vs-
// maximize combination decides which value index takes the magnitude and
// whether negCost is shifted by hand, rather than relying on a generic
// post-hoc sign flip. ParseQPBO computes a problem-derived upper bound
// from the sum of all (doubled) coefficients and calls wcsp.WCSP.UpdateUb
// with it before posting any cost function (the CFN and WCNF parsers
// instead call it after their last cost function).
func ParseQPBO(r io.Reader, opts wcsp.Options) (*wcsp.WCSP, error) {
	lx := newLexer(r)

	rawN, err := lx.Int()
	if err != nil {
		return nil, fmt.Errorf("qpbo: reading N: %v", err)
	}
	booldom := rawN >= 0 // true means {0,1} domains, false means {1,-1}
	n := rawN
	if !booldom {
		n = -n
	}

	rawM, err := lx.Int()
	if err != nil {
		return nil, fmt.Errorf("qpbo: reading M: %v", err)
	}
	minimize := rawM >= 0
	m := rawM
	if !minimize {
		m = -m
	}

	type triple struct {
		i, j int
		coef float64
	}
	triples := make([]triple, 0, m)
	for e := 0; e < m; e++ {
		i, err := lx.Int()
		if err != nil {
			return nil, fmt.Errorf("qpbo: triple %d: reading i: %v", e, err)
		}
		j, err := lx.Int()
		if err != nil {
			return nil, fmt.Errorf("qpbo: triple %d: reading j: %v", e, err)
		}
		coef, err := lx.Float()
		if err != nil {
			return nil, fmt.Errorf("qpbo: triple %d: reading coefficient: %v", e, err)
		}
		if i < 1 || i > n || j < 1 || j > n {
			return nil, &wcsp.FormatError{Msg: fmt.Sprintf("qpbo: triple %d references out-of-range variable (%d,%d)", e, i, j)}
		}
		triples = append(triples, triple{i, j, coef})
	}

	// The minimize/maximize sign is resolved explicitly, branch by branch,
	// below; the builder's own multiplier must stay neutral so it does not
	// apply a second, conflicting sign flip on top.
	opts.Multiplier = 1
	w := wcsp.NewWithOptions("qpbo", opts)
	for i := 0; i < n; i++ {
		if _, err := w.MakeEnumeratedVariable(fmt.Sprintf("x%d", i), 2); err != nil {
			return nil, err
		}
	}

	multiplier := math.Pow10(opts.Precision)
	scale := func(v float64) wcsp.Cost { return wcsp.Cost(int64(multiplier*v + 0.5)) }

	var sumcost float64
	for _, t := range triples {
		sumcost += 2 * math.Abs(t.coef)
	}
	if err := w.UpdateUb(scale(sumcost) + 1); err != nil {
		return nil, err
	}

	unary0 := make([]wcsp.Cost, n)
	unary1 := make([]wcsp.Cost, n)
	qm := float64(opts.QPBOMultiplier)

	for _, t := range triples {
		i, j, coef := t.i-1, t.j-1, t.coef
		if i == j {
			switch {
			case booldom && coef > 0 && minimize:
				unary1[i] += scale(coef)
			case booldom && coef > 0 && !minimize:
				unary0[i] += scale(coef)
				w.AddNegCost(scale(coef))
			case booldom && coef <= 0 && minimize:
				unary0[i] += scale(-coef)
				w.AddNegCost(scale(-coef))
			case booldom && coef <= 0 && !minimize:
				unary1[i] += scale(-coef)
			case !booldom && coef > 0 && minimize:
				unary0[i] += scale(2 * coef)
				w.AddNegCost(scale(coef))
			case !booldom && coef > 0 && !minimize:
				unary1[i] += scale(2 * coef)
				w.AddNegCost(scale(coef))
			case !booldom && coef <= 0 && minimize:
				unary1[i] += scale(-2 * coef)
				w.AddNegCost(scale(-coef))
			case !booldom && coef <= 0 && !minimize:
				unary0[i] += scale(-2 * coef)
				w.AddNegCost(scale(-coef))
			}
			continue
		}

		// costs is indexed (x*2+y) over (value of i, value of j), the
		// same row-major convention as wcsp.BinaryConstraint.
		costs := make([]wcsp.Cost, 4)
		switch {
		case booldom && coef > 0 && minimize:
			costs[3] = scale(qm * coef)
		case booldom && coef > 0 && !minimize:
			costs[0] = scale(qm * coef)
			costs[1], costs[2] = costs[0], costs[0]
			w.AddNegCost(costs[0])
		case booldom && coef <= 0 && minimize:
			costs[0] = scale(qm * -coef)
			costs[1], costs[2] = costs[0], costs[0]
			w.AddNegCost(costs[0])
		case booldom && coef <= 0 && !minimize:
			costs[3] = scale(qm * -coef)
		case !booldom && coef > 0 && minimize:
			costs[0] = scale(qm * 2 * coef)
			costs[3] = costs[0]
			w.AddNegCost(scale(qm * coef))
		case !booldom && coef > 0 && !minimize:
			costs[1] = scale(qm * 2 * coef)
			costs[2] = costs[1]
			w.AddNegCost(scale(qm * coef))
		case !booldom && coef <= 0 && minimize:
			costs[1] = scale(qm * -2 * coef)
			costs[2] = costs[1]
			w.AddNegCost(scale(qm * -coef))
		case !booldom && coef <= 0 && !minimize:
			costs[0] = scale(qm * -2 * coef)
			costs[3] = costs[0]
			w.AddNegCost(scale(qm * -coef))
		}
		if _, err := w.PostBinary(i, j, costs); err != nil {
			return nil, err
		}
	}

	for i := 0; i < n; i++ {
		if unary0[i] > 0 || unary1[i] > 0 {
			if _, err := w.PostUnary(i, []wcsp.Cost{unary0[i], unary1[i]}); err != nil {
				return nil, err
			}
		}
	}

	w.SortConstraints()
	return w, nil
}
