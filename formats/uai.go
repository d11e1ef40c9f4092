package formats

import (
	"fmt"
	"io"
	"math"

	"github.com/crillab/gowcsp/wcsp"
)

// ParseUAI reads the UAI/LG declarative graphical-model format (spec
// §4.4, §6.1): a MARKOV/BAYES header, N domain sizes, a factor-scope
// section, then a sequential table of probabilities (or log-probabilities
// for LG files, via the log argument). Probabilities are converted to
// costs via -log(p/max(p))*NormFactor, with a Markov shift accumulator
// returned so callers can add it back to a reported solution cost.
func ParseUAI(r io.Reader, opts wcsp.Options, isLog bool) (w *wcsp.WCSP, shift float64, err error) {
	lx := newLexer(r)

	kind, err := lx.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("uai: reading model kind: %v", err)
	}
	if kind != "MARKOV" && kind != "BAYES" {
		return nil, 0, &wcsp.FormatError{Msg: fmt.Sprintf("uai: unknown model kind %q", kind)}
	}

	n, err := lx.Int()
	if err != nil {
		return nil, 0, fmt.Errorf("uai: reading N: %v", err)
	}
	w = wcsp.NewWithOptions("uai", opts)
	domainSizes := make([]int, n)
	for i := 0; i < n; i++ {
		d, err := lx.Int()
		if err != nil {
			return nil, 0, fmt.Errorf("uai: reading domain size %d: %v", i, err)
		}
		domainSizes[i] = d
		if _, err := w.MakeEnumeratedVariable(fmt.Sprintf("v%d", i), d); err != nil {
			return nil, 0, err
		}
	}

	numFactors, err := lx.Int()
	if err != nil {
		return nil, 0, fmt.Errorf("uai: reading number of factors: %v", err)
	}
	scopes := make([][]int, numFactors)
	for i := 0; i < numFactors; i++ {
		arity, err := lx.Int()
		if err != nil {
			return nil, 0, fmt.Errorf("uai: reading factor %d arity: %v", i, err)
		}
		scope := make([]int, arity)
		for j := 0; j < arity; j++ {
			v, err := lx.Int()
			if err != nil {
				return nil, 0, fmt.Errorf("uai: reading factor %d scope %d: %v", i, j, err)
			}
			scope[j] = v
		}
		scopes[i] = scope
	}

	for i := 0; i < numFactors; i++ {
		count, err := lx.Int()
		if err != nil {
			return nil, 0, fmt.Errorf("uai: reading factor %d table size: %v", i, err)
		}
		probs := make([]float64, count)
		maxP := math.Inf(-1)
		for j := 0; j < count; j++ {
			v, err := lx.Float()
			if err != nil {
				return nil, 0, fmt.Errorf("uai: reading factor %d entry %d: %v", i, j, err)
			}
			probs[j] = v
			if v > maxP {
				maxP = v
			}
		}
		costs := make([]wcsp.Cost, count)
		for j, p := range probs {
			var logP float64
			if isLog {
				logP = p - maxP
			} else {
				if p <= 0 {
					costs[j] = wcsp.Top
					continue
				}
				logP = math.Log(p / maxP)
			}
			costRaw := -logP * opts.UAINormFactor
			if costRaw < 0 {
				costRaw = 0
			}
			costs[j] = wcsp.Cost(int64(costRaw + 0.5))
		}
		if isLog {
			shift += maxP
		} else {
			shift += math.Log(maxP)
		}
		if err := postFactor(w, scopes[i], domainSizes, costs); err != nil {
			return nil, 0, err
		}
	}

	w.SortConstraints()
	return w, shift, nil
}

func postFactor(w *wcsp.WCSP, scope []int, domainSizes []int, costs []wcsp.Cost) error {
	switch len(scope) {
	case 0:
		nb, err := w.PostNaryBegin(nil, costs[0], 0)
		if err != nil {
			return err
		}
		_, err = nb.PostNaryEnd()
		return err
	case 1:
		_, err := w.PostUnary(scope[0], costs)
		return err
	case 2:
		_, err := w.PostBinary(scope[0], scope[1], costs)
		return err
	case 3:
		_, err := w.PostTernary(scope[0], scope[1], scope[2], costs)
		return err
	default:
		sizes := make([]int, len(scope))
		for i, v := range scope {
			sizes[i] = domainSizes[v]
		}
		nb, err := w.PostNaryBegin(scope, 0, len(costs))
		if err != nil {
			return err
		}
		for idx, c := range costs {
			if err := nb.PostNaryTuple(unindex(idx, sizes), c); err != nil {
				return err
			}
		}
		_, err = nb.PostNaryEnd()
		return err
	}
}
