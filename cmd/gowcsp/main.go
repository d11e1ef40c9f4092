// Command gowcsp loads a weighted constraint satisfaction problem from one
// of the six surface formats and reports its bounds. It does not search:
// branch-and-bound is out of this module's scope.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/crillab/gowcsp/formats"
	"github.com/crillab/gowcsp/wcsp"
)

func main() {
	var (
		verbose    bool
		precision  int
		extUb      int64
		qpboMult   int64
		normFactor float64
		evidence   string
		isLog      bool
	)
	flag.BoolVar(&verbose, "verbose", false, "sets verbose mode on")
	flag.IntVar(&precision, "precision", 0, "number of fractional decimal digits costs are declared with")
	flag.Int64Var(&extUb, "ub", 0, "external upper bound (0 means not set)")
	flag.Int64Var(&qpboMult, "qpbo-multiplier", 1, "scales quadratic coefficients read from a QPBO file")
	flag.Float64Var(&normFactor, "uai-norm", 1, "Markov/Bayes normalization factor for UAI/LG costs")
	flag.StringVar(&evidence, "evidence", "", "path to a UAI evidence file")
	flag.BoolVar(&isLog, "log-domain", false, "treat a .uai file's table entries as log-probabilities")
	flag.Parse()
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Syntax : %s [options] (file.wcsp|file.cfn|file.wcnf|file.cnf|file.uai|file.opb|file.qpbo)\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Args()[0]

	opts := wcsp.DefaultOptions()
	opts.Verbose = verbose
	opts.Precision = precision
	opts.ExternalUB = wcsp.Cost(extUb)
	opts.QPBOMultiplier = qpboMult
	opts.UAINormFactor = normFactor
	opts.EvidenceFile = evidence

	fmt.Printf("c loading %s\n", path)
	w, err := load(path, opts, isLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load problem: %v\n", err)
		os.Exit(1)
	}
	report(w)
}

// load dispatches to the right formats.Parse* call by file extension.
func load(path string, opts wcsp.Options, isLog bool) (*wcsp.WCSP, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".cfn") || strings.HasSuffix(path, ".json"):
		return formats.ParseCFN(f, opts)
	case strings.HasSuffix(path, ".wcsp"):
		return formats.ParseLegacy(f, opts)
	case strings.HasSuffix(path, ".wcnf") || strings.HasSuffix(path, ".cnf"):
		w, posted, err := formats.ParseWCNF(f, opts)
		if err != nil {
			return nil, err
		}
		fmt.Printf("c %d clauses posted\n", posted)
		return w, nil
	case strings.HasSuffix(path, ".uai") || strings.HasSuffix(path, ".lg"):
		w, shift, err := formats.ParseUAI(f, opts, isLog || strings.HasSuffix(path, ".lg"))
		if err != nil {
			return nil, err
		}
		fmt.Printf("c Markov shift %g\n", shift)
		return w, nil
	case strings.HasSuffix(path, ".opb"):
		return formats.ParseOPB(f, opts)
	case strings.HasSuffix(path, ".qpbo"):
		return formats.ParseQPBO(f, opts)
	default:
		return nil, fmt.Errorf("invalid file format for %q", path)
	}
}

// report prints the same lb/ub/negCost triple a caller would otherwise
// have to dig out of the WCSP by hand, as DIMACS-style "c " comment lines,
// then UNSAT when lb >= ub and UNKNOWN otherwise.
func report(w *wcsp.WCSP) {
	fmt.Printf("c problem %q: %d variables, %d constraints\n", w.Name, w.NumberOfVariables(), len(w.Constraints))
	fmt.Printf("c lb %d\nc ub %d\nc negCost %d\n", w.Lb(), w.Ub(), w.NegCost)
	if w.Lb() >= w.Ub() {
		fmt.Println("UNSAT")
		return
	}
	fmt.Println("UNKNOWN")
}
