package wcsp

import (
	"fmt"
	"log"
)

// Options collects the loader tunables described in spec §6.4. A single
// Options value is shared by a WCSP and every format parser that builds
// into it, the way gophersat's Solver.Verbose/Solver.Certified fields are
// set once and read throughout solving.
type Options struct {
	// Precision is the number of fractional decimal digits costs are
	// declared with (spec §4.1).
	Precision int
	// Multiplier is the global cost sign/scale (spec §4.1); typically +1
	// or -1.
	Multiplier Multiplier
	// ExternalUB is a caller-supplied upper bound (0 means "not set").
	ExternalUB Cost
	// DeltaUbAbsolute and DeltaUbRelativeGap configure the slack added to
	// the working upper bound (spec §4.5).
	DeltaUbAbsolute    Cost
	DeltaUbRelativeGap float64
	// QPBOMultiplier scales quadratic (off-diagonal) coefficients when
	// reading QPBO files (spec §6.4).
	QPBOMultiplier int64
	// UAINormFactor is the Markov/Bayes normalisation factor applied to
	// -log(p) costs when reading UAI/LG files (spec §4.4).
	UAINormFactor float64
	// EvidenceFile is the path to an optional UAI evidence file.
	EvidenceFile string
	// Verbose mirrors gophersat's Solver.Verbose: when true, UpdateUb
	// (which the bound-setting parsers call) logs a trace line through Log
	// each time it runs; no other code in this module logs.
	Verbose bool
	// Log receives verbose trace lines (format/args, printf-style). Nil
	// means log.Printf.
	Log Logger
}

// Logger is a printf-style sink for verbose trace output, the same shape
// as a log.Printf call. A nil Options.Log falls through to log.Printf via
// Options.logf.
type Logger func(format string, args ...interface{})

// logf writes a verbose trace line if o.Verbose is set, using o.Log when
// present and log.Printf otherwise.
func (o Options) logf(format string, args ...interface{}) {
	if !o.Verbose {
		return
	}
	if o.Log != nil {
		o.Log(format, args...)
		return
	}
	log.Printf(format, args...)
}

// DefaultOptions returns the Options a bare WCSP uses when none are
// supplied: precision 0, multiplier +1, no external bound or delta-ub
// slack.
func DefaultOptions() Options {
	return Options{
		Precision:      0,
		Multiplier:     1,
		QPBOMultiplier: 1,
		UAINormFactor:  1,
	}
}

// deltaUb computes the slack described in spec §4.5:
//
//	deltaUb = max(deltaUbAbsolute, deltaUbRelativeGap * ub_eff)
func (w *WCSP) deltaUb(ubEff Cost) Cost {
	rel := Cost(float64(ubEff) * w.Options.DeltaUbRelativeGap)
	if w.Options.DeltaUbAbsolute > rel {
		return w.Options.DeltaUbAbsolute
	}
	return rel
}

// UpdateUb recomputes the effective working upper bound from the
// file-declared bound fileUb, the current ub, Options.ExternalUB and the
// multiplier/negCost/delta-ub slack, per spec §4.5:
//
//	ub_eff = min(file_ub, externalUB, current_ub) * multiplier + negCost
//	deltaUb = max(deltaUbAbsolute, deltaUbRelativeGap * ub_eff)
//	ub      = ub_eff + deltaUb
//
// It never increases ub beyond its current value (spec §4.5: "clamp to at
// most the existing ub"), and it is idempotent when fileUb already equals
// the current effective bound (testable property 6).
func (w *WCSP) UpdateUb(fileUb Cost) error {
	candidate := fileUb
	if w.Options.ExternalUB > 0 && w.Options.ExternalUB < candidate {
		candidate = w.Options.ExternalUB
	}
	if w.Ub() < candidate {
		candidate = w.Ub()
	}
	scaled, err := ApplyMultiplier(int64(candidate), w.Options.Multiplier)
	if err != nil {
		return &OverflowError{Msg: err.Error()}
	}
	ubEff := Cost(scaled) + w.NegCost
	if ubEff < MinCost {
		ubEff = MinCost
	}
	newUb := ubEff.Add(w.deltaUb(ubEff))
	if newUb > w.Ub() {
		newUb = w.Ub()
	}
	w.ub.Set(newUb)
	w.Options.logf("c %s: ub updated to %d (file bound %d)\n", w.Name, w.Ub(), fileUb)
	if w.Lb() >= w.Ub() {
		return &Contradiction{Msg: fmt.Sprintf("%s: updateUb(%d) makes lb %d >= ub %d", w.Name, fileUb, w.Lb(), w.Ub())}
	}
	return nil
}

// IncreaseLb adds delta to lb. A zero delta is a no-op (testable property
// 6). It raises a Contradiction, gracefully reported as "infeasible after
// shift" per spec §4.5, if the new lb reaches ub.
func (w *WCSP) IncreaseLb(delta Cost) error {
	if delta == MinCost {
		return nil
	}
	w.setLb(w.Lb().Add(delta))
	if w.Lb() >= w.Ub() {
		return &Contradiction{Msg: fmt.Sprintf("%s: increaseLb(%d) makes lb %d >= ub %d", w.Name, delta, w.Lb(), w.Ub())}
	}
	return nil
}

// AddNegCost folds a non-negative shift into negCost, tracking the total
// amount subtracted from input costs to keep stored costs non-negative
// (spec §3).
func (w *WCSP) AddNegCost(shift Cost) {
	if shift <= MinCost {
		return
	}
	w.NegCost = w.NegCost.Add(shift)
}
