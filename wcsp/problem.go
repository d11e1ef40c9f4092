package wcsp

import (
	"fmt"
	"sync"

	"github.com/crillab/gowcsp/wcsp/store"
)

var (
	wcspIndexMu      sync.Mutex
	wcspIndexCounter int
)

func nextWCSPIndex() int {
	wcspIndexMu.Lock()
	defer wcspIndexMu.Unlock()
	idx := wcspIndexCounter
	wcspIndexCounter++
	return idx
}

// Constraint is satisfied by every cost function variant in this package
// (unary/binary/ternary/n-ary tables, arithmetic, knapsack, clique,
// decomposable) and by the WCSP-as-constraint meta-constraint defined in
// package metawcsp.
type Constraint interface {
	Scope() []int
	Arity() int
	Connected() bool
}

// EventHook is the signature of the four channelling callbacks described
// in spec §4.6.2: assign, remove, setmin and setmax. wcspIndex identifies
// the WCSP the event originated in (so a shared hook installed on several
// WCSPs in a family can tell which one fired); varIndex/value describe the
// event itself.
type EventHook func(wcspIndex, varIndex, value int) error

// WCSP is a weighted constraint satisfaction problem: a list of variables,
// a list of cost functions, and the global bounds lb/ub/negCost described
// in spec §3.
type WCSP struct {
	Name  string
	Index int

	Store *store.Store

	Variables   []*Variable
	nameToIndex map[string]int

	Constraints []Constraint

	lb      *store.Cell[Cost]
	ub      *store.Cell[Cost]
	NegCost Cost // shift accumulated while loading; fixed once parsing ends

	Options Options

	// Channelling hooks, installed by package metawcsp when this WCSP is
	// part of a WCSP-as-constraint family. nil means "no one is
	// listening" and events are purely local.
	AssignHook EventHook
	RemoveHook EventHook
	SetMinHook EventHook
	SetMaxHook EventHook

	propagateActive bool

	// shareRegistry is not read or written anywhere in this module: the
	// CFN and legacy parsers keep their shared tables in parser-local
	// state for the duration of one parse.
	shareRegistry map[string]Constraint

	frozen bool // true after SortConstraints: structural membership can no longer change
}

// New creates an empty WCSP with the default Options (precision 0,
// multiplier 1, no external bound).
func New(name string) *WCSP {
	return NewWithOptions(name, DefaultOptions())
}

// NewWithOptions creates an empty WCSP using the given Options.
func NewWithOptions(name string, opts Options) *WCSP {
	st := store.New()
	w := &WCSP{
		Name:            name,
		Index:           nextWCSPIndex(),
		Store:           st,
		nameToIndex:     make(map[string]int),
		lb:              store.NewCell(st, MinCost),
		ub:              store.NewCell(st, Top),
		Options:         opts,
		propagateActive: true,
		shareRegistry:   make(map[string]Constraint),
	}
	if opts.ExternalUB > 0 {
		w.ub.Set(opts.ExternalUB)
	}
	return w
}

// Lb returns the current global lower bound.
func (w *WCSP) Lb() Cost { return w.lb.Get() }

// Ub returns the current global (strict) upper bound.
func (w *WCSP) Ub() Cost { return w.ub.Get() }

// setLb unconditionally sets lb, without checking against ub. Exported
// operations go through IncreaseLb, which performs the lb>=ub check.
func (w *WCSP) setLb(c Cost) { w.lb.Set(c) }

// MakeEnumeratedVariable creates and registers a new enumerated variable
// with initial domain [0, domainSize). It fails if the name is already
// used by a variable with a different domain size (spec §4.2 redeclaration
// rule); redeclaring with the same size returns the existing index.
func (w *WCSP) MakeEnumeratedVariable(name string, domainSize int) (int, error) {
	if domainSize <= 0 {
		return 0, &FormatError{Msg: fmt.Sprintf("variable %q: domain size must be positive, got %d", name, domainSize)}
	}
	if idx, ok := w.nameToIndex[name]; ok {
		v := w.Variables[idx]
		if v.Kind != Enumerated || v.initSize != domainSize {
			return 0, &FormatError{Msg: fmt.Sprintf("variable %q redeclared with a different domain", name)}
		}
		return idx, nil
	}
	idx := len(w.Variables)
	v := newEnumeratedVariable(w.Store, idx, name, domainSize)
	w.Variables = append(w.Variables, v)
	w.nameToIndex[name] = idx
	return idx, nil
}

// MakeIntervalVariable creates and registers a new interval variable with
// initial domain [inf, sup].
func (w *WCSP) MakeIntervalVariable(name string, inf, sup int) (int, error) {
	if sup < inf {
		return 0, &FormatError{Msg: fmt.Sprintf("variable %q: sup %d < inf %d", name, sup, inf)}
	}
	if idx, ok := w.nameToIndex[name]; ok {
		v := w.Variables[idx]
		if v.Kind != Interval || v.Inf() != inf || v.Sup() != sup {
			return 0, &FormatError{Msg: fmt.Sprintf("variable %q redeclared with a different domain", name)}
		}
		return idx, nil
	}
	idx := len(w.Variables)
	v := newIntervalVariable(w.Store, idx, name, inf, sup)
	w.Variables = append(w.Variables, v)
	w.nameToIndex[name] = idx
	return idx, nil
}

// NameValue records name as the external name of value for the enumerated
// variable at varIndex (spec §4.2 value-naming). It fails if the name is
// already bound to a different value index for that variable.
func (w *WCSP) NameValue(varIndex int, name string, value int) error {
	return w.Variables[varIndex].nameValue(name, value)
}

// GetVarIndex returns the index of the variable named name, or
// len(w.Variables) (a sentinel equal to the current variable count) if the
// name is unused, per spec §4.2.
func (w *WCSP) GetVarIndex(name string) int {
	if idx, ok := w.nameToIndex[name]; ok {
		return idx
	}
	return len(w.Variables)
}

// NumberOfVariables returns the number of variables registered so far.
func (w *WCSP) NumberOfVariables() int { return len(w.Variables) }

// Var returns the variable at index idx.
func (w *WCSP) Var(idx int) *Variable { return w.Variables[idx] }

// AssignVar assigns value to the variable at varIndex, then invokes
// AssignHook if one is installed, so that callers never have to remember
// to fire channelling events by hand.
func (w *WCSP) AssignVar(varIndex, value int) error {
	if err := w.Variables[varIndex].Assign(value); err != nil {
		return err
	}
	if w.AssignHook != nil {
		return w.AssignHook(w.Index, varIndex, value)
	}
	return nil
}

// RemoveVar removes value from the domain of the variable at varIndex,
// then invokes RemoveHook if one is installed.
func (w *WCSP) RemoveVar(varIndex, value int) error {
	if err := w.Variables[varIndex].Remove(value); err != nil {
		return err
	}
	if w.RemoveHook != nil {
		return w.RemoveHook(w.Index, varIndex, value)
	}
	return nil
}

// IncreaseVar tightens the lower bound of the variable at varIndex to at
// least min (the "setmin" event), then invokes SetMinHook if installed.
func (w *WCSP) IncreaseVar(varIndex, min int) error {
	if err := w.Variables[varIndex].Increase(min); err != nil {
		return err
	}
	if w.SetMinHook != nil {
		return w.SetMinHook(w.Index, varIndex, min)
	}
	return nil
}

// DecreaseVar tightens the upper bound of the variable at varIndex to at
// most max (the "setmax" event), then invokes SetMaxHook if installed.
func (w *WCSP) DecreaseVar(varIndex, max int) error {
	if err := w.Variables[varIndex].Decrease(max); err != nil {
		return err
	}
	if w.SetMaxHook != nil {
		return w.SetMaxHook(w.Index, varIndex, max)
	}
	return nil
}

// AssignMany bulk-assigns values[i] to the variable varIndexes[i], in
// order, stopping and returning the first Contradiction encountered. It
// goes through AssignVar, so channelling hooks fire; metawcsp's probing
// Eval does not use it and writes Variable state directly instead.
func (w *WCSP) AssignMany(varIndexes, values []int) error {
	for i, vi := range varIndexes {
		if err := w.AssignVar(vi, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// IsActivatePropagate reports whether this WCSP currently accepts
// propagation (see ActivatePropagate/DeactivatePropagate).
func (w *WCSP) IsActivatePropagate() bool { return w.propagateActive }

// DeactivatePropagate disables propagation on this WCSP. Used by the
// WCSP-as-constraint subsystem to prevent a channelled event from
// re-entering the WCSP it originated in.
func (w *WCSP) DeactivatePropagate() { w.propagateActive = false }

// ReactivatePropagate re-enables propagation on this WCSP.
func (w *WCSP) ReactivatePropagate() { w.propagateActive = true }

// EnforceUb checks the basic lb < ub invariant, raising a Contradiction if
// it is violated. Full propagation-queue-based upper bound enforcement
// (revising every cost function whose cost could now exceed ub) is the
// search driver's job and out of this package's scope; this is the narrow
// check the WCSP-as-constraint subsystem needs around every slave
// operation (spec §4.6.3).
func (w *WCSP) EnforceUb() error {
	if w.Lb() >= w.Ub() {
		return &Contradiction{Msg: fmt.Sprintf("%s: lb %d >= ub %d", w.Name, w.Lb(), w.Ub())}
	}
	return nil
}

// WhenContradiction is the cleanup hook called on a WCSP right after a
// Contradiction was caught while operating on it, restoring it to a
// propagation-ready state. The concrete cleanup (restoring the store to
// the call's entry depth) is the caller's responsibility via
// Store.Restore; this hook exists as an explicit seam so package metawcsp
// always calls it at the same point the original tb2wcsp.cpp does,
// regardless of which specific operation failed.
func (w *WCSP) WhenContradiction() {
	w.propagateActive = true
}

// Isfinite reports whether the WCSP currently has at least one complete
// assignment, mathematically (ignoring search state), that could have a
// finite cost: true whenever lb < Top (i.e. the problem has not already
// been proven universally forbidden by a cost-table computation).
// Determining this precisely in general requires search; this package
// only exposes the cheap necessary condition the builder can establish at
// load time.
func (w *WCSP) Isfinite() bool { return w.Lb() < Top }

// NumberOfConstraints returns the number of posted constraints (connected
// or not).
func (w *WCSP) NumberOfConstraints() int { return len(w.Constraints) }

// SortConstraints marks the network as frozen (see Frozen). The mark is
// not enforced: MakeEnumeratedVariable and the Post* methods do not check
// it, so variables and constraints can still be added afterwards.
func (w *WCSP) SortConstraints() {
	w.frozen = true
}

// Frozen reports whether SortConstraints has been called.
func (w *WCSP) Frozen() bool { return w.frozen }
