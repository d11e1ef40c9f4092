package wcsp

import (
	"fmt"

	"github.com/crillab/gowcsp/wcsp/store"
)

// Kind distinguishes the two variable variants described in spec §3.
type Kind int

const (
	// Enumerated variables have a dense initial domain [0, D) and support
	// named values.
	Enumerated Kind = iota
	// Interval variables are represented by a current [inf, sup] pair and
	// have no named values; they may only appear in the restricted set of
	// cost-function types that accept them (arithmetic constraints).
	Interval
)

// Variable is either an enumerated or an interval variable, identified by a
// stable, dense-from-zero index within its owning WCSP.
type Variable struct {
	Index int
	Name  string
	Kind  Kind

	initSize int // enumerated: initial domain size D; interval: sup-inf+1 at creation

	valueIndex map[string]int // enumerated only: value name -> value index
	valueName  []string       // enumerated only: value index -> name, "" if unnamed

	inf, sup *store.Cell[int]
	assigned *store.Cell[int]  // -1 if unassigned, else the assigned value index
	removed  []*store.Cell[bool] // enumerated only, len == initSize

	degree int // number of constraints posted over this variable; deconnecting one does not decrement it
}

func newEnumeratedVariable(st *store.Store, index int, name string, domainSize int) *Variable {
	removed := make([]*store.Cell[bool], domainSize)
	for i := range removed {
		removed[i] = store.NewCell(st, false)
	}
	return &Variable{
		Index:      index,
		Name:       name,
		Kind:       Enumerated,
		initSize:   domainSize,
		valueIndex: make(map[string]int, domainSize),
		valueName:  make([]string, domainSize),
		inf:        store.NewCell(st, 0),
		sup:        store.NewCell(st, domainSize-1),
		assigned:   store.NewCell(st, -1),
		removed:    removed,
	}
}

func newIntervalVariable(st *store.Store, index int, name string, inf, sup int) *Variable {
	return &Variable{
		Index:    index,
		Name:     name,
		Kind:     Interval,
		initSize: sup - inf + 1,
		inf:      store.NewCell(st, inf),
		sup:      store.NewCell(st, sup),
		assigned: store.NewCell(st, -1),
	}
}

// InitDomainSize returns the immutable initial domain size D.
func (v *Variable) InitDomainSize() int { return v.initSize }

// Degree returns the number of constraints posted over this variable. A
// constraint that is later deconnected is still counted.
func (v *Variable) Degree() int { return v.degree }

func (v *Variable) incDegree() { v.degree++ }
func (v *Variable) decDegree() {
	if v.degree > 0 {
		v.degree--
	}
}

// Unassigned reports whether v has no fixed value yet.
func (v *Variable) Unassigned() bool { return v.assigned.Get() == -1 }

// Value returns the assigned value index and true, or (0, false) if v is
// unassigned.
func (v *Variable) Value() (int, bool) {
	val := v.assigned.Get()
	if val == -1 {
		return 0, false
	}
	return val, true
}

// Inf returns the current lower bound of the domain.
func (v *Variable) Inf() int { return v.inf.Get() }

// Sup returns the current upper bound of the domain.
func (v *Variable) Sup() int { return v.sup.Get() }

// InDomain reports whether value is still in the current domain (for
// enumerated variables; interval variables only track inf/sup).
func (v *Variable) InDomain(value int) bool {
	if value < v.inf.Get() || value > v.sup.Get() {
		return false
	}
	if v.Kind == Enumerated {
		if value < 0 || value >= v.initSize {
			return false
		}
		return !v.removed[value].Get()
	}
	return true
}

// Assign fixes v to value. It returns a *Contradiction if value is not in
// the current domain.
func (v *Variable) Assign(value int) error {
	if !v.InDomain(value) {
		return &Contradiction{Msg: fmt.Sprintf("%s cannot be assigned %d: not in domain", v.Name, value)}
	}
	v.assigned.Set(value)
	v.inf.Set(value)
	v.sup.Set(value)
	return nil
}

// Remove removes value from v's domain (enumerated only). It returns a
// *Contradiction if this empties the domain or contradicts a prior
// assignment.
func (v *Variable) Remove(value int) error {
	if v.Kind != Enumerated {
		return nil
	}
	if value < 0 || value >= v.initSize || v.removed[value].Get() {
		return nil
	}
	if assigned, ok := v.Value(); ok && assigned == value {
		return &Contradiction{Msg: fmt.Sprintf("%s cannot remove assigned value %d", v.Name, value)}
	}
	v.removed[value].Set(true)
	if value == v.inf.Get() {
		v.inf.Set(nextPresent(v, value, +1))
	}
	if value == v.sup.Get() {
		v.sup.Set(nextPresent(v, value, -1))
	}
	if v.inf.Get() > v.sup.Get() {
		return &Contradiction{Msg: fmt.Sprintf("%s domain wiped out", v.Name)}
	}
	return nil
}

func nextPresent(v *Variable, from, dir int) int {
	for i := from + dir; i >= 0 && i < v.initSize; i += dir {
		if !v.removed[i].Get() {
			return i
		}
	}
	if dir > 0 {
		return v.initSize // empty marker: inf beyond sup
	}
	return -1
}

// Increase tightens the lower bound to at least min (spec's setmin event).
func (v *Variable) Increase(min int) error {
	if min <= v.inf.Get() {
		return nil
	}
	if v.Kind == Enumerated {
		for val := v.inf.Get(); val < min && val < v.initSize; val++ {
			if !v.removed[val].Get() {
				v.removed[val].Set(true)
			}
		}
	}
	v.inf.Set(min)
	if v.inf.Get() > v.sup.Get() {
		return &Contradiction{Msg: fmt.Sprintf("%s domain wiped out by increase(%d)", v.Name, min)}
	}
	return nil
}

// Decrease tightens the upper bound to at most max (spec's setmax event).
func (v *Variable) Decrease(max int) error {
	if max >= v.sup.Get() {
		return nil
	}
	if v.Kind == Enumerated {
		for val := v.sup.Get(); val > max && val >= 0; val-- {
			if !v.removed[val].Get() {
				v.removed[val].Set(true)
			}
		}
	}
	v.sup.Set(max)
	if v.inf.Get() > v.sup.Get() {
		return &Contradiction{Msg: fmt.Sprintf("%s domain wiped out by decrease(%d)", v.Name, max)}
	}
	return nil
}

// ValueName returns the name of value, or its decimal string form if the
// value was never named.
func (v *Variable) ValueName(value int) string {
	if v.Kind == Enumerated && value >= 0 && value < len(v.valueName) && v.valueName[value] != "" {
		return v.valueName[value]
	}
	return fmt.Sprintf("%d", value)
}

// nameValue records a name for a value index, used while parsing named
// enumerated domains. It fails if the name is already bound to a different
// value (redeclaration mismatch, spec §4.2).
func (v *Variable) nameValue(name string, value int) error {
	if existing, ok := v.valueIndex[name]; ok {
		if existing != value {
			return &FormatError{Msg: fmt.Sprintf("value name %q redeclared for variable %s with a different index", name, v.Name)}
		}
		return nil
	}
	v.valueIndex[name] = value
	v.valueName[value] = name
	return nil
}

// ValueIndex resolves a previously named value back to its index.
func (v *Variable) ValueIndex(name string) (int, bool) {
	idx, ok := v.valueIndex[name]
	return idx, ok
}
