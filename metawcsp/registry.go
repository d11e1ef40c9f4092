package metawcsp

import "github.com/crillab/gowcsp/wcsp"

// Process-wide state (spec §9 "Process-wide state"): the slave-index to
// meta-constraint table, the active master pointer, and the protection
// guard's saved flags. Only one solver/WCSP family may be active at a
// time (spec §4.6.2), matching the original implementation's singleton
// design; see package doc.go for the tradeoff this carries forward rather
// than silently redesigning.
var (
	slaveTable  = make(map[int]*Constraint)
	activeMaster *wcsp.WCSP
	protected    bool
)

// registerSlave records that slaveIndex's owning meta-constraint is c.
// Two meta-constraints may share a master but not a slave (spec §4.6.1).
func registerSlave(slaveIndex int, c *Constraint) error {
	if existing, ok := slaveTable[slaveIndex]; ok && existing != c {
		return &wcsp.StructuralError{Msg: "a WCSP may be the slave of at most one meta-constraint"}
	}
	slaveTable[slaveIndex] = c
	return nil
}

// setMaster records master as the active one, clearing the table first if
// a different master was previously active (spec §9: "the table is
// cleared if a new master replaces the previous one").
func setMaster(master *wcsp.WCSP) {
	if activeMaster != nil && activeMaster != master {
		slaveTable = make(map[int]*Constraint)
	}
	activeMaster = master
}

// protect acquires the protection guard over family (spec §4.6.2 point 2
// / §9 "Feature-flag save/restore"): it disables propagation re-entrancy
// on every WCSP that currently has it enabled and marks the region
// protected. The returned release function restores exactly what it
// disabled and must run on every exit path, including a contradiction;
// callers use it with defer, the Go equivalent of a scoped-acquisition
// guard.
func protect(family []*wcsp.WCSP) func() {
	wasProtected := protected
	protected = true
	var deactivated []*wcsp.WCSP
	for _, w := range family {
		if w.IsActivatePropagate() {
			w.DeactivatePropagate()
			deactivated = append(deactivated, w)
		}
	}
	return func() {
		for _, w := range deactivated {
			w.ReactivatePropagate()
		}
		protected = wasProtected
	}
}
