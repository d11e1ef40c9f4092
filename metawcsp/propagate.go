package metawcsp

import (
	"fmt"

	"github.com/crillab/gowcsp/wcsp"
)

// Propagate drives one round of the family's propagation loop (spec
// §4.6.3): check every family member's lb/ub invariant, forward any
// master-variable assignment the slaves haven't seen yet, recheck
// universality/deconnection, and finally (tb2globalwcsp.hpp's
// propagate(), step 4) enforce strong duality: once every remaining
// channelling variable has degree <= 1, the slave's own optimum is
// final, so either it already witnesses the required bound and the
// constraint deconnects, or it doesn't and the whole family is
// contradictory. It is idempotent: calling it again once nothing has
// changed is a no-op. On any contradiction it cleans up the whole family
// before returning the error, per spec §4.6.5.
func (c *Constraint) Propagate() error {
	if !c.connected {
		return nil
	}
	for _, w := range c.family() {
		if err := w.EnforceUb(); err != nil {
			c.cleanupOnContradiction()
			return err
		}
	}
	if err := c.forwardPendingAssignments(); err != nil {
		c.cleanupOnContradiction()
		return err
	}
	if !c.connected {
		return nil
	}
	release := protect(c.family())
	defer release()
	c.refreshIsfinite()
	if c.universal() {
		c.deconnect()
		return nil
	}
	if c.strongDuality && c.connected && c.canBeDeconnected() {
		if c.Slave.Lb() < c.Master.Lb() {
			c.cleanupOnContradiction()
			return &wcsp.Contradiction{Msg: fmt.Sprintf("meta-constraint %v: strong duality violated, slave lb %d below master lb %d", c.scope, c.Slave.Lb(), c.Master.Lb())}
		}
		c.deconnect()
	}
	return nil
}

// forwardPendingAssignments applies every already-assigned master
// variable to the slave(s) that haven't been told about it yet (spec
// §4.6.3 step 2, "forward any pending master-variable assignments").
// Forwarding writes Variable state directly rather than through
// AssignVar, for the same re-entrancy reason as package events.go.
func (c *Constraint) forwardPendingAssignments() error {
	for i, m := range c.scope {
		val, ok := c.Master.Var(m).Value()
		if !ok {
			continue
		}
		if _, already := c.Slave.Var(i).Value(); !already {
			if err := c.Slave.Var(i).Assign(val); err != nil {
				return err
			}
			c.onAssign(i)
		}
		if c.NegSlave != nil {
			if _, already := c.NegSlave.Var(i).Value(); !already {
				if err := c.NegSlave.Var(i).Assign(val); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Assign mirrors spec §4.6.3's assign(i) routine directly, the three-way
// branch of tb2globalwcsp.hpp's assign(): decrement nonAssigned; deconnect
// outright if the constraint is now universal; deconnect-and-project into
// a direct n-ary cost function if few enough channelling variables remain
// unassigned (and, under strong duality, only once none remain); otherwise
// leave it connected for a subsequent Propagate. Callers that drive their
// own search loop call this after fixing the i-th channelling variable in
// any family member, instead of relying solely on the automatic hook
// forwarding (useful when variables are fixed outside of
// AssignVar/RemoveVar, e.g. by a caller that mutates Variable state
// directly for performance).
func (c *Constraint) Assign(slaveIdx int) error {
	if slaveIdx < 0 || slaveIdx >= len(c.scope) {
		return &wcsp.FormatError{Msg: fmt.Sprintf("meta-constraint has no channelling variable %d", slaveIdx)}
	}
	c.onAssign(slaveIdx)
	c.refreshIsfinite()
	if c.universal() {
		c.deconnect()
		return nil
	}
	n := c.nonAssigned.Get()
	if n <= naryProjectionSize && (!c.strongDuality || n == 0) {
		c.deconnect()
		return c.projectNary()
	}
	return c.Propagate()
}

// Eval probes the cost of a complete channelling assignment (one value
// per scope variable, in slave index order) without mutating any
// committed state outside the probe: it pushes a new store bracket,
// assigns directly into the slave's variables, reads back the resulting
// total cost, and restores the bracket before returning (spec §4.6.5:
// "The eval method uses this stack to probe costs without mutating
// state: it stores, assigns, reads the slave's lb, then restores."; the
// total cost is computed via wcsp.WCSP.EvaluateCost in place of the
// original's assignLS, which this package does not implement).
// Assignments are written straight to Variable state rather than through
// AssignVar so the probe never forwards into the master.
func (c *Constraint) Eval(values []int) (wcsp.Cost, error) {
	if len(values) != len(c.scope) {
		return 0, &wcsp.FormatError{Msg: fmt.Sprintf("eval expects %d values, got %d", len(c.scope), len(values))}
	}
	depth := c.Slave.Store.Depth()
	c.Slave.Store.Push()
	defer c.Slave.Store.Restore(depth)

	for i, val := range values {
		if err := c.Slave.Var(i).Assign(val); err != nil {
			return 0, err
		}
	}
	return c.Slave.EvaluateCost(values)
}
