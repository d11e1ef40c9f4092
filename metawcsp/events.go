package metawcsp

import "github.com/crillab/gowcsp/wcsp"

// installHooks wires the four channelling dispatch functions onto w's
// event hooks (spec §4.6.2: "these callbacks are installed as the
// solver's variable-event hooks"). A WCSP already carrying hooks from
// another meta-constraint keeps forwarding to it afterward, so two
// meta-constraints sharing a master both fire.
func installHooks(w *wcsp.WCSP, c *Constraint) {
	w.AssignHook = chain(w.AssignHook, c.forwardAssign)
	w.RemoveHook = chain(w.RemoveHook, c.forwardRemove)
	w.SetMinHook = chain(w.SetMinHook, c.forwardSetMin)
	w.SetMaxHook = chain(w.SetMaxHook, c.forwardSetMax)
}

func chain(prev, next wcsp.EventHook) wcsp.EventHook {
	return func(wcspIndex, varIndex, value int) error {
		if err := next(wcspIndex, varIndex, value); err != nil {
			return err
		}
		if prev != nil {
			return prev(wcspIndex, varIndex, value)
		}
		return nil
	}
}

func (c *Constraint) forwardAssign(wcspIndex, varIndex, value int) error {
	return c.forward(wcspIndex, varIndex, value, true, func(v *wcsp.Variable) error {
		return v.Assign(value)
	})
}

func (c *Constraint) forwardRemove(wcspIndex, varIndex, value int) error {
	return c.forward(wcspIndex, varIndex, value, false, func(v *wcsp.Variable) error {
		return v.Remove(value)
	})
}

func (c *Constraint) forwardSetMin(wcspIndex, varIndex, value int) error {
	return c.forward(wcspIndex, varIndex, value, false, func(v *wcsp.Variable) error {
		return v.Increase(value)
	})
}

func (c *Constraint) forwardSetMax(wcspIndex, varIndex, value int) error {
	return c.forward(wcspIndex, varIndex, value, false, func(v *wcsp.Variable) error {
		return v.Decrease(value)
	})
}

// forward implements spec §4.6.2's four-step channelling dispatch: locate
// the family member the event originated in, map the variable to every
// peer's own index, forward directly against each peer's Variable state
// (never through the peer's own AssignVar/RemoveVar/... wrapper, which is
// exactly what would re-trigger this same dispatch and break the "never
// re-enter the WCSP that originated the event" rule), and finally update
// the assignment counter and universality/deconnection state.
func (c *Constraint) forward(wcspIndex, varIndex, value int, isAssign bool, apply func(*wcsp.Variable) error) error {
	if !c.connected {
		return nil
	}
	origin := c.wcspByIndex(wcspIndex)
	if origin == nil {
		return nil
	}
	slaveIdx, masterIdx, ok := c.resolve(origin, varIndex)
	if !ok {
		return nil
	}

	release := protect(c.family())
	defer release()

	for _, peer := range c.orderedPeers(origin) {
		peerVarIdx := slaveIdx
		if peer == c.Master {
			peerVarIdx = masterIdx
		}
		if err := peer.EnforceUb(); err != nil {
			c.cleanupOnContradiction()
			return err
		}
		if err := apply(peer.Var(peerVarIdx)); err != nil {
			c.cleanupOnContradiction()
			return err
		}
	}

	if isAssign {
		c.onAssign(slaveIdx)
	}
	c.refreshIsfinite()
	if c.universal() {
		c.deconnect()
	}
	return nil
}

// onAssign decrements the backtrackable nonAssigned counter (spec
// §4.6.3: "assign(i): decrement nonAssigned").
func (c *Constraint) onAssign(slaveIdx int) {
	c.nonAssigned.Set(c.nonAssigned.Get() - 1)
}

// cleanupOnContradiction runs WhenContradiction on every family member so
// each is left propagation-ready, per spec §4.6.5 ("leaving every slave in
// a consistent (restored) state before unwinding"). It does not restore any
// store depth, and neither do Propagate or the event forwarders that call
// it; only Eval brackets its probe with Store.Restore. This only resets the
// propagation flags this package itself manages.
func (c *Constraint) cleanupOnContradiction() {
	for _, w := range c.family() {
		w.WhenContradiction()
	}
}
