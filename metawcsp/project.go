package metawcsp

import "github.com/crillab/gowcsp/wcsp"

// naryProjectionSize bounds how many channelling variables may still be
// unassigned before Assign projects the slave directly into an explicit
// n-ary cost function over them instead of leaving the meta-constraint
// connected for further propagation (tb2globalwcsp.hpp's assign(),
// guarded by its NARYPROJECTIONSIZE constant). That constant's value is
// not part of the retrieved source; this package picks a conservative
// default so the branch stays reachable for small families.
const naryProjectionSize = 4

// projectNary replaces this meta-constraint with a direct n-ary cost
// function over its still-unassigned channelling variables, evaluating
// the slave at every remaining combination via Eval and posting the
// result into the master (spec §4.6.3's deconnect-and-project branch,
// tb2globalwcsp.hpp's projectNary() call site). Already-assigned
// channelling variables stay fixed at their current master value. The
// caller must have already deconnected the constraint.
func (c *Constraint) projectNary() error {
	values := make([]int, len(c.scope))
	var free []int
	for i, m := range c.scope {
		if v, ok := c.Master.Var(m).Value(); ok {
			values[i] = v
		} else {
			free = append(free, i)
		}
	}

	if len(free) == 0 {
		cost, err := c.Eval(values)
		if err != nil {
			return err
		}
		if cost >= c.Slave.Ub() {
			return &wcsp.Contradiction{Msg: "meta-constraint projects to an infeasible assignment"}
		}
		return nil
	}

	freeScope := make([]int, len(free))
	for k, i := range free {
		freeScope[k] = c.scope[i]
	}
	nb, err := c.Master.PostNaryBegin(freeScope, wcsp.Top, 0)
	if err != nil {
		return err
	}

	var walk func(k int) error
	walk = func(k int) error {
		if k == len(free) {
			cost, err := c.Eval(values)
			if err != nil || cost >= c.Slave.Ub() {
				return nil // infeasible combination: left at the table's default (Top)
			}
			tuple := make(wcsp.Tuple, len(free))
			for j, i := range free {
				tuple[j] = values[i]
			}
			return nb.PostNaryTuple(tuple, cost)
		}
		i := free[k]
		m := c.scope[i]
		v := c.Master.Var(m)
		for val := 0; val < v.InitDomainSize(); val++ {
			if !v.InDomain(val) {
				continue
			}
			values[i] = val
			if err := walk(k + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return err
	}
	_, err = nb.PostNaryEnd()
	return err
}
