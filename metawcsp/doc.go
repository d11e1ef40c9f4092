/*
Package metawcsp implements the "WCSP-as-constraint" master/slave
coordination subsystem: a meta-constraint that embeds one or two slave
WCSPs inside a master WCSP so the master treats "the slave optimum lies
in [lb, ub)" as a single constraint over a set of channelling variables.

Building a family

	master := wcsp.New("master")
	slave := wcsp.New("slave")
	// ... build variables and cost functions on both ...
	mc, err := metawcsp.New(master, slave, nil, []int{0, 1})
	if err != nil {
		log.Fatal(err)
	}
	master.PostConstraint(mc)

From then on, every master.AssignVar/RemoveVar/IncreaseVar/DecreaseVar
call is forwarded to slave automatically: this package installs itself on
the channelling hooks of every WCSP in the family at construction time.
Propagate drives the family's propagation loop described in spec §4.6.3;
Eval probes a complete channelling assignment's cost without mutating
either WCSP's committed state.

This package assumes a single active family at a time: the slave-index
registry and the master pointer are process-wide state, mirroring the
original implementation's singleton design (spec §9 "Process-wide
state"). A safer design would thread this through an explicit context
object; this package keeps the singleton to stay faithful to the
specified behavior, and documents the tradeoff rather than silently
changing it.
*/
package metawcsp
