package metawcsp

import (
	"fmt"

	"github.com/crillab/gowcsp/wcsp"
	"github.com/crillab/gowcsp/wcsp/store"
)

// Constraint is the WCSP-as-constraint meta-constraint of spec §4.6. It
// satisfies wcsp.Constraint so it can be posted into a master's
// constraint list like any other cost function.
type Constraint struct {
	Master   *wcsp.WCSP
	Slave    *wcsp.WCSP
	NegSlave *wcsp.WCSP // nil when this family has no negated slave

	scope []int // one master variable per slave variable, in slave index order

	connected     bool
	isfinite      bool
	strongDuality bool

	nonAssigned *store.Cell[int]
}

// New binds master to slave (and, if non-nil, negSlave) via a
// meta-constraint whose scope is the given list of master variables, one
// per slave variable in slave index order (spec §4.6). It registers the
// family in the process-wide slave-index table and installs the four
// channelling hooks on every WCSP involved. It is equivalent to
// NewStrongDuality with strongDuality false.
func New(master, slave, negSlave *wcsp.WCSP, scope []int) (*Constraint, error) {
	return NewStrongDuality(master, slave, negSlave, scope, false)
}

// NewStrongDuality is New with strongDuality set explicitly
// (tb2globalwcsp.hpp's WeightedCSPConstraint constructor's
// strongDuality_ parameter, spec §4.6.1/§4.6.3): when true, Propagate
// also deconnects once every unassigned channelling variable has degree
// <= 1 (raising a Contradiction instead if the slave's lb is below the
// master's lb), and Assign projects into an n-ary cost function only once
// no channelling variable is left unassigned. Deconnection on universality
// happens whatever this flag says.
func NewStrongDuality(master, slave, negSlave *wcsp.WCSP, scope []int, strongDuality bool) (*Constraint, error) {
	if master == nil || slave == nil {
		return nil, &wcsp.FormatError{Msg: "meta-constraint requires a non-nil master and slave"}
	}
	if len(scope) != slave.NumberOfVariables() {
		return nil, &wcsp.FormatError{Msg: fmt.Sprintf("meta-constraint scope has %d variables, want %d (slave variable count)", len(scope), slave.NumberOfVariables())}
	}
	if negSlave != nil && negSlave.NumberOfVariables() != len(scope) {
		return nil, &wcsp.FormatError{Msg: "negated slave must channel the same number of variables as scope"}
	}
	for _, m := range scope {
		if m < 0 || m >= master.NumberOfVariables() {
			return nil, &wcsp.FormatError{Msg: fmt.Sprintf("meta-constraint scope references out-of-range master variable %d", m)}
		}
	}

	c := &Constraint{
		Master:        master,
		Slave:         slave,
		NegSlave:      negSlave,
		scope:         scope,
		connected:     true,
		strongDuality: strongDuality,
		nonAssigned:   store.NewCell(master.Store, len(scope)),
	}
	setMaster(master)
	if err := registerSlave(slave.Index, c); err != nil {
		return nil, err
	}
	if negSlave != nil {
		if err := registerSlave(negSlave.Index, c); err != nil {
			return nil, err
		}
	}
	installHooks(master, c)
	installHooks(slave, c)
	if negSlave != nil {
		installHooks(negSlave, c)
	}
	c.refreshIsfinite()
	return c, nil
}

// Scope, Arity and Connected implement wcsp.Constraint.
func (c *Constraint) Scope() []int    { return c.scope }
func (c *Constraint) Arity() int      { return len(c.scope) }
func (c *Constraint) Connected() bool { return c.connected }

// NonAssigned returns the number of channelling variables still
// unassigned in the master (spec §4.6.1/§4.6.3's backtrackable counter).
func (c *Constraint) NonAssigned() int { return c.nonAssigned.Get() }

// Isfinite reports whether some complete assignment can still reach a
// cost below top in the slave (spec §4.6.1).
func (c *Constraint) Isfinite() bool { return c.isfinite }

func (c *Constraint) refreshIsfinite() {
	c.isfinite = c.Slave.Isfinite() && (c.NegSlave == nil || c.NegSlave.Isfinite())
}

// universal reports whether the constraint can be removed outright: both
// slaves' current lower bounds already witness the required [lb, ub)
// containment (spec §4.6.4).
func (c *Constraint) universal() bool {
	if !c.isfinite {
		return false
	}
	if c.Slave.Lb() < c.Master.Lb() {
		return false
	}
	if c.NegSlave != nil {
		threshold := -c.Master.Ub() + c.Master.NegCost
		if c.NegSlave.Lb() <= threshold {
			return false
		}
	}
	return true
}

// canBeDeconnected reports whether every still-unassigned scope variable
// has degree <= 1, meaning search over them can proceed without revisiting
// this constraint (spec §4.6.4).
func (c *Constraint) canBeDeconnected() bool {
	for _, m := range c.scope {
		v := c.Master.Var(m)
		if v.Unassigned() && v.Degree() > 1 {
			return false
		}
	}
	return true
}

// deconnect marks the constraint inactive without touching any variable's
// domain (spec scenario S5: "must deconnect without removing any value").
func (c *Constraint) deconnect() {
	c.connected = false
}

func (c *Constraint) wcspByIndex(idx int) *wcsp.WCSP {
	switch {
	case c.Master.Index == idx:
		return c.Master
	case c.Slave.Index == idx:
		return c.Slave
	case c.NegSlave != nil && c.NegSlave.Index == idx:
		return c.NegSlave
	default:
		return nil
	}
}

// family returns every WCSP bound by this constraint, for the protection
// guard (spec §4.6.2).
func (c *Constraint) family() []*wcsp.WCSP {
	fam := []*wcsp.WCSP{c.Master, c.Slave}
	if c.NegSlave != nil {
		fam = append(fam, c.NegSlave)
	}
	return fam
}

// orderedPeers returns every WCSP in the family other than origin, sorted
// by ascending WCSP index for deterministic forwarding order (spec
// §4.6.2: "forwards to peers occur in deterministic iteration order...
// no forwarded event can re-enter the WCSP it came from").
func (c *Constraint) orderedPeers(origin *wcsp.WCSP) []*wcsp.WCSP {
	var peers []*wcsp.WCSP
	for _, w := range c.family() {
		if w != origin {
			peers = append(peers, w)
		}
	}
	for i := 1; i < len(peers); i++ {
		for j := i; j > 0 && peers[j].Index < peers[j-1].Index; j-- {
			peers[j], peers[j-1] = peers[j-1], peers[j]
		}
	}
	return peers
}

// resolve maps a variable index observed in origin to the corresponding
// slave-order index and master variable index (spec §4.6.2 point 1).
func (c *Constraint) resolve(origin *wcsp.WCSP, varIndex int) (slaveIdx, masterIdx int, ok bool) {
	if origin == c.Master {
		for i, m := range c.scope {
			if m == varIndex {
				return i, varIndex, true
			}
		}
		return 0, 0, false
	}
	if varIndex < 0 || varIndex >= len(c.scope) {
		return 0, 0, false
	}
	return varIndex, c.scope[varIndex], true
}
