package metawcsp

import (
	"testing"

	"github.com/crillab/gowcsp/wcsp"
)

func buildBooleanFamily(t *testing.T) (master, slave *wcsp.WCSP, mx, my, sx, sy int) {
	master = wcsp.New("master")
	var err error
	mx, err = master.MakeEnumeratedVariable("x", 2)
	if err != nil {
		t.Fatalf("master x: %v", err)
	}
	my, err = master.MakeEnumeratedVariable("y", 2)
	if err != nil {
		t.Fatalf("master y: %v", err)
	}
	if err := master.UpdateUb(1); err != nil {
		t.Fatalf("master UpdateUb: %v", err)
	}

	slave = wcsp.New("slave")
	sx, err = slave.MakeEnumeratedVariable("x", 2)
	if err != nil {
		t.Fatalf("slave x: %v", err)
	}
	sy, err = slave.MakeEnumeratedVariable("y", 2)
	if err != nil {
		t.Fatalf("slave y: %v", err)
	}
	if _, err := slave.PostBinary(sx, sy, []wcsp.Cost{0, 1, 1, 1}); err != nil {
		t.Fatalf("slave PostBinary: %v", err)
	}
	return
}

// TestUniversalityDeconnectsWithoutRemovingValues exercises spec scenario
// S5: both slave and meta-constraint lbs already witness the required
// containment before any variable is assigned, so propagating once must
// deconnect the constraint while leaving every domain untouched.
func TestUniversalityDeconnectsWithoutRemovingValues(t *testing.T) {
	master, slave, mx, my, _, _ := buildBooleanFamily(t)
	mc, err := New(master, slave, nil, []int{mx, my})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	master.PostConstraint(mc)

	if err := mc.Propagate(); err != nil {
		t.Fatalf("Propagate: %v", err)
	}
	if mc.Connected() {
		t.Error("constraint should have deconnected: slave.lb >= master.lb and isfinite")
	}
	for _, v := range []int{mx, my} {
		for val := 0; val < 2; val++ {
			if !master.Var(v).InDomain(val) {
				t.Errorf("variable %d lost value %d on deconnection", v, val)
			}
		}
	}
}

// TestAssignForwardsToSlave exercises spec scenario S6 / testable property
// 8 (event channelling fidelity): assigning x in the master must produce
// the same fixed value in the slave's channelling variable.
func TestAssignForwardsToSlave(t *testing.T) {
	master, slave, mx, my, sx, _ := buildBooleanFamily(t)
	mc, err := New(master, slave, nil, []int{mx, my})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	master.PostConstraint(mc)

	if err := master.AssignVar(mx, 1); err != nil {
		t.Fatalf("AssignVar: %v", err)
	}
	val, ok := slave.Var(sx).Value()
	if !ok || val != 1 {
		t.Errorf("slave's channelling variable = (%d,%v), want (1,true)", val, ok)
	}
}

// TestEvalDoesNotMutateCommittedState checks that Eval restores the
// slave's store bracket after probing (spec §4.6.5).
func TestEvalDoesNotMutateCommittedState(t *testing.T) {
	master, slave, mx, my, _, _ := buildBooleanFamily(t)
	mc, err := New(master, slave, nil, []int{mx, my})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cost, err := mc.Eval([]int{1, 1})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if cost != 1 {
		t.Errorf("Eval([1,1]) = %d, want 1 (the (1,1) entry of the slave's table)", cost)
	}
	if _, assigned := slave.Var(0).Value(); assigned {
		t.Error("Eval should not leave the slave's variables assigned")
	}
}

func TestNewRejectsScopeSizeMismatch(t *testing.T) {
	master, slave, mx, _, _, _ := buildBooleanFamily(t)
	if _, err := New(master, slave, nil, []int{mx}); err == nil {
		t.Error("expected an error when scope length does not match slave variable count")
	}
}
