package store

import "testing"

func TestCellRestoresAcrossDepths(t *testing.T) {
	s := New()
	c := NewCell(s, 10)

	s.Push() // depth 1
	c.Set(20)
	s.Push() // depth 2
	c.Set(30)

	if got := c.Get(); got != 30 {
		t.Fatalf("Get() = %d, want 30", got)
	}

	s.Restore(1)
	if got := c.Get(); got != 20 {
		t.Fatalf("after Restore(1), Get() = %d, want 20", got)
	}

	s.Restore(0)
	if got := c.Get(); got != 10 {
		t.Fatalf("after Restore(0), Get() = %d, want 10", got)
	}
	if s.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0", s.Depth())
	}
}

func TestRestoreNoOpWhenAboveTarget(t *testing.T) {
	s := New()
	c := NewCell(s, 1)
	s.Push()
	c.Set(2)
	s.Restore(5) // target above current depth: no-op
	if got := c.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}
	if s.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", s.Depth())
	}
}

func TestMultipleCellsIndependentUndo(t *testing.T) {
	s := New()
	a := NewCell(s, "a0")
	b := NewCell(s, "b0")
	s.Push()
	a.Set("a1")
	s.Push()
	b.Set("b1")
	a.Set("a2")

	s.Restore(1)
	if a.Get() != "a1" {
		t.Fatalf("a.Get() = %q, want a1", a.Get())
	}
	if b.Get() != "b0" {
		t.Fatalf("b.Get() = %q, want b0", b.Get())
	}
}
