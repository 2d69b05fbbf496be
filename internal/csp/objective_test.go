package csp

import "testing"

func TestObjectiveMin(t *testing.T) {
	n := NewVar(0, "n", Interval(1, 10))
	r := NewObjectiveRegister(ObjMin, n)

	if r.Best() != MaxDomain {
		t.Fatalf("initial best: got %d, want MaxDomain", r.Best())
	}
	if !r.Better() {
		t.Fatalf("any bound should beat the initial best")
	}

	n.Value = Const(6)
	r.UpdateBest()
	if r.Best() != 6 {
		t.Fatalf("best after update: got %d, want 6", r.Best())
	}

	n.Value = Interval(1, 10)
	r.UpdateVal()
	if n.Value != Interval(1, 5) {
		t.Errorf("tightened domain: got %+v, want [1, 5]", n.Value)
	}

	n.Value = Const(6)
	if r.Better() {
		t.Errorf("6 must not be better than the published 6")
	}
	n.Value = Const(5)
	if !r.Better() {
		t.Errorf("5 must be better than the published 6")
	}
}

func TestObjectiveMax(t *testing.T) {
	n := NewVar(0, "n", Interval(1, 10))
	r := NewObjectiveRegister(ObjMax, n)

	if r.Best() != MinDomain {
		t.Fatalf("initial best: got %d, want MinDomain", r.Best())
	}
	n.Value = Const(4)
	r.UpdateBest()
	n.Value = Interval(1, 10)
	r.UpdateVal()
	if n.Value != Interval(5, 10) {
		t.Errorf("tightened domain: got %+v, want [5, 10]", n.Value)
	}
}

func TestObjectiveAnyAllNoop(t *testing.T) {
	for _, obj := range []Objective{ObjAny, ObjAll} {
		r := NewObjectiveRegister(obj, nil)
		if !r.Better() {
			t.Errorf("objective %d: Better must always hold", obj)
		}
		r.UpdateBest()
		r.UpdateVal()
		if r.Best() != 0 {
			t.Errorf("objective %d: best should stay 0", obj)
		}
	}
}

func TestObjectiveSharedBest(t *testing.T) {
	n := NewVar(0, "n", Interval(1, 10))
	r := NewObjectiveRegister(ObjMin, n)

	cn := NewVar(0, "n", Interval(1, 10))
	c := r.shareWith(cn)

	n.Value = Const(3)
	r.UpdateBest()
	if c.Best() != 3 {
		t.Errorf("shared best not visible in clone: got %d, want 3", c.Best())
	}
	c.UpdateVal()
	if cn.Value != Interval(1, 2) {
		t.Errorf("clone variable not tightened: got %+v", cn.Value)
	}
	if n.Value != Const(3) {
		t.Errorf("parent variable must not be touched by the clone")
	}
}
