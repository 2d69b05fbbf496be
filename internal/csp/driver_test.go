package csp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStepValRicochet(t *testing.T) {
	step := &Step{Bounds: Interval(0, 4)}

	got := []int32{}
	for step.Iter = 0; step.Iter <= 4; step.Iter++ {
		got = append(got, (&Solver{}).stepVal(step))
	}
	want := []int32{0, 4, 1, 3, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ricochet order mismatch (-want +got):\n%s", diff)
	}
}

func TestStepValSeedFlipsParity(t *testing.T) {
	step := &Step{Bounds: Interval(0, 4), Seed: 1}

	got := []int32{}
	for step.Iter = 0; step.Iter <= 4; step.Iter++ {
		got = append(got, (&Solver{}).stepVal(step))
	}
	want := []int32{4, 0, 3, 1, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("seeded ricochet mismatch (-want +got):\n%s", diff)
	}
}

func TestStepCheck(t *testing.T) {
	step := &Step{Bounds: Interval(2, 4)}
	s := &Solver{}

	for step.Iter = 0; step.Iter <= 2; step.Iter++ {
		if !s.stepCheck(step) {
			t.Fatalf("iteration %d should be in range", step.Iter)
		}
	}
	step.Iter = 3
	if s.stepCheck(step) {
		t.Errorf("iteration 3 should exhaust a 3-value interval")
	}

	// Negative bounds still span correctly.
	step = &Step{Bounds: Interval(-2, 2), Iter: 4}
	if !s.stepCheck(step) {
		t.Errorf("iteration 4 of [-2, 2] should be in range")
	}
}

func TestCheckRestart(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 1))
	root := WideAnd(x.Term())
	opts := DefaultOptions
	opts.RestartFrequency = 1
	opts.Objective = ObjAny
	s := newTestSolver(opts, []*Var{x}, root)

	if s.checkRestart() {
		t.Fatalf("first failure should not trigger a restart at threshold 1")
	}
	if !s.checkRestart() {
		t.Fatalf("second failure should trigger a restart")
	}
	if s.Stat.Restarts != 1 {
		t.Errorf("Restarts: got %d, want 1", s.Stat.Restarts)
	}
	if s.failCount != 0 {
		t.Errorf("failCount should reset after a restart")
	}
	// The threshold advanced along the Luby sequence: 1 -> 1.
	if s.luby.Threshold() != 1 {
		t.Errorf("threshold: got %d, want 1", s.luby.Threshold())
	}
}

func TestCheckRestartDisabledForMin(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 1))
	root := WideAnd(x.Term())
	opts := DefaultOptions
	opts.RestartFrequency = 1
	opts.Objective = ObjMin
	opts.ObjectiveVar = x
	s := newTestSolver(opts, []*Var{x}, root)

	for i := 0; i < 10; i++ {
		if s.checkRestart() {
			t.Fatalf("restarts must be disabled outside ObjAny")
		}
	}
}

func TestStepEnterLeaveRoundTrip(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 5))
	root := WideAnd(x.Term())
	s := newTestSolver(DefaultOptions, []*Var{x}, root)

	step := &Step{}
	s.stepActivate(step, x)
	s.Trail.SetLevel(0)
	s.stepEnter(step, 3)

	if x.Value != Const(3) {
		t.Fatalf("x after enter: got %+v, want 3", x.Value)
	}

	s.stepLeave(step)
	if x.Value != Interval(0, 5) {
		t.Errorf("x after leave: got %+v, want [0, 5]", x.Value)
	}
	if s.Trail.Depth() != 0 {
		t.Errorf("trail depth after leave: got %d, want 0", s.Trail.Depth())
	}
}
