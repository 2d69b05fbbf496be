package csp

import "testing"

func TestTrailRoundTrip(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 9))
	y := NewVar(1, "y", Interval(-5, 5))
	tr := NewTrail(16)

	tr.SetLevel(0)
	tr.Bind(x, Interval(0, 4), nil)
	tr.SetLevel(1)
	tr.Bind(y, Const(3), nil)
	tr.Bind(x, Const(2), nil)

	if x.Value != Const(2) || x.Level != 1 {
		t.Fatalf("x after binds: got %+v at level %d", x.Value, x.Level)
	}
	if y.Value != Const(3) {
		t.Fatalf("y after binds: got %+v", y.Value)
	}

	tr.Unbind(0)

	if x.Value != Interval(0, 9) || x.Level != levelMax || x.BindHead != NoBind {
		t.Errorf("x after unbind: got %+v at level %d, bind head %d", x.Value, x.Level, x.BindHead)
	}
	if y.Value != Interval(-5, 5) || y.BindHead != NoBind {
		t.Errorf("y after unbind: got %+v, bind head %d", y.Value, y.BindHead)
	}
	if tr.Depth() != 0 {
		t.Errorf("trail depth after unbind: got %d, want 0", tr.Depth())
	}
}

func TestTrailPartialUnbind(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 9))
	tr := NewTrail(16)

	tr.SetLevel(0)
	tr.Bind(x, Interval(0, 4), nil)
	depth := tr.Depth()
	tr.SetLevel(1)
	tr.Bind(x, Const(1), nil)

	tr.Unbind(depth)

	if x.Value != Interval(0, 4) {
		t.Errorf("x after partial unbind: got %+v, want [0, 4]", x.Value)
	}
	if x.Level != 0 {
		t.Errorf("x level after partial unbind: got %d, want 0", x.Level)
	}
	if x.BindHead != depth-1 {
		t.Errorf("x bind head: got %d, want %d", x.BindHead, depth-1)
	}
}

func TestTrailBindHistory(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 9))
	tr := NewTrail(16)

	tr.SetLevel(0)
	tr.Bind(x, Interval(0, 4), nil)
	tr.SetLevel(1)
	tr.Bind(x, Const(2), nil)

	b := tr.At(x.BindHead)
	if b.PrevValue != Interval(0, 4) || b.PrevLevel != 0 {
		t.Errorf("latest bind snapshot: got %+v at level %d", b.PrevValue, b.PrevLevel)
	}
	prev := tr.At(b.Prev)
	if prev.PrevValue != Interval(0, 9) {
		t.Errorf("previous bind snapshot: got %+v, want [0, 9]", prev.PrevValue)
	}
	if prev.Prev != NoBind {
		t.Errorf("history should end at NoBind, got %d", prev.Prev)
	}
}

func TestTrailExhausted(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 9))
	tr := NewTrail(1)
	tr.Bind(x, Interval(0, 4), nil)

	defer func() {
		if _, ok := recover().(FatalError); !ok {
			t.Errorf("expected FatalError on trail overflow")
		}
	}()
	tr.Bind(x, Const(0), nil)
}

func TestPatchTrail(t *testing.T) {
	a := ConstTerm(1)
	b := ConstTerm(2)
	slot := &ClauseSlot{Current: a, Original: a}
	pt := NewPatchTrail(4)

	pt.Patch(slot, b)
	if slot.Current != b {
		t.Fatalf("slot not patched")
	}
	pt.Unpatch(0)
	if slot.Current != a {
		t.Errorf("slot not restored after unpatch")
	}
}
