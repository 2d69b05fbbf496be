package csp

import "testing"

func TestEval(t *testing.T) {
	x := NewVar(0, "x", Interval(0, 5)).Term()
	y := NewVar(1, "y", Interval(10, 20)).Term()
	b := NewVar(2, "b", Interval(0, 1)).Term()

	testCases := []struct {
		name string
		c    *Constr
		want Value
	}{
		{"term", ConstTerm(7), Const(7)},
		{"var term", x, Interval(0, 5)},
		{"eq equal consts", Eq(ConstTerm(3), ConstTerm(3)), True},
		{"eq disjoint", Eq(x, y), False},
		{"eq overlap", Eq(x, ConstTerm(3)), Interval(0, 1)},
		{"eq saturated", Eq(IntervalTerm(0, MaxDomain), ConstTerm(1)), Interval(0, 1)},
		{"lt true", Lt(x, y), True},
		{"lt false", Lt(y, x), False},
		{"lt overlap", Lt(x, ConstTerm(3)), Interval(0, 1)},
		{"lt saturated", Lt(IntervalTerm(MinDomain, 0), ConstTerm(1)), Interval(0, 1)},
		{"neg", NegOf(x), Interval(-5, 0)},
		{"add", AddOf(x, y), Interval(10, 25)},
		{"add saturating", AddOf(IntervalTerm(MaxDomain-1, MaxDomain-1), ConstTerm(5)), Const(MaxDomain)},
		{"mul", MulOf(IntervalTerm(-2, 3), IntervalTerm(4, 5)), Interval(-10, 15)},
		{"not true", NotOf(ConstTerm(1)), False},
		{"not false", NotOf(ConstTerm(0)), True},
		{"not unknown", NotOf(b), Interval(0, 1)},
		{"and short circuit", AndOf(ConstTerm(0), b), False},
		{"and both true", AndOf(ConstTerm(1), ConstTerm(2)), True},
		{"and unknown", AndOf(ConstTerm(1), b), Interval(0, 1)},
		{"or short circuit", OrOf(ConstTerm(1), b), True},
		{"or both false", OrOf(ConstTerm(0), ConstTerm(0)), False},
		{"or unknown", OrOf(ConstTerm(0), b), Interval(0, 1)},
		{"wide-and false", WideAnd(ConstTerm(1), ConstTerm(0)), False},
		{"wide-and true", WideAnd(ConstTerm(1), ConstTerm(1)), True},
		{"wide-and unknown", WideAnd(ConstTerm(1), b), Interval(0, 1)},
	}
	for _, tc := range testCases {
		if got := Eval(tc.c); got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestEvalConflict(t *testing.T) {
	u := NewVar(0, "u", Interval(0, 1))
	w := NewVar(1, "w", Interval(0, 1))

	// Some listed variable differs from its forbidden value: satisfied.
	u.Value = Const(1)
	w.Value = Const(0)
	c := ConflictClause([]ConflictLit{{Var: u, Val: 0}, {Var: w, Val: 0}})
	if got := Eval(c); got != True {
		t.Errorf("satisfied conflict: got %+v, want true", got)
	}

	// A still-free variable keeps the clause undetermined.
	w.Value = Interval(0, 1)
	c = ConflictClause([]ConflictLit{{Var: w, Val: 0}})
	if got := Eval(c); got != Interval(0, 1) {
		t.Errorf("free conflict: got %+v, want [0, 1]", got)
	}

	// Every variable pinned to its forbidden value falls through to
	// undetermined rather than reporting violation.
	w.Value = Const(0)
	if got := Eval(c); got != Interval(0, 1) {
		t.Errorf("violated conflict: got %+v, want [0, 1]", got)
	}
}

// Narrowing an input interval must never widen an evaluated result.
func TestEvalMonotone(t *testing.T) {
	v := NewVar(0, "v", Interval(-4, 9))
	expr := AddOf(MulOf(v.Term(), v.Term()), NegOf(v.Term()))

	wide := Eval(expr)
	v.Value = Interval(0, 3)
	narrow := Eval(expr)

	if narrow.Lo < wide.Lo || narrow.Hi > wide.Hi {
		t.Errorf("narrowing widened result: %+v -> %+v", wide, narrow)
	}
}
