package csp

// Bind is one entry of the reversible bind trail: the variable that was
// narrowed, its value and level immediately before the narrowing, the
// clause that forced it (nil for a decision), and a link to the variable's
// previous bind. The link is an index into the owning Trail's slice rather
// than a pointer, so that growing the trail never invalidates it.
type Bind struct {
	Var       *Var
	PrevValue Value
	PrevLevel int
	Clause    *ClauseSlot
	Prev      int
}

// Trail is the fixed-capacity reversible bind trail. Binding a variable
// snapshots its old value onto the trail and mutates its cell; unbinding
// restores exactly that snapshot, in reverse order.
type Trail struct {
	binds []Bind
	cap   int
	level int
}

// NewTrail returns an empty trail with the given fixed capacity. The
// level starts at the sentinel, so binds made before the first decision
// (initial propagation) sit above every real level.
func NewTrail(capacity int) *Trail {
	return &Trail{binds: make([]Bind, 0, capacity), cap: capacity, level: levelMax}
}

// Level returns the trail's current decision level, set explicitly by the
// search driver before each bind.
func (t *Trail) Level() int {
	return t.level
}

// SetLevel sets the decision level to be recorded with subsequent binds.
func (t *Trail) SetLevel(level int) {
	t.level = level
}

// Depth returns the number of binds currently on the trail.
func (t *Trail) Depth() int {
	return len(t.binds)
}

// Bind narrows v to newVal, recording enough to reverse the operation with
// Unbind. clause is the forcing clause, or nil for a decision.
func (t *Trail) Bind(v *Var, newVal Value, clause *ClauseSlot) {
	if len(t.binds) >= t.cap {
		panic(FatalError{Msg: "bind trail exhausted"})
	}
	t.binds = append(t.binds, Bind{
		Var:       v,
		PrevValue: v.Value,
		PrevLevel: v.Level,
		Clause:    clause,
		Prev:      v.BindHead,
	})
	v.BindHead = len(t.binds) - 1
	v.Value = newVal
	v.Level = t.level
}

// Unbind pops the trail back to depth, restoring every variable's value,
// level, and bind-history head to their state immediately before the bind
// at that depth.
func (t *Trail) Unbind(depth int) {
	for len(t.binds) > depth {
		b := t.binds[len(t.binds)-1]
		b.Var.Value = b.PrevValue
		b.Var.Level = b.PrevLevel
		b.Var.BindHead = b.Prev
		t.binds = t.binds[:len(t.binds)-1]
	}
}

// At returns the bind record at the given trail index, used by conflict
// analysis to walk a variable's bind history backwards via Prev.
func (t *Trail) At(idx int) Bind {
	return t.binds[idx]
}
