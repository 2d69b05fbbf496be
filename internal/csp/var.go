package csp

// NoBind is the sentinel BindHead value for a variable that has never been
// bound.
const NoBind = -1

// NotInHeap is the sentinel HeapPos value for a variable currently
// outside the variable heap. yagh.IntMap owns the physical heap array,
// so this field does not track a literal slot index; it carries the "is
// this variable enqueued" invariant.
const NotInHeap = -1

// Var is a variable's registry entry: identity, current value cell, bind
// history head, clause-list membership, and the live search metadata
// (heap membership and priority) that ordering and conflict analysis
// read and update.
type Var struct {
	ID   int
	Name string

	// Value is the variable's current value cell, mutated only through
	// the Trail.
	Value Value

	// Level is the decision level at which Value was last bound. A
	// never-bound variable sits at levelMax; conflict analysis relies on
	// that ordering.
	Level int

	// BindHead indexes into the owning Trail's bind slice; NoBind if the
	// variable has never been bound.
	BindHead int

	// Clauses lists the clause slots this variable participates in,
	// populated at ingestion time by the registry.
	Clauses []*ClauseSlot

	// HeapPos is NotInHeap unless the variable is currently in the
	// variable heap.
	HeapPos int

	// Priority is bumped on propagation failure and used to break ties
	// between otherwise-equal heap candidates when prefer-failing search
	// is enabled. It may also be seeded from constraint shape (see
	// internal/registry's weighting step).
	Priority int64

	term *Constr
}

// NewVar returns a registry entry for a fresh variable with the given
// initial domain.
func NewVar(id int, name string, init Value) *Var {
	return &Var{
		ID:       id,
		Name:     name,
		Value:    init,
		Level:    levelMax,
		BindHead: NoBind,
		HeapPos:  NotInHeap,
	}
}

// Bound reports whether the variable currently holds a concrete value.
func (v *Var) Bound() bool {
	return v.Value.IsValue()
}
