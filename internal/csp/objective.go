package csp

import "sync/atomic"

// ObjectiveRegister tracks the best solution seen so far for objective
// modes MIN/MAX, and tightens the objective pseudo-variable's value
// cell so that propagation itself prunes the search once a better bound
// is known. ANY/ALL carry a register too, purely so the driver can
// treat every mode uniformly; their Better/UpdateBest/UpdateVal are
// no-ops beyond the trivial "always better" answer.
type ObjectiveRegister struct {
	objective Objective

	// v is the objective pseudo-variable. Its value cell is the one the
	// constraint graph reads, so UpdateVal mutates it directly; the
	// tightening is monotone and deliberately not trailed, which is what
	// lets a published best keep pruning after backtracking.
	v *Var

	best *atomic.Int32
}

// NewObjectiveRegister builds a register for the given mode. v is the
// pseudo-variable whose value is being minimised/maximised; it is nil
// for ObjAny/ObjAll. The best cell is shared across every worker clone
// so that any worker publishing a new best is instantly visible to all
// the others.
func NewObjectiveRegister(obj Objective, v *Var) *ObjectiveRegister {
	r := &ObjectiveRegister{
		objective: obj,
		v:         v,
		best:      &atomic.Int32{},
	}
	switch obj {
	case ObjAny, ObjAll:
		r.best.Store(0)
	case ObjMin:
		r.best.Store(MaxDomain)
	case ObjMax:
		r.best.Store(MinDomain)
	default:
		panic("csp: objective: invalid objective mode")
	}
	return r
}

// shareWith returns a register for a newly forked worker: same mode and
// same best cell (the best-objective cell is one of the handful of
// fields shared across workers), but bound to the worker's own copy of
// the objective pseudo-variable.
func (r *ObjectiveRegister) shareWith(v *Var) *ObjectiveRegister {
	return &ObjectiveRegister{objective: r.objective, v: v, best: r.best}
}

// Var returns the objective pseudo-variable, or nil for ObjAny/ObjAll.
func (r *ObjectiveRegister) Var() *Var {
	return r.v
}

// Best returns the best objective value published so far.
func (r *ObjectiveRegister) Best() int32 {
	return r.best.Load()
}

// Better reports whether the current value of the objective variable
// could still improve on the best published solution.
func (r *ObjectiveRegister) Better() bool {
	switch r.objective {
	case ObjAny, ObjAll:
		return true
	case ObjMin:
		return r.v.Value.Lo < r.Best()
	case ObjMax:
		return r.v.Value.Hi > r.Best()
	default:
		panic("csp: objective: invalid objective mode")
	}
}

// UpdateBest publishes the objective variable's current bound as the new
// best, called once a solution has been verified and found better.
func (r *ObjectiveRegister) UpdateBest() {
	switch r.objective {
	case ObjAny, ObjAll:
	case ObjMin:
		r.best.Store(r.v.Value.Lo)
	case ObjMax:
		r.best.Store(r.v.Value.Hi)
	default:
		panic("csp: objective: invalid objective mode")
	}
}

// UpdateVal tightens the objective variable against the published best
// so that propagation can prune branches that cannot beat it: MIN caps
// the upper bound at best-1, MAX raises the lower bound to best+1.
func (r *ObjectiveRegister) UpdateVal() {
	switch r.objective {
	case ObjAny, ObjAll:
	case ObjMin:
		hi := Add(r.Best(), Neg(1))
		if r.v.Value.Hi > hi {
			r.v.Value.Hi = hi
		}
	case ObjMax:
		lo := Add(r.Best(), 1)
		if r.v.Value.Lo < lo {
			r.v.Value.Lo = lo
		}
	default:
		panic("csp: objective: invalid objective mode")
	}
}
