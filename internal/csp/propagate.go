package csp

// Propagate narrows constr toward target, returning the number of
// narrowings performed (possibly 0) and whether propagation succeeded.
// clause is the clause currently driving propagation (nil for a bare
// decision bind); it is threaded through so that a Term failure can
// build a conflict clause and so that learnt clauses record what forced
// each bind.
func (s *Solver) Propagate(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	switch c.Kind {
	case KindTerm:
		return s.propagateTerm(c, target, clause)
	case KindEq:
		return s.propagateEq(c, target, clause)
	case KindLt:
		return s.propagateLt(c, target, clause)
	case KindNeg:
		return s.propagateNeg(c, target, clause)
	case KindAdd:
		return s.propagateAdd(c, target, clause)
	case KindMul:
		return s.propagateMul(c, target, clause)
	case KindNot:
		return s.propagateNot(c, target, clause)
	case KindAnd:
		return s.propagateAnd(c, target, clause)
	case KindOr:
		return s.propagateOr(c, target, clause)
	case KindWideAnd:
		return s.propagateWideAnd(c, target, clause)
	case KindConflict:
		return s.propagateConflict(c, target, clause)
	default:
		panic("csp: propagate: unknown constraint kind")
	}
}

func (s *Solver) propagateTerm(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	cur := termValue(c)

	if cur.Lo > target.Hi || cur.Hi < target.Lo {
		if c.Var != nil {
			s.onPropagationConflict(c.Var, clause)
		}
		return 0, false
	}

	lo := Max(cur.Lo, target.Lo)
	hi := Min(cur.Hi, target.Hi)
	if lo == cur.Lo && hi == cur.Hi {
		return 0, true
	}

	v := Interval(lo, hi)
	if c.Var == nil {
		c.Val = v
		return 1, true
	}

	s.bindVar(c.Var, v, clause)
	s.Stat.Propagations++

	n, ok := s.propagateClauses(c.Var.Clauses)
	if !ok {
		c.Var.Priority++
		s.Heap.Update(c.Var)
		return 0, false
	}
	return n + 1, true
}

// bindVar wraps Trail.Bind so callers never poke the trail directly.
func (s *Solver) bindVar(v *Var, val Value, clause *ClauseSlot) {
	s.Trail.Bind(v, val, clause)
}

// onPropagationConflict bumps the failing variable's priority, resifts
// it in the heap, and (if enabled) builds a learnt clause from the
// failure.
func (s *Solver) onPropagationConflict(v *Var, clause *ClauseSlot) {
	v.Priority++
	s.Heap.Update(v)
	if s.opts.CreateConflicts && clause != nil {
		s.createConflict(v, clause)
	}
}

func (s *Solver) propagateEq(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if target.IsTrue() {
		return s.propagateEqTrue(c.L, c.R, clause)
	}
	if target.IsFalse() {
		return s.propagateEqFalse(c.L, c.R, clause)
	}
	return 0, true
}

func (s *Solver) propagateEqTrue(l, r *Constr, clause *ClauseSlot) (int, bool) {
	lv := Eval(l)
	p, ok := s.Propagate(r, lv, clause)
	if !ok {
		return 0, false
	}
	rv := Eval(r)
	q, ok := s.Propagate(l, rv, clause)
	if !ok {
		return 0, false
	}
	return p + q, true
}

func (s *Solver) propagateEqFalse(l, r *Constr, clause *ClauseSlot) (int, bool) {
	lv := Eval(l)
	rv := Eval(r)

	p, ok := s.propagateEqFalseSide(r, rv, lv, clause)
	if !ok {
		return 0, false
	}
	q, ok := s.propagateEqFalseSide(l, lv, rv, clause)
	if !ok {
		return 0, false
	}
	return p + q, true
}

// propagateEqFalseSide shrinks p away from val's boundary when val
// coincides with one of pval's bounds (propagate_eq_false_lr).
func (s *Solver) propagateEqFalseSide(p *Constr, pval, val Value, clause *ClauseSlot) (int, bool) {
	if val.IsValue() && val.Lo != MinDomain && val.Lo != MaxDomain {
		if val.Lo == pval.Lo {
			return s.Propagate(p, Interval(Add(val.Lo, 1), MaxDomain), clause)
		}
		if val.Lo == pval.Hi {
			return s.Propagate(p, Interval(MinDomain, Add(val.Lo, -1)), clause)
		}
	}
	return 0, true
}

func (s *Solver) propagateLt(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if target.IsTrue() {
		return s.propagateLtTrue(c.L, c.R, clause)
	}
	if target.IsFalse() {
		return s.propagateLtFalse(c.L, c.R, clause)
	}
	return 0, true
}

func (s *Solver) propagateLtTrue(l, r *Constr, clause *ClauseSlot) (int, bool) {
	lv := Eval(l)
	p := 0
	if lv.Lo != MinDomain && lv.Lo != MaxDomain {
		var ok bool
		p, ok = s.Propagate(r, Interval(Add(lv.Lo, 1), MaxDomain), clause)
		if !ok {
			return 0, false
		}
	}
	rv := Eval(r)
	q := 0
	if rv.Hi != MinDomain && rv.Hi != MaxDomain {
		var ok bool
		q, ok = s.Propagate(l, Interval(MinDomain, Add(rv.Hi, -1)), clause)
		if !ok {
			return 0, false
		}
	}
	return p + q, true
}

func (s *Solver) propagateLtFalse(l, r *Constr, clause *ClauseSlot) (int, bool) {
	lv := Eval(l)
	p, ok := s.Propagate(r, Interval(MinDomain, lv.Hi), clause)
	if !ok {
		return 0, false
	}
	rv := Eval(r)
	q, ok := s.Propagate(l, Interval(rv.Lo, MaxDomain), clause)
	if !ok {
		return 0, false
	}
	return p + q, true
}

func (s *Solver) propagateNeg(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	v := Interval(Neg(target.Hi), Neg(target.Lo))
	return s.Propagate(c.L, v, clause)
}

func (s *Solver) propagateAdd(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	p, ok := s.propagateAddSide(c.R, c.L, target, clause)
	if !ok {
		return 0, false
	}
	q, ok := s.propagateAddSide(c.L, c.R, target, clause)
	if !ok {
		return 0, false
	}
	return p + q, true
}

func (s *Solver) propagateAddSide(p, other *Constr, target Value, clause *ClauseSlot) (int, bool) {
	ov := Eval(other)
	lo := Add(target.Lo, Neg(ov.Hi))
	hi := Add(target.Hi, Neg(ov.Lo))
	return s.Propagate(p, Interval(lo, hi), clause)
}

func (s *Solver) propagateMul(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	p, ok := s.propagateMulSide(c.R, c.L, target, clause)
	if !ok {
		return 0, false
	}
	q, ok := s.propagateMulSide(c.L, c.R, target, clause)
	if !ok {
		return 0, false
	}
	return p + q, true
}

func (s *Solver) propagateMulSide(p, other *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if target.Lo == MinDomain || target.Hi == MinDomain {
		return 0, true
	}
	ov := Eval(other)
	if !ov.IsValue() {
		return 0, true
	}
	targetConcrete := target.IsValue()
	if (target.IsTrue() && ov.Lo == 0) || (targetConcrete && ov.Lo != 0 && target.Lo%ov.Lo != 0) {
		return 0, false
	}
	if ov.Lo == 0 {
		return 0, true
	}
	lo := target.Lo / ov.Lo
	hi := target.Hi / ov.Lo
	return s.Propagate(p, Interval(Min(lo, hi), Max(lo, hi)), clause)
}

func (s *Solver) propagateNot(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if target.IsTrue() {
		return s.Propagate(c.L, False, clause)
	}
	if target.IsFalse() {
		return s.Propagate(c.L, True, clause)
	}
	return 0, true
}

func (s *Solver) propagateAnd(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if target.IsTrue() {
		return s.propagateLogicBoth(c.L, c.R, target, clause)
	}
	if target.IsFalse() {
		return s.propagateLogicEither(c.L, c.R, target, (Value).IsTrue, clause)
	}
	return 0, true
}

func (s *Solver) propagateOr(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if target.IsFalse() {
		return s.propagateLogicBoth(c.L, c.R, target, clause)
	}
	if target.IsTrue() {
		return s.propagateLogicEither(c.L, c.R, target, (Value).IsFalse, clause)
	}
	return 0, true
}

func (s *Solver) propagateLogicBoth(l, r *Constr, target Value, clause *ClauseSlot) (int, bool) {
	p, ok := s.Propagate(r, target, clause)
	if !ok {
		return 0, false
	}
	q, ok := s.Propagate(l, target, clause)
	if !ok {
		return 0, false
	}
	return p + q, true
}

func (s *Solver) propagateLogicEither(l, r *Constr, target Value, isNeutral func(Value) bool, clause *ClauseSlot) (int, bool) {
	p := 0
	if isNeutral(Eval(l)) {
		var ok bool
		p, ok = s.Propagate(r, target, clause)
		if !ok {
			return 0, false
		}
	}
	q := 0
	if isNeutral(Eval(r)) {
		var ok bool
		q, ok = s.Propagate(l, target, clause)
		if !ok {
			return 0, false
		}
	}
	return p + q, true
}

func (s *Solver) propagateWideAnd(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if !target.IsTrue() {
		return 0, true
	}
	total := 0
	for _, slot := range c.Slots {
		n, ok := s.Propagate(slot.Current, True, clause)
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

// propagateConflict locates the unique still-unbound variable among a
// learnt clause's literals (if every other one already equals its
// forbidden value) and narrows it away from that value. The scan swaps
// witness elements to the front so future scans short-circuit quickly,
// in the style of watched literals.
func (s *Solver) propagateConflict(c *Constr, target Value, clause *ClauseSlot) (int, bool) {
	if !target.IsTrue() {
		return 0, true
	}
	free := findFreeConflictLit(c)
	if free == nil {
		return 0, true
	}
	return s.propagateConflictInfer(*free, clause)
}

// findFreeConflictLit returns the single literal still unbound, or nil
// if some variable already differs from its forbidden value (clause is
// already satisfied), if more than one variable remains unbound, or if
// none does.
func findFreeConflictLit(c *Constr) *ConflictLit {
	var free *ConflictLit
	for i := range c.Lits {
		lit := &c.Lits[i]
		v := lit.Var.Value
		if v.IsValue() {
			if v.Lo != lit.Val {
				if i > 0 {
					c.Lits[0], *lit = *lit, c.Lits[0]
				}
				return nil
			}
			continue
		}
		if free == nil {
			free = lit
		} else {
			if i > 1 {
				c.Lits[0], *free = *free, c.Lits[0]
				c.Lits[1], *lit = *lit, c.Lits[1]
			}
			return nil
		}
	}
	return free
}

func (s *Solver) propagateConflictInfer(lit ConflictLit, clause *ClauseSlot) (int, bool) {
	v := lit.Var.Value
	if v.Lo == lit.Val && v.Lo != MinDomain && v.Lo != MaxDomain {
		return s.Propagate(lit.Var.Term(), Interval(Add(v.Lo, 1), MaxDomain), clause)
	}
	if v.Hi == lit.Val && v.Hi != MinDomain && v.Hi != MaxDomain {
		return s.Propagate(lit.Var.Term(), Interval(MinDomain, Add(v.Hi, -1)), clause)
	}
	return 0, true
}

// PropagateRoot drives the root constraint to the true value until no new
// narrowings happen, the initial propagation pass every problem goes
// through before search starts. It returns false if the problem is already
// inconsistent.
func (s *Solver) PropagateRoot() bool {
	for {
		n, ok := s.Propagate(s.Root, True, nil)
		if !ok {
			return false
		}
		if n == 0 {
			return true
		}
	}
}

// propagateClauses runs propagate-true over every clause in list under a
// fresh monotonic propagation tag, skipping clauses a later nested round
// in the same fixpoint already processed. A changed clause is
// re-normalised and the slot patched if normalisation produced a
// different constraint.
func (s *Solver) propagateClauses(list []*ClauseSlot) (int, bool) {
	tag := s.nextPropTag()
	s.conflictReset()
	total := 0
	for _, slot := range list {
		if slot.Tag > tag {
			continue
		}
		slot.Tag = tag

		n, ok := s.Propagate(slot.Current, True, slot)
		if !ok {
			return 0, false
		}
		total += n

		if n != 0 {
			norm := Normalize(slot.Current, s.Patches, s.Arena)
			if norm != slot.Current {
				s.Patches.Patch(slot, norm)
			}
		}
	}
	return total, true
}
