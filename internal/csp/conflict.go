package csp

// seenMaxEntries bounds the conflict-construction "seen" set. A Go map
// already gives O(1) membership, but capping the total entry count makes
// a pathological conflict degrade to a soft failure (no learning from
// this failure) instead of growing without bound.
const seenMaxEntries = 1024 * 64

// conflictBuilder accumulates the state of one conflict-clause
// construction. It is allocated fresh per failure and never shared
// across goroutines, so two workers building conflicts concurrently
// never interfere.
type conflictBuilder struct {
	s        *Solver
	seen     map[interface{}]struct{}
	lits     []ConflictLit
	maxLevel int
	failed   bool
}

func newConflictBuilder(s *Solver) *conflictBuilder {
	return &conflictBuilder{s: s, seen: make(map[interface{}]struct{})}
}

func (b *conflictBuilder) markSeen(x interface{}) bool {
	if _, ok := b.seen[x]; ok {
		return true
	}
	if len(b.seen) >= seenMaxEntries {
		b.failed = true
		return true
	}
	b.seen[x] = struct{}{}
	return false
}

// conflictReset clears the outputs of the previous conflict
// construction, called at the start of every clause-list propagation
// round so a stale conflict never drives a fresh backjump.
func (s *Solver) conflictReset() {
	s.ConflictLevel = levelMax
	s.ConflictVar = nil
}

// createConflict builds a learnt conflict clause after v failed to
// narrow under clause. On success the clause is appended to
// the clause list of every variable it mentions and becomes the
// driver's current conflict target (ConflictLevel/ConflictVar). On a
// soft failure (the seen set overflows, or a non-boolean atom is reached) no
// clause is created and the driver falls back to plain backtracking.
func (s *Solver) createConflict(v *Var, clause *ClauseSlot) {
	b := newConflictBuilder(s)

	b.addConstr(v, clause.Original)
	if b.failed {
		return
	}
	b.addVar(v)
	if b.failed || len(b.lits) == 0 {
		return
	}

	confl := ConflictClause(b.lits)
	s.ConflArena.Alloc(constrSize + int64(len(b.lits))*litSize)

	level, assertVar := assertionLevel(b.lits, b.maxLevel)
	s.ConflictLevel = level
	s.ConflictVar = assertVar

	s.ConflArena.Alloc(slotSize)
	slot := &ClauseSlot{Current: confl, Original: confl}
	seenVar := map[*Var]bool{}
	for _, lit := range b.lits {
		if seenVar[lit.Var] {
			continue
		}
		seenVar[lit.Var] = true
		lit.Var.Clauses = append(lit.Var.Clauses, slot)
	}
	s.Stat.Conflicts++
}

// assertionLevel picks the level the driver backjumps to: one above the
// highest literal level strictly below maxLevel, so the step at that
// literal's level stays in place, or 0 if no literal sits below
// maxLevel. The returned variable is the literal at that lower level.
func assertionLevel(lits []ConflictLit, maxLevel int) (int, *Var) {
	level := 0
	var assertVar *Var
	if len(lits) == 0 {
		return 0, nil
	}
	assertVar = lits[0].Var
	for _, lit := range lits {
		l := lit.Var.Level
		if l < maxLevel && l+1 > level {
			level = l + 1
			assertVar = lit.Var
		}
	}
	return level, assertVar
}

func (b *conflictBuilder) addTerm(v *Var) {
	val := v.Value
	if !val.IsValue() || val.Lo > 1 || val.Lo < 0 {
		b.failed = true
		return
	}
	b.lits = append(b.lits, ConflictLit{Var: v, Val: val.Lo})
	if v.Level > b.maxLevel {
		b.maxLevel = v.Level
	}
}

// addConstr walks constr looking for terminal variables to fold into
// the conflict.
func (b *conflictBuilder) addConstr(v *Var, constr *Constr) {
	if b.failed || b.markSeen(constr) {
		return
	}

	switch constr.Kind {
	case KindTerm:
		b.addConstrTerm(v, constr)
	case KindWideAnd:
		for _, slot := range constr.Slots {
			b.addConstr(v, slot.Current)
			if b.failed {
				return
			}
		}
	case KindConflict:
		for _, lit := range constr.Lits {
			b.addConstr(v, lit.Var.Term())
			if b.failed {
				return
			}
		}
	case KindEq, KindLt, KindAdd, KindMul, KindAnd, KindOr:
		b.addConstr(v, constr.R)
		if b.failed {
			return
		}
		b.addConstr(v, constr.L)
	case KindNeg, KindNot:
		b.addConstr(v, constr.L)
	default:
		panic("csp: conflict: unknown constraint kind")
	}
}

func (b *conflictBuilder) addConstrTerm(v *Var, constr *Constr) {
	other := constr.Var
	if other == nil || other == v {
		return
	}
	if other.Level < b.s.Trail.Level() || (other.BindHead != NoBind && b.s.Trail.At(other.BindHead).Clause == nil) {
		b.addTerm(other)
		return
	}
	b.addVar(other)
}

// addVar folds a variable's entire bind history into the conflict:
// inferred binds recurse into their forcing clause's original form;
// decisions contribute a terminal literal.
func (b *conflictBuilder) addVar(v *Var) {
	if b.failed || b.markSeen(v) {
		return
	}
	for idx := v.BindHead; idx != NoBind; {
		bind := b.s.Trail.At(idx)
		if bind.Clause != nil {
			b.addConstr(v, bind.Clause.Original)
			if b.failed {
				return
			}
		} else {
			b.addTerm(v)
			if b.failed {
				return
			}
		}
		idx = bind.Prev
	}
}
