package csp

// normCtx carries the state a single normalisation round needs beyond
// the node being rewritten: where to record wide-and slot patches, the
// arena charged for freshly built nodes, and how many patches happened
// so far this round. It is allocated once per Normalize call (never
// shared across goroutines), which keeps normalisation safe to run
// concurrently in different search workers.
type normCtx struct {
	pt      *PatchTrail
	arena   *Arena
	patches int
}

// Normalize rewrites constr to a fixpoint: it keeps applying a single
// normalisation step until both the root pointer and the number of
// wide-and slot patches performed in the last round settle. pt receives
// the patches a wide-and's elements produce; arena is charged for every
// node a rewrite builds.
//
// New nodes are only allocated when a child actually changed, so pointer
// identity is a meaningful "did this change" signal. Normalisation is
// therefore idempotent: a second call sees the same root and zero
// patches, and returns immediately.
func Normalize(c *Constr, pt *PatchTrail, arena *Arena) *Constr {
	for {
		prev := c
		ctx := &normCtx{pt: pt, arena: arena}
		c = normalizeStep(c, ctx)
		if c == prev && ctx.patches == 0 {
			return c
		}
	}
}

// newConst builds a fresh constant term, charged to the arena.
func (ctx *normCtx) newConst(v int32) *Constr {
	ctx.arena.Alloc(constrSize)
	return ConstTerm(v)
}

// update rebuilds a binary expression only if a child actually changed.
func (ctx *normCtx) update(c *Constr, l, r *Constr) *Constr {
	if l != c.L || r != c.R {
		ctx.arena.Alloc(constrSize)
		return &Constr{Kind: c.Kind, L: l, R: r}
	}
	return c
}

// updateUnary rebuilds a unary expression only if its child changed.
func (ctx *normCtx) updateUnary(c *Constr, l *Constr) *Constr {
	if l != c.L {
		ctx.arena.Alloc(constrSize)
		return &Constr{Kind: c.Kind, L: l}
	}
	return c
}

// newExpr builds a fresh expression node, charged to the arena.
func (ctx *normCtx) newExpr(kind Kind, l, r *Constr) *Constr {
	ctx.arena.Alloc(constrSize)
	return &Constr{Kind: kind, L: l, R: r}
}

func normalizeStep(c *Constr, ctx *normCtx) *Constr {
	switch c.Kind {
	case KindTerm:
		return c
	case KindEq:
		return normalizeEq(c, ctx)
	case KindLt:
		return normalizeLt(c, ctx)
	case KindNeg:
		return normalizeUnary(c, ctx, KindNeg)
	case KindAdd:
		return normalizeArith(c, ctx, KindAdd, 0)
	case KindMul:
		return normalizeArith(c, ctx, KindMul, 1)
	case KindNot:
		return normalizeUnary(c, ctx, KindNot)
	case KindAnd:
		return normalizeLogic(c, ctx, (Value).IsTrue, KindOr)
	case KindOr:
		return normalizeLogic(c, ctx, (Value).IsFalse, KindAnd)
	case KindWideAnd:
		return normalizeWideAnd(c, ctx)
	case KindConflict:
		return normalizeEval(c, ctx)
	default:
		panic("csp: normalize: unknown constraint kind")
	}
}

// normalizeEval replaces c by a constant term if it evaluates to a
// concrete value; otherwise it returns c unchanged.
func normalizeEval(c *Constr, ctx *normCtx) *Constr {
	v := Eval(c)
	if v.IsValue() {
		return ctx.newConst(v.Lo)
	}
	return c
}

func normalizeEq(c *Constr, ctx *normCtx) *Constr {
	if e := normalizeEval(c, ctx); e != c {
		return e
	}
	l := normalizeStep(c.L, ctx)
	r := normalizeStep(c.R, ctx)
	if l == r {
		return ctx.newConst(1)
	}
	return ctx.update(c, l, r)
}

func normalizeLt(c *Constr, ctx *normCtx) *Constr {
	if e := normalizeEval(c, ctx); e != c {
		return e
	}
	l := normalizeStep(c.L, ctx)
	r := normalizeStep(c.R, ctx)
	if l == r {
		return ctx.newConst(0)
	}

	// <(-a,-b) -> <(b,a)
	if l.Kind == KindNeg && r.Kind == KindNeg {
		return ctx.update(c, r.L, l.L)
	}

	if isConstNode(l) {
		// <(c, a+k) -> <(c-k, a)
		if r.Kind == KindAdd && isConstNode(r.R) {
			neg := normalizeStep(ctx.newExpr(KindNeg, r.R, nil), ctx)
			shifted := normalizeStep(ctx.update(r, l, neg), ctx)
			return ctx.update(c, shifted, r.L)
		}
		// <(c, -a) -> <(a, -c)
		if r.Kind == KindNeg {
			return ctx.update(c, r.L, normalizeStep(ctx.updateUnary(r, l), ctx))
		}
	}

	if isConstNode(r) {
		// <(a+k, c) -> <(a, c-k)
		if l.Kind == KindAdd && isConstNode(l.R) {
			neg := normalizeStep(ctx.newExpr(KindNeg, l.R, nil), ctx)
			shifted := normalizeStep(ctx.update(l, r, neg), ctx)
			return ctx.update(c, l.L, shifted)
		}
		// <(-a, c) -> <(-c, a)
		if l.Kind == KindNeg {
			return ctx.update(c, normalizeStep(ctx.updateUnary(l, r), ctx), l.L)
		}
	}

	return ctx.update(c, l, r)
}

func normalizeArith(c *Constr, ctx *normCtx, kind Kind, neutral int32) *Constr {
	if e := normalizeEval(c, ctx); e != c {
		return e
	}
	l := normalizeStep(c.L, ctx)
	r := normalizeStep(c.R, ctx)

	// commutative canonicalisation: constant goes on the right.
	if isConstNode(l) {
		return ctx.update(c, r, l)
	}
	if isConstNode(r) && termValue(r).Lo == neutral {
		return l
	}
	// re-associate (x + (y + c)) -> ((x + y) + c) to collect constants.
	if r.Kind == kind && isConstNode(r.R) {
		return ctx.update(c, ctx.update(r, l, r.L), r.R)
	}
	if l.Kind == kind && isConstNode(l.R) {
		return ctx.update(c, l.L, ctx.update(l, r, l.R))
	}
	return ctx.update(c, l, r)
}

func normalizeUnary(c *Constr, ctx *normCtx, kind Kind) *Constr {
	if e := normalizeEval(c, ctx); e != c {
		return e
	}
	l := normalizeStep(c.L, ctx)
	if l.Kind == kind {
		return l.L
	}
	return ctx.updateUnary(c, l)
}

func normalizeLogic(c *Constr, ctx *normCtx, isNeutral func(Value) bool, invKind Kind) *Constr {
	if e := normalizeEval(c, ctx); e != c {
		return e
	}
	l := normalizeStep(c.L, ctx)
	r := normalizeStep(c.R, ctx)

	if l == r {
		return l
	}
	if l.Kind == KindTerm && isNeutral(termValue(l)) {
		return r
	}
	if r.Kind == KindTerm && isNeutral(termValue(r)) {
		return l
	}
	// De Morgan: and(!a,!b) -> !or(a,b); or(!a,!b) -> !and(a,b).
	if l.Kind == KindNot && r.Kind == KindNot {
		return ctx.updateUnary(l, ctx.newExpr(invKind, l.L, r.L))
	}
	return ctx.update(c, l, r)
}

func normalizeWideAnd(c *Constr, ctx *normCtx) *Constr {
	for _, slot := range c.Slots {
		n := normalizeStep(slot.Current, ctx)
		if n != slot.Current {
			ctx.pt.Patch(slot, n)
			ctx.patches++
		}
	}
	return c
}
