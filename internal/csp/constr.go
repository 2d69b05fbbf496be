package csp

// Kind is the operator tag of a constraint node: a sum type with one arm
// per variant, with eval.go, propagate.go, and normalize.go as the three
// matching pattern-matching drivers.
type Kind uint8

const (
	KindTerm Kind = iota
	KindEq
	KindLt
	KindNeg
	KindAdd
	KindMul
	KindNot
	KindAnd
	KindOr
	KindWideAnd
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "term"
	case KindEq:
		return "="
	case KindLt:
		return "<"
	case KindNeg:
		return "neg"
	case KindAdd:
		return "+"
	case KindMul:
		return "*"
	case KindNot:
		return "not"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindWideAnd:
		return "wide-and"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// unary reports whether a Kind takes a single child (L only).
func (k Kind) unary() bool {
	return k == KindNeg || k == KindNot
}

// Constr is a constraint node. Only the fields relevant to Kind are
// populated; the rest are zero.
type Constr struct {
	Kind Kind

	// Term: Var is non-nil for a named variable, whose mutable value cell
	// is Var.Value. Var is nil for an anonymous constant, whose fixed
	// value is Val.
	Var *Var
	Val Value

	// Expression: L is the only child for unary operators; L and R are
	// both populated for binary operators.
	L, R *Constr

	// WideAnd: the outer conjunction, and the unit of clause-list
	// membership.
	Slots []*ClauseSlot

	// Conflict: a learnt clause. It is satisfied iff at least one listed
	// variable differs from its forbidden value.
	Lits []ConflictLit
}

// ClauseSlot holds one element of a wide-and: its original constraint and
// the (possibly normalised and therefore different) constraint currently in
// effect, plus the propagation generation at which it was last processed.
type ClauseSlot struct {
	Current  *Constr
	Original *Constr
	Tag      uint64
}

// ConflictLit is one literal of a learnt conflict clause: the clause is
// violated only if Var currently equals Val.
type ConflictLit struct {
	Var *Var
	Val int32
}

// Term returns the variable's Term node, creating it on first use.
func (v *Var) Term() *Constr {
	if v.term == nil {
		v.term = &Constr{Kind: KindTerm, Var: v}
	}
	return v.term
}

// ConstTerm returns an anonymous constant node holding v.
func ConstTerm(v int32) *Constr {
	return &Constr{Kind: KindTerm, Val: Const(v)}
}

// IntervalTerm returns an anonymous constant node holding the interval
// [lo, hi].
func IntervalTerm(lo, hi int32) *Constr {
	return &Constr{Kind: KindTerm, Val: Interval(lo, hi)}
}

// Eq builds an equality expression.
func Eq(l, r *Constr) *Constr { return &Constr{Kind: KindEq, L: l, R: r} }

// Lt builds a less-than expression.
func Lt(l, r *Constr) *Constr { return &Constr{Kind: KindLt, L: l, R: r} }

// NegOf builds an arithmetic negation expression.
func NegOf(l *Constr) *Constr { return &Constr{Kind: KindNeg, L: l} }

// AddOf builds an addition expression.
func AddOf(l, r *Constr) *Constr { return &Constr{Kind: KindAdd, L: l, R: r} }

// MulOf builds a multiplication expression.
func MulOf(l, r *Constr) *Constr { return &Constr{Kind: KindMul, L: l, R: r} }

// NotOf builds a logical negation expression.
func NotOf(l *Constr) *Constr { return &Constr{Kind: KindNot, L: l} }

// AndOf builds a logical conjunction expression.
func AndOf(l, r *Constr) *Constr { return &Constr{Kind: KindAnd, L: l, R: r} }

// OrOf builds a logical disjunction expression.
func OrOf(l, r *Constr) *Constr { return &Constr{Kind: KindOr, L: l, R: r} }

// WideAnd builds the top-level conjunction over the given elements. Each
// element becomes its own clause slot, with Current and Original both
// initialised to the element.
func WideAnd(elems ...*Constr) *Constr {
	slots := make([]*ClauseSlot, len(elems))
	for i, e := range elems {
		slots[i] = &ClauseSlot{Current: e, Original: e}
	}
	return &Constr{Kind: KindWideAnd, Slots: slots}
}

// ConflictClause builds a learnt conflict clause over the given literals.
func ConflictClause(lits []ConflictLit) *Constr {
	return &Constr{Kind: KindConflict, Lits: lits}
}

// isConstNode reports whether constr is a term node currently holding a
// concrete value (true for both anonymous constants and bound variables).
func isConstNode(c *Constr) bool {
	return c.Kind == KindTerm && termValue(c).IsValue()
}

// termValue returns the current value of a term node.
func termValue(c *Constr) Value {
	if c.Var != nil {
		return c.Var.Value
	}
	return c.Val
}
