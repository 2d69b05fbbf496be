package csp

// Eval computes the interval value of a constraint node bottom-up. It never
// mutates anything; it is safe to call at any point during search.
func Eval(c *Constr) Value {
	switch c.Kind {
	case KindTerm:
		return termValue(c)
	case KindEq:
		return evalEq(c)
	case KindLt:
		return evalLt(c)
	case KindNeg:
		return evalNeg(c)
	case KindAdd:
		return evalAdd(c)
	case KindMul:
		return evalMul(c)
	case KindNot:
		return evalNot(c)
	case KindAnd:
		return evalAnd(c)
	case KindOr:
		return evalOr(c)
	case KindWideAnd:
		return evalWideAnd(c)
	case KindConflict:
		return evalConflict(c)
	default:
		panic("csp: eval: unknown constraint kind")
	}
}

func evalEq(c *Constr) Value {
	a := Eval(c.L)
	b := Eval(c.R)

	if a.Lo == MinDomain || a.Hi == MaxDomain || b.Lo == MinDomain || b.Hi == MaxDomain {
		return Interval(0, 1)
	}
	if a.Hi == b.Hi && a.Lo == b.Lo && a.Hi == a.Lo {
		return True
	}
	if a.Hi < b.Lo || a.Lo > b.Hi {
		return False
	}
	return Interval(0, 1)
}

func evalLt(c *Constr) Value {
	a := Eval(c.L)
	b := Eval(c.R)

	if a.Lo == MinDomain || a.Hi == MaxDomain || b.Lo == MinDomain || b.Hi == MaxDomain {
		return Interval(0, 1)
	}
	if a.Hi < b.Lo {
		return True
	}
	if a.Lo >= b.Hi {
		return False
	}
	return Interval(0, 1)
}

func evalNeg(c *Constr) Value {
	a := Eval(c.L)
	return Interval(Neg(a.Hi), Neg(a.Lo))
}

func evalAdd(c *Constr) Value {
	a := Eval(c.L)
	b := Eval(c.R)
	return Interval(Add(a.Lo, b.Lo), Add(a.Hi, b.Hi))
}

func evalMul(c *Constr) Value {
	a := Eval(c.L)
	b := Eval(c.R)

	ll := Mul(a.Lo, b.Lo)
	lh := Mul(a.Lo, b.Hi)
	hl := Mul(a.Hi, b.Lo)
	hh := Mul(a.Hi, b.Hi)
	lo := Min(Min(ll, lh), Min(hl, hh))
	hi := Max(Max(ll, lh), Max(hl, hh))
	return Interval(lo, hi)
}

func evalNot(c *Constr) Value {
	a := Eval(c.L)
	if a.IsTrue() {
		return False
	}
	if a.IsFalse() {
		return True
	}
	return Interval(0, 1)
}

func evalAnd(c *Constr) Value {
	l := Eval(c.L)
	if l.IsFalse() {
		return False
	}
	r := Eval(c.R)
	if r.IsFalse() {
		return False
	}
	if l.IsTrue() && r.IsTrue() {
		return True
	}
	return Interval(0, 1)
}

func evalOr(c *Constr) Value {
	l := Eval(c.L)
	if l.IsTrue() {
		return True
	}
	r := Eval(c.R)
	if r.IsTrue() {
		return True
	}
	if l.IsFalse() && r.IsFalse() {
		return False
	}
	return Interval(0, 1)
}

func evalWideAnd(c *Constr) Value {
	allTrue := true
	for _, s := range c.Slots {
		v := Eval(s.Current)
		if v.IsFalse() {
			return False
		}
		if !v.IsTrue() {
			allTrue = false
		}
	}
	if allTrue {
		return True
	}
	return Interval(0, 1)
}

// evalConflict reports 1 as soon as some concrete variable differs from
// its forbidden value and [0,1] while any variable is still free. A
// clause whose every variable is pinned to its forbidden value also
// reads as [0,1], never as 0: the search relies on propagation, not
// evaluation, to rule the prefix out.
func evalConflict(c *Constr) Value {
	for _, lit := range c.Lits {
		v := Eval(lit.Var.Term())
		if v.IsValue() {
			if v.Lo != lit.Val {
				return True
			}
		} else {
			return Interval(0, 1)
		}
	}
	return Interval(0, 1)
}
