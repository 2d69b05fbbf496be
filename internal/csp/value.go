// Package csp implements an interval-domain finite-domain constraint solver:
// saturating arithmetic, constraint evaluation and propagation, algebraic
// normalisation, 1-UIP conflict learning, variable ordering, and a
// goroutine-based search driver.
package csp

import "math"

// MinDomain and MaxDomain are the saturating sentinels of the value domain.
// A bound equal to MinDomain means "no finite lower bound" (-infinity); a
// bound equal to MaxDomain means "no finite upper bound" (+infinity).
const (
	MinDomain int32 = math.MinInt32
	MaxDomain int32 = math.MaxInt32
)

// Value is a closed interval [Lo, Hi] over the 32-bit signed domain.
type Value struct {
	Lo, Hi int32
}

// Interval returns the value [lo, hi].
func Interval(lo, hi int32) Value {
	return Value{Lo: lo, Hi: hi}
}

// Const returns the singleton value [v, v].
func Const(v int32) Value {
	return Value{Lo: v, Hi: v}
}

// True and False are the canonical concrete boolean values.
var (
	True  = Const(1)
	False = Const(0)
)

// IsValue reports whether v is concrete, i.e. Lo == Hi.
func (v Value) IsValue() bool {
	return v.Lo == v.Hi
}

// IsTrue reports whether v can only represent a non-zero value.
func (v Value) IsTrue() bool {
	return v.Lo > 0 || v.Hi < 0
}

// IsFalse reports whether v is the concrete value 0.
func (v Value) IsFalse() bool {
	return v.IsValue() && v.Lo == 0
}

// Empty reports whether v denotes an empty (inconsistent) interval.
func (v Value) Empty() bool {
	return v.Lo > v.Hi
}

// Intersect returns the intersection of v and w. The result may be empty.
func (v Value) Intersect(w Value) Value {
	return Value{Lo: Max(v.Lo, w.Lo), Hi: Min(v.Hi, w.Hi)}
}

// Neg negates a, saturating so that the two sentinels swap.
func Neg(a int32) int32 {
	switch a {
	case MinDomain:
		return MaxDomain
	case MaxDomain:
		return MinDomain
	default:
		return -a
	}
}

// Add returns a+b, saturating on overflow. Either sentinel is absorbing:
// MinDomain wins over MaxDomain if both appear, matching the reference
// implementation's check order.
func Add(a, b int32) int32 {
	if a == MinDomain || b == MinDomain {
		return MinDomain
	}
	if a == MaxDomain || b == MaxDomain {
		return MaxDomain
	}

	c := int32(uint32(a) + uint32(b))
	if (a^b)&MinDomain == 0 && (c^a)&MinDomain != 0 {
		if a < 0 {
			return MinDomain
		}
		return MaxDomain
	}
	return c
}

// Mul returns a*b, saturating on overflow. Sentinel operands are checked
// before anything else, so a zero operand does not short-circuit a
// saturated counterpart: Mul(MinDomain, 0) saturates to MinDomain rather
// than collapsing to 0.
func Mul(a, b int32) int32 {
	if a == MinDomain {
		if b < 0 {
			return MaxDomain
		}
		return MinDomain
	}
	if b == MinDomain {
		if a < 0 {
			return MaxDomain
		}
		return MinDomain
	}
	if a == MaxDomain {
		if b < 0 {
			return MinDomain
		}
		return MaxDomain
	}
	if b == MaxDomain {
		if a < 0 {
			return MinDomain
		}
		return MaxDomain
	}

	c := int64(a) * int64(b)
	hi := int32(c >> 32)
	lo := int32(c)
	if hi != lo>>31 {
		if hi < 0 {
			return MinDomain
		}
		return MaxDomain
	}
	return lo
}

// Min returns the smaller of a and b.
func Min(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
