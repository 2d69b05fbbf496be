// Package registry builds and owns the variable lookup tables the solver
// core consumes: name to entry and term to entry resolution, clause-list
// initialisation, and the optional seeding of initial search priorities
// from the shape of the constraints each variable appears in.
package registry

import (
	"fmt"

	"github.com/rhartert/csolve/internal/csp"
)

// Weights added to a variable's initial priority for each kind of
// constraint it appears in, when weighting is enabled.
const (
	WeightEqual    = 1000
	WeightCompare  = 100
	WeightNotEqual = 10
)

// Registry is the variable environment built at ingestion time: the
// ordered list of variables plus the name lookup table.
type Registry struct {
	vars   []*csp.Var
	byName map[string]*csp.Var
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*csp.Var)}
}

// Add registers a fresh variable with the given initial domain. It
// returns an error if the name is already taken.
func (r *Registry) Add(name string, init csp.Value) (*csp.Var, error) {
	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("variable %q declared twice", name)
	}
	v := csp.NewVar(len(r.vars), name, init)
	r.vars = append(r.vars, v)
	r.byName[name] = v
	return v, nil
}

// Find returns the variable with the given name, or nil.
func (r *Registry) Find(name string) *csp.Var {
	return r.byName[name]
}

// ByTerm returns the variable behind a term node, or nil for an
// anonymous constant.
func (r *Registry) ByTerm(c *csp.Constr) *csp.Var {
	return c.Var
}

// Vars returns the registered variables in declaration order.
func (r *Registry) Vars() []*csp.Var {
	return r.vars
}

// Validate checks that every variable ended up with a bounded domain
// after the initial normalisation and propagation pass; a variable still
// touching a saturation sentinel cannot be enumerated.
func (r *Registry) Validate() error {
	for _, v := range r.vars {
		if v.Value.Lo == csp.MinDomain || v.Value.Hi == csp.MaxDomain {
			return csp.InputError{Msg: fmt.Sprintf("unbounded variable %q", v.Name)}
		}
	}
	return nil
}

// BindClauses populates every variable's clause list from the root
// wide-and: each variable is attached to the outermost clause slot it
// occurs under, exactly once.
func (r *Registry) BindClauses(root *csp.Constr) {
	bindClauses(root, nil)
}

func bindClauses(c *csp.Constr, clause *csp.ClauseSlot) {
	switch c.Kind {
	case csp.KindTerm:
		if c.Var == nil || c.Var.Bound() || clause == nil {
			return
		}
		for _, have := range c.Var.Clauses {
			if have == clause {
				return
			}
		}
		c.Var.Clauses = append(c.Var.Clauses, clause)
	case csp.KindWideAnd:
		for _, slot := range c.Slots {
			sc := clause
			// A direct element of the top-level conjunction becomes its
			// own clause; nested wide-ands pass the enclosing clause on.
			if clause == nil && slot.Current.Kind != csp.KindWideAnd {
				sc = slot
			}
			bindClauses(slot.Current, sc)
		}
	case csp.KindNeg, csp.KindNot:
		bindClauses(c.L, clause)
	case csp.KindConflict:
	default:
		bindClauses(c.R, clause)
		bindClauses(c.L, clause)
	}
}

// Weigh seeds each variable's priority from the constraints it appears
// in: equalities recommend their variables most strongly, comparisons
// less so, and disequalities least. Enabled by the weighten option.
func (r *Registry) Weigh(root *csp.Constr) {
	weigh(root)
}

func weigh(c *csp.Constr) {
	switch c.Kind {
	case csp.KindTerm, csp.KindConflict:
	case csp.KindEq:
		weighten(c, WeightEqual)
	case csp.KindLt:
		weighten(c, WeightCompare)
	case csp.KindNot:
		// not(=) is a disequality; any other negated comparison keeps
		// its own weight.
		if c.L.Kind == csp.KindEq {
			weighten(c.L, WeightNotEqual)
			return
		}
		weigh(c.L)
	case csp.KindNeg:
		weigh(c.L)
	case csp.KindWideAnd:
		for _, slot := range c.Slots {
			weigh(slot.Current)
		}
	default:
		weigh(c.L)
		weigh(c.R)
	}
}

// weighten adds weight to the priority of every unbound variable in the
// subtree rooted at c.
func weighten(c *csp.Constr, weight int64) {
	switch c.Kind {
	case csp.KindTerm:
		if c.Var != nil && !c.Var.Bound() {
			c.Var.Priority += weight
		}
	case csp.KindNeg, csp.KindNot:
		weighten(c.L, weight)
	case csp.KindWideAnd:
		for _, slot := range c.Slots {
			weighten(slot.Current, weight)
		}
	case csp.KindConflict:
	default:
		weighten(c.R, weight)
		weighten(c.L, weight)
	}
}
