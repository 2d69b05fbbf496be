// Package lang reads the textual problem format consumed by csolve: a
// list of bounded integer variables, an optional objective directive,
// and one constraint per line, all over the operator set of the solver
// core. Example:
//
//	# send more money, reduced
//	var x 0 9
//	var y 0 9
//	min x
//	(< 4 (+ x y))
//	(not (= x y))
//
// Lines starting with '#' and blank lines are skipped. Each constraint
// line holds one parenthesised expression built from the operators
// =, <, neg, +, *, not, and, or, plus variable names and integer
// constants. The constraint lines together form the top-level
// conjunction.
package lang

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rhartert/csolve/internal/csp"
	"github.com/rhartert/csolve/internal/registry"
)

// objectiveName is the name under which a synthetic objective variable
// is registered when the objective directive carries a compound
// expression rather than a bare variable.
const objectiveName = "<objective>"

// Problem is the parsed form handed to the solver: the objective mode,
// the objective pseudo-variable (nil for any/all), and the root
// wide-and over all constraint lines.
type Problem struct {
	Objective    csp.Objective
	ObjectiveVar *csp.Var
	Root         *csp.Constr
}

// Parse reads a problem from r, registering its variables in reg.
func Parse(r io.Reader, reg *registry.Registry) (*Problem, error) {
	p := &Problem{Objective: csp.ObjAny}
	var elems []*csp.Constr
	objSeen := false

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "var":
			if err := parseVar(fields, reg); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case "any", "all", "min", "max":
			if objSeen {
				return nil, fmt.Errorf("line %d: objective declared twice", lineNo)
			}
			objSeen = true
			extra, err := parseObjective(fields, reg, p)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if extra != nil {
				elems = append(elems, extra)
			}
		default:
			c, err := parseConstr(line, reg)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			elems = append(elems, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, csp.InputError{Msg: "no constraints"}
	}

	p.Root = csp.WideAnd(elems...)
	return p, nil
}

// parseVar handles "var <name> <lo> <hi>".
func parseVar(fields []string, reg *registry.Registry) error {
	if len(fields) != 4 {
		return fmt.Errorf("want \"var <name> <lo> <hi>\", got %q", strings.Join(fields, " "))
	}
	lo, err := parseDomain(fields[2])
	if err != nil {
		return err
	}
	hi, err := parseDomain(fields[3])
	if err != nil {
		return err
	}
	if lo > hi {
		return fmt.Errorf("empty domain [%d, %d] for %q", lo, hi, fields[1])
	}
	_, err = reg.Add(fields[1], csp.Interval(lo, hi))
	return err
}

// parseObjective handles "any", "all", "min <expr>" and "max <expr>".
// For min/max over anything but a bare variable, a synthetic objective
// variable is registered and the returned constraint equates it with
// the expression.
func parseObjective(fields []string, reg *registry.Registry, p *Problem) (*csp.Constr, error) {
	switch fields[0] {
	case "any":
		p.Objective = csp.ObjAny
	case "all":
		p.Objective = csp.ObjAll
	case "min":
		p.Objective = csp.ObjMin
	case "max":
		p.Objective = csp.ObjMax
	}
	if p.Objective == csp.ObjAny || p.Objective == csp.ObjAll {
		if len(fields) != 1 {
			return nil, fmt.Errorf("objective %q takes no expression", fields[0])
		}
		return nil, nil
	}

	if len(fields) < 2 {
		return nil, fmt.Errorf("objective %q needs an expression", fields[0])
	}
	expr, err := parseConstr(strings.Join(fields[1:], " "), reg)
	if err != nil {
		return nil, err
	}
	if expr.Kind == csp.KindTerm && expr.Var != nil {
		p.ObjectiveVar = expr.Var
		return nil, nil
	}

	ov, err := reg.Add(objectiveName, csp.Interval(csp.MinDomain+1, csp.MaxDomain-1))
	if err != nil {
		return nil, err
	}
	p.ObjectiveVar = ov
	return csp.Eq(ov.Term(), expr), nil
}

// parseConstr parses a single constraint expression.
func parseConstr(s string, reg *registry.Registry) (*csp.Constr, error) {
	toks := tokenize(s)
	c, rest, err := parseExpr(toks, reg)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing input %q", strings.Join(rest, " "))
	}
	return c, nil
}

func tokenize(s string) []string {
	s = strings.ReplaceAll(s, "(", " ( ")
	s = strings.ReplaceAll(s, ")", " ) ")
	return strings.Fields(s)
}

func parseExpr(toks []string, reg *registry.Registry) (*csp.Constr, []string, error) {
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("unexpected end of expression")
	}
	tok := toks[0]
	toks = toks[1:]

	if tok != "(" {
		return parseAtom(tok, reg, toks)
	}

	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("unexpected end of expression after \"(\"")
	}
	op := toks[0]
	toks = toks[1:]

	unary := op == "neg" || op == "not"
	l, toks, err := parseExpr(toks, reg)
	if err != nil {
		return nil, nil, err
	}
	var r *csp.Constr
	if !unary {
		r, toks, err = parseExpr(toks, reg)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(toks) == 0 || toks[0] != ")" {
		return nil, nil, fmt.Errorf("missing \")\" after %q", op)
	}
	toks = toks[1:]

	switch op {
	case "=":
		return csp.Eq(l, r), toks, nil
	case "<":
		return csp.Lt(l, r), toks, nil
	case "neg":
		return csp.NegOf(l), toks, nil
	case "+":
		return csp.AddOf(l, r), toks, nil
	case "*":
		return csp.MulOf(l, r), toks, nil
	case "not":
		return csp.NotOf(l), toks, nil
	case "and":
		return csp.AndOf(l, r), toks, nil
	case "or":
		return csp.OrOf(l, r), toks, nil
	default:
		return nil, nil, fmt.Errorf("unknown operator %q", op)
	}
}

func parseAtom(tok string, reg *registry.Registry, rest []string) (*csp.Constr, []string, error) {
	if tok == ")" {
		return nil, nil, fmt.Errorf("unexpected \")\"")
	}
	if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
		return csp.ConstTerm(int32(n)), rest, nil
	}
	v := reg.Find(tok)
	if v == nil {
		return nil, nil, fmt.Errorf("unknown variable %q", tok)
	}
	return v.Term(), rest, nil
}

func parseDomain(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid bound %q", s)
	}
	return int32(n), nil
}
