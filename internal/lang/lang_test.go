package lang

import (
	"strings"
	"testing"

	"github.com/rhartert/csolve/internal/csp"
	"github.com/rhartert/csolve/internal/registry"
)

func TestParseProblem(t *testing.T) {
	input := `
# two variables, one objective, two constraints
var x 0 9
var y -5 5

min x

(< y x)
(not (= x 4))
`
	reg := registry.New()
	p, err := Parse(strings.NewReader(input), reg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	x := reg.Find("x")
	y := reg.Find("y")
	if x == nil || y == nil {
		t.Fatalf("variables not registered")
	}
	if x.Value != csp.Interval(0, 9) {
		t.Errorf("x domain: got %+v, want [0, 9]", x.Value)
	}
	if y.Value != csp.Interval(-5, 5) {
		t.Errorf("y domain: got %+v, want [-5, 5]", y.Value)
	}

	if p.Objective != csp.ObjMin {
		t.Errorf("objective: got %d, want min", p.Objective)
	}
	if p.ObjectiveVar != x {
		t.Errorf("objective variable: got %v, want x", p.ObjectiveVar)
	}

	if p.Root.Kind != csp.KindWideAnd || len(p.Root.Slots) != 2 {
		t.Fatalf("root: got %s with %d slots, want wide-and with 2", p.Root.Kind, len(p.Root.Slots))
	}
	if p.Root.Slots[0].Current.Kind != csp.KindLt {
		t.Errorf("first clause: got %s, want <", p.Root.Slots[0].Current.Kind)
	}
	if p.Root.Slots[1].Current.Kind != csp.KindNot {
		t.Errorf("second clause: got %s, want not", p.Root.Slots[1].Current.Kind)
	}
}

func TestParseCompoundObjective(t *testing.T) {
	input := `
var a 1 3
var b 1 3
max (+ a b)
(< a b)
`
	reg := registry.New()
	p, err := Parse(strings.NewReader(input), reg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Objective != csp.ObjMax {
		t.Errorf("objective: got %d, want max", p.Objective)
	}
	if p.ObjectiveVar == nil || p.ObjectiveVar == reg.Find("a") {
		t.Fatalf("compound objective must get its own variable")
	}
	// The synthetic variable is tied to the expression by an extra
	// equality clause.
	if len(p.Root.Slots) != 2 {
		t.Fatalf("slots: got %d, want 2", len(p.Root.Slots))
	}
	if p.Root.Slots[0].Current.Kind != csp.KindEq {
		t.Errorf("objective clause: got %s, want =", p.Root.Slots[0].Current.Kind)
	}
}

func TestParseDefaultsToAny(t *testing.T) {
	reg := registry.New()
	p, err := Parse(strings.NewReader("var x 0 1\nx\n"), reg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Objective != csp.ObjAny {
		t.Errorf("objective: got %d, want any", p.Objective)
	}
	if p.ObjectiveVar != nil {
		t.Errorf("any objective must not carry a variable")
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"unknown variable", "var x 0 1\n(= x q)\n"},
		{"unknown operator", "var x 0 1\n(<= x 1)\n"},
		{"duplicate variable", "var x 0 1\nvar x 0 1\nx\n"},
		{"empty domain", "var x 5 2\nx\n"},
		{"missing paren", "var x 0 1\n(= x 1\n"},
		{"trailing tokens", "var x 0 1\n(= x 1) x\n"},
		{"duplicate objective", "var x 0 1\nmin x\nmax x\nx\n"},
		{"no constraints", "var x 0 1\n"},
		{"bad bound", "var x lo 1\nx\n"},
	}
	for _, tc := range testCases {
		reg := registry.New()
		if _, err := Parse(strings.NewReader(tc.input), reg); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestParsedProblemSolves(t *testing.T) {
	input := `
var a 1 3
var b 1 3
all
(= (+ a b) 4)
(< a b)
`
	reg := registry.New()
	p, err := Parse(strings.NewReader(input), reg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	opts := csp.DefaultOptions
	opts.Objective = p.Objective
	opts.ObjectiveVar = p.ObjectiveVar

	count := 0
	s := csp.NewSolver(nil, opts, reg.Vars(), p.Root, func(s *csp.Solver) {
		count++
		a := reg.Find("a")
		b := reg.Find("b")
		if a.Value != csp.Const(1) || b.Value != csp.Const(3) {
			t.Errorf("solution: got a %+v, b %+v, want a = 1, b = 3", a.Value, b.Value)
		}
	}, nil)
	csp.Normalize(p.Root, s.Patches, s.Arena)
	reg.BindClauses(p.Root)
	if !s.PropagateRoot() {
		t.Fatalf("initial propagation failed")
	}
	s.Solve()
	if count != 1 {
		t.Errorf("solutions: got %d, want 1", count)
	}
}
