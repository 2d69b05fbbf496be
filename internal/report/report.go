// Package report renders the solver's stdout events: per-worker solution
// lines, periodic and final statistics, and the shutdown verdict.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/rhartert/csolve/internal/csp"
)

// Reporter serialises all event lines onto one writer. Workers run in
// separate goroutines, so every line is written under the reporter's
// own mutex to keep it intact.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Solution prints a verified solution:
//
//	#1: SOLUTION: x = 1, y = [0;1], BEST: 4
func (r *Reporter) Solution(s *csp.Solver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "#%d: SOLUTION: ", s.WorkerID())
	for _, v := range s.Vars {
		fmt.Fprintf(r.w, "%s =", v.Name)
		writeValue(r.w, v.Value)
		fmt.Fprint(r.w, ", ")
	}
	fmt.Fprintf(r.w, "BEST: %d\n", s.Obj.Best())
}

// Stats prints one periodic or final statistics line:
//
//	#1: CALLS: 42, CUTS: 10, PROPS: 96, RESTARTS: 0, DEPTH: 0/7, AVG DEPTH: 3.100000, MEMORY: 128, SOLUTIONS: 1
func (r *Reporter) Stats(s *csp.Solver) {
	snap := s.Stat.Snapshot()
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "#%d: CALLS: %d, CUTS: %d, PROPS: %d, RESTARTS: %d, DEPTH: %d/%d, AVG DEPTH: %f, MEMORY: %d, SOLUTIONS: %d\n",
		s.WorkerID(), snap.Calls, snap.Cuts, snap.Propagations, snap.Restarts,
		snap.DepthMin, snap.DepthMax, snap.AvgCutDepth, snap.AllocPeak,
		s.Solutions())
}

// Shutdown prints the final verdict lines once every worker has
// returned: TIMEOUT if the deadline fired, and NO SOLUTION FOUND if no
// worker published a solution.
func (r *Reporter) Shutdown(timedOut bool, solutions uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if timedOut {
		fmt.Fprintln(r.w, "TIMEOUT")
	}
	if solutions == 0 {
		fmt.Fprintln(r.w, "NO SOLUTION FOUND")
	}
}

func writeValue(w io.Writer, v csp.Value) {
	if v.IsValue() {
		fmt.Fprintf(w, " %d", v.Lo)
	} else {
		fmt.Fprintf(w, " [%d;%d]", v.Lo, v.Hi)
	}
}
