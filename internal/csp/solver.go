package csp

import (
	"context"
	"math"
	"math/rand"
)

// levelMax is the level sentinel, larger than any real decision level.
// It plays three roles: the level of a never-bound variable, the "no
// conflict pending" value of the conflict level, and the result of
// backjumping below level 0. Keeping one value for all three preserves
// the level comparisons conflict analysis depends on.
const levelMax = math.MaxInt

// OrderMode selects the comparator the variable heap uses to rank
// branching candidates.
type OrderMode uint8

const (
	OrderSmallestDomain OrderMode = iota
	OrderLargestDomain
	OrderSmallestValue
	OrderLargestValue
	OrderNone
)

// Objective selects what kind of solution the driver looks for.
type Objective uint8

const (
	ObjAny Objective = iota
	ObjAll
	ObjMin
	ObjMax
)

// Options configures a Solver: trail and arena sizes, the variable
// ordering strategy, restart and conflict-learning behaviour, the
// statistics sampling period, and the worker and objective settings.
type Options struct {
	BindTrailSize    int
	PatchTrailSize   int
	ArenaSize        int // primary arena byte budget
	ConflArenaSize   int // conflict arena byte budget
	CreateConflicts  bool
	PreferFailing    bool
	ComputeWeights   bool
	Order            OrderMode
	RestartFrequency uint64 // 0 disables
	StatsFrequency   uint64 // 0 disables
	MaxWorkers       int
	Objective        Objective
	// ObjectiveVar is the pseudo-variable the objective register tracks
	// for ObjMin/ObjMax; unused for ObjAny/ObjAll.
	ObjectiveVar *Var
}

// DefaultOptions is the baseline configuration: no conflict learning,
// smallest-domain ordering, no restarts, one worker.
var DefaultOptions = Options{
	BindTrailSize:    1 << 20,
	PatchTrailSize:   1 << 16,
	ArenaSize:        64 << 20,
	ConflArenaSize:   16 << 20,
	CreateConflicts:  false,
	PreferFailing:    false,
	ComputeWeights:   false,
	Order:            OrderSmallestDomain,
	RestartFrequency: 0,
	StatsFrequency:   0,
	MaxWorkers:       1,
	Objective:        ObjAny,
}

// Solver is the search driver together with every piece of per-worker
// state: trails, arenas, variable heap, objective register, and
// statistics. A worker clones a Solver (see maybeSpawn in workers.go)
// to search an independent slice of the problem; only the shared
// struct, the objective's best cell, and the context survive across
// clones.
type Solver struct {
	opts Options

	Vars []*Var
	Root *Constr // the wide-and root

	Trail      *Trail
	Patches    *PatchTrail
	Arena      *Arena
	ConflArena *Arena

	Heap *VarHeap
	Obj  *ObjectiveRegister
	Stat *Stats

	// ConflictLevel and ConflictVar are the public outputs of the most
	// recent conflict construction: the level the driver should backjump
	// to, and the asserting variable whose clause list should be
	// re-propagated there.
	ConflictLevel int
	ConflictVar   *Var

	propTag uint64

	luby       *Luby
	failCount  uint64
	workerID   int
	minLevel   int
	startVar   *Var
	rnd        *rand.Rand
	onSolution func(s *Solver)
	onStats    func(s *Solver)

	shared *shared
	ctx    context.Context
}

// NewSolver builds a solver for the given variables and root constraint,
// ready to search at level 0. vars must already be registered (see
// internal/registry); root must be a KindWideAnd node. ctx carries the
// overall search deadline; onSolution and onStats are invoked whenever
// a solution is verified or a periodic/final stats line is due, leaving
// all output formatting to internal/report rather than to this package.
func NewSolver(ctx context.Context, opts Options, vars []*Var, root *Constr, onSolution, onStats func(s *Solver)) *Solver {
	s := &Solver{
		opts:       opts,
		Vars:       vars,
		Root:       root,
		Trail:      NewTrail(opts.BindTrailSize),
		Patches:    NewPatchTrail(opts.PatchTrailSize),
		Arena:      NewArena(int64(opts.ArenaSize)),
		ConflArena: NewArena(int64(opts.ConflArenaSize)),
		Heap:       NewVarHeap(opts.Order, opts.PreferFailing),
		Obj:        NewObjectiveRegister(opts.Objective, opts.ObjectiveVar),
		Stat:       NewStats(),
		luby:       NewLuby(),
		workerID:   1,
		rnd:        rand.New(rand.NewSource(1)),
		onSolution: onSolution,
		onStats:    onStats,
		shared:     newShared(opts.MaxWorkers),
		ctx:        ctx,
	}
	s.conflictReset()
	for _, v := range vars {
		s.Heap.Push(v)
	}
	return s
}

// nextPropTag issues a fresh monotonic propagation-round tag.
func (s *Solver) nextPropTag() uint64 {
	s.propTag++
	return s.propTag
}

// WorkerID returns this worker's identifier. The initial solver is worker
// 1; forked workers get the next id from the shared generator.
func (s *Solver) WorkerID() int {
	return s.workerID
}

// Solutions returns the number of solutions published so far across all
// workers.
func (s *Solver) Solutions() uint64 {
	return s.shared.Solutions()
}

// TimedOut reports whether the search deadline fired before the search
// space was exhausted.
func (s *Solver) TimedOut() bool {
	return s.shared.TimedOut()
}
