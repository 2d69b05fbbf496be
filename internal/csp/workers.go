package csp

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
)

// shared is the only state visible to every worker: the live-worker
// count, a worker-id generator, the solution counter, and a timeout
// flag. The mutex serialises the worker-count increment when spawning
// and the solution check-and-report; everything else a worker owns
// privately. The best-objective cell lives in ObjectiveRegister, since
// it needs its own atomic, not the mutex.
type shared struct {
	mu         sync.Mutex
	workers    int32
	maxWorkers int32
	nextID     int32
	solutions  uint64
	timedOut   atomic.Bool
	wg         sync.WaitGroup
}

func newShared(maxWorkers int) *shared {
	return &shared{workers: 1, maxWorkers: int32(maxWorkers), nextID: 1}
}

// Solutions returns the number of solutions published so far.
func (sh *shared) Solutions() uint64 {
	return atomic.LoadUint64(&sh.solutions)
}

// TimedOut reports whether the search's deadline has passed.
func (sh *shared) TimedOut() bool {
	return sh.timedOut.Load()
}

// maybeSpawn launches a new worker goroutine to search the upper half
// of v's interval while the caller continues with the lower half,
// provided v still has more than one possible value and the live worker
// count allows it.
//
// Unlike fork, a goroutine shares this process's address space, so the
// child cannot simply inherit a copy-on-write snapshot of every
// variable, constraint, and clause slot: s.clone builds that snapshot
// explicitly before the goroutine starts, so the two searches never
// mutate each other's state.
func (s *Solver) maybeSpawn(v *Var, level int) {
	if v.Bound() || s.shared == nil {
		return
	}

	s.shared.mu.Lock()
	if s.shared.workers >= s.shared.maxWorkers {
		s.shared.mu.Unlock()
		return
	}
	s.shared.workers++
	id := s.shared.nextID + 1
	s.shared.nextID = id
	s.shared.mu.Unlock()

	lo, hi := v.Value.Lo, v.Value.Hi
	mid := lo + (hi-lo)/2

	var childVal, parentVal Value
	if mid+1 == hi {
		childVal = Const(hi)
	} else {
		childVal = Interval(mid+1, hi)
	}
	if lo == mid {
		parentVal = Const(lo)
	} else {
		parentVal = Interval(lo, mid)
	}

	child := s.clone(int(id), level)
	child.Trail.SetLevel(level)
	cv := child.varByID(v.ID)
	child.bindVar(cv, childVal, nil)
	child.minLevel = level
	child.startVar = cv

	s.shared.wg.Add(1)
	go func() {
		defer s.shared.wg.Done()
		defer func() {
			// A fatal resource error kills only this worker, the way a
			// forked process dies alone; the siblings keep searching.
			if r := recover(); r != nil {
				fe, ok := r.(FatalError)
				if !ok {
					panic(r)
				}
				fmt.Fprintf(os.Stderr, "#%d: %s\n", child.workerID, fe.Error())
				child.shared.mu.Lock()
				child.shared.workers--
				child.shared.mu.Unlock()
			}
		}()
		child.Solve()
	}()

	s.Trail.SetLevel(level)
	s.bindVar(v, parentVal, nil)
}

// varByID resolves a cloned variable by its (shared) ID.
func (s *Solver) varByID(id int) *Var {
	return s.Vars[id]
}

// clone builds an independent Solver that starts from the exact search
// state s is in right now — same variable domains, same bind history
// replayed onto a fresh trail, same clause graph — but with its own
// trails, arena, and variable heap so the new worker can never observe
// or corrupt the caller's progress. workerID and minLevel are taken
// from the arguments; ctx, the objective register's
// shared best cell, and the shared struct are intentionally shared.
func (s *Solver) clone(workerID int, forkLevel int) *Solver {
	varMap := make(map[*Var]*Var, len(s.Vars))
	vars := make([]*Var, len(s.Vars))
	for i, v := range s.Vars {
		nv := &Var{
			ID:       v.ID,
			Name:     v.Name,
			Value:    v.Value,
			Level:    v.Level,
			BindHead: NoBind,
			HeapPos:  NotInHeap,
			Priority: v.Priority,
		}
		vars[i] = nv
		varMap[v] = nv
	}

	constrMap := make(map[*Constr]*Constr)
	slotMap := make(map[*ClauseSlot]*ClauseSlot)
	var cloneConstr func(c *Constr) *Constr
	var cloneSlot func(sl *ClauseSlot) *ClauseSlot

	cloneConstr = func(c *Constr) *Constr {
		if c == nil {
			return nil
		}
		if nc, ok := constrMap[c]; ok {
			return nc
		}
		nc := &Constr{Kind: c.Kind, Val: c.Val}
		constrMap[c] = nc
		if c.Var != nil {
			nc.Var = varMap[c.Var]
		}
		nc.L = cloneConstr(c.L)
		nc.R = cloneConstr(c.R)
		if c.Slots != nil {
			nc.Slots = make([]*ClauseSlot, len(c.Slots))
			for i, sl := range c.Slots {
				nc.Slots[i] = cloneSlot(sl)
			}
		}
		if c.Lits != nil {
			nc.Lits = make([]ConflictLit, len(c.Lits))
			for i, lit := range c.Lits {
				nc.Lits[i] = ConflictLit{Var: varMap[lit.Var], Val: lit.Val}
			}
		}
		return nc
	}
	cloneSlot = func(sl *ClauseSlot) *ClauseSlot {
		if sl == nil {
			return nil
		}
		if ns, ok := slotMap[sl]; ok {
			return ns
		}
		ns := &ClauseSlot{}
		slotMap[sl] = ns
		ns.Current = cloneConstr(sl.Current)
		ns.Original = cloneConstr(sl.Original)
		return ns
	}

	root := cloneConstr(s.Root)
	for i, v := range s.Vars {
		nv := vars[i]
		nv.Clauses = make([]*ClauseSlot, len(v.Clauses))
		for j, sl := range v.Clauses {
			nv.Clauses[j] = cloneSlot(sl)
		}
	}

	heap := NewVarHeap(s.opts.Order, s.opts.PreferFailing)
	for i, v := range s.Vars {
		if v.HeapPos != NotInHeap {
			heap.Push(vars[i])
		}
	}

	var objVar *Var
	if ov := s.Obj.Var(); ov != nil {
		objVar = varMap[ov]
	}

	clone := &Solver{
		opts:       s.opts,
		Vars:       vars,
		Root:       root,
		Trail:      NewTrail(s.opts.BindTrailSize),
		Patches:    NewPatchTrail(s.opts.PatchTrailSize),
		Arena:      NewArena(int64(s.opts.ArenaSize)),
		ConflArena: NewArena(int64(s.opts.ConflArenaSize)),
		Heap:       heap,
		Obj:        s.Obj.shareWith(objVar),
		Stat:       NewStats(),
		luby:       &Luby{counter: s.luby.counter, threshold: s.luby.threshold},
		failCount:  s.failCount,
		workerID:   workerID,
		minLevel:   forkLevel,
		rnd:        rand.New(rand.NewSource(int64(workerID))),
		onSolution: s.onSolution,
		onStats:    s.onStats,
		shared:     s.shared,
		ctx:        s.ctx,
	}
	// Replay the bind history onto the clone's own trail in order, so
	// BindHead/Prev chains are reconstructed correctly for conflict
	// analysis (Trail.Bind recomputes Prev from the variable's current
	// BindHead, exactly as the first run of the binds did).
	// Trail.Bind snapshots PrevValue/PrevLevel from the variable's state
	// right before the call, so each trailed variable must first be put
	// back to its pre-trail state, taken from its earliest bind record.
	reset := make(map[*Var]bool)
	for i := 0; i < s.Trail.Depth(); i++ {
		b := s.Trail.At(i)
		if reset[b.Var] {
			continue
		}
		reset[b.Var] = true
		nv := varMap[b.Var]
		nv.Value = b.PrevValue
		nv.Level = b.PrevLevel
	}
	for i := 0; i < s.Trail.Depth(); i++ {
		b := s.Trail.At(i)
		nv := varMap[b.Var]
		var clause *ClauseSlot
		if b.Clause != nil {
			clause = slotMap[b.Clause]
		}
		val, level := s.afterBind(i)
		clone.Trail.SetLevel(level)
		clone.Trail.Bind(nv, val, clause)
	}
	clone.Trail.SetLevel(s.Trail.Level())
	return clone
}

// afterBind returns the value and level the bind at trail index i
// produced, by looking at the next bind of the same variable (or, if i
// is the most recent bind of that variable, its current live state).
func (s *Solver) afterBind(i int) (Value, int) {
	b := s.Trail.At(i)
	for j := i + 1; j < s.Trail.Depth(); j++ {
		if nb := s.Trail.At(j); nb.Var == b.Var {
			return nb.PrevValue, nb.PrevLevel
		}
	}
	return b.Var.Value, b.Var.Level
}

// Wait blocks until every worker goroutine this solver (or one of its
// descendants) spawned has returned.
func (s *Solver) Wait() {
	if s.shared != nil {
		s.shared.wg.Wait()
	}
}
