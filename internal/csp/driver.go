package csp

import "sync/atomic"

// Step is one level of the search stack: the variable chosen at this
// level, the interval it had when the step was activated, an iteration
// counter, and the trail/patch/arena markers needed to undo everything
// the step did when it is left.
type Step struct {
	Active bool
	Var    *Var
	Bounds Value
	Iter   uint64
	Seed   uint64

	allocMarker int64
	patchDepth  int
	bindDepth   int
}

func (s *Solver) isRestartable() bool {
	return s.opts.Objective == ObjAny && s.opts.RestartFrequency > 0
}

func (s *Solver) isSolutionRestartable() bool {
	return s.opts.Objective != ObjAll
}

func (s *Solver) foundAny() bool {
	return s.opts.Objective == ObjAny && s.shared.Solutions() > 0
}

// stepActivate begins a fresh round of value iteration for v at this
// level.
func (s *Solver) stepActivate(step *Step, v *Var) {
	step.Active = true
	step.Var = v
	step.Bounds = v.Value
	step.Iter = 0
	step.Seed = 0
	if s.isRestartable() {
		step.Seed = uint64(s.rnd.Int63())
	}
}

// stepDeactivate returns the step's variable to the heap once every
// value has been tried.
func (s *Solver) stepDeactivate(step *Step) {
	s.Heap.Push(step.Var)
	step.Active = false
}

// stepEnter binds the step's variable to val for this iteration, after
// marking the trails and arena so stepLeave can undo exactly this.
func (s *Solver) stepEnter(step *Step, val int32) {
	step.allocMarker = s.Arena.Mark()
	step.patchDepth = s.Patches.Depth()
	step.bindDepth = s.Trail.Depth()
	if !step.Var.Bound() {
		s.bindVar(step.Var, Const(val), nil)
	}
}

// stepLeave undoes everything the current iteration of step did.
func (s *Solver) stepLeave(step *Step) {
	s.Trail.Unbind(step.bindDepth)
	s.Patches.Unpatch(step.patchDepth)
	s.Arena.Rewind(step.allocMarker)
}

// stepCheck reports whether the step still has unexplored values.
func (s *Solver) stepCheck(step *Step) bool {
	i := step.Iter
	span := uint64(uint32(step.Bounds.Hi) - uint32(step.Bounds.Lo))
	return i <= span
}

// stepVal returns the value to try this iteration, ricocheting inward
// from both ends of the interval: iteration i picks lo+i/2 or hi-i/2
// depending on parity XOR the step's seed.
func (s *Solver) stepVal(step *Step) int32 {
	i := step.Iter
	seed := step.Seed
	lo, hi := step.Bounds.Lo, step.Bounds.Hi
	if (i^seed)&1 != 0 {
		return hi - int32(i>>1)
	}
	return lo + int32(i>>1)
}

// unwind leaves every active step from level down to stop, inclusive.
func (s *Solver) unwind(steps []Step, level, stop int) {
	for i := level; i >= stop; i-- {
		if !steps[i].Active {
			continue
		}
		s.stepLeave(&steps[i])
		s.stepDeactivate(&steps[i])
	}
}

// conflictBacktrack unwinds the search stack until the learnt conflict
// from the last failure can actually be resolved, chaining through
// further conflicts produced along the way.
func (s *Solver) conflictBacktrack(steps []Step, level int) int {
	ok := false
	if s.ConflictLevel <= level {
		s.unwind(steps, level, level)
	}
	for !ok && s.ConflictLevel <= level {
		s.unwind(steps, level-1, s.ConflictLevel)
		level = s.ConflictLevel
		// Backjumping below level 0 lands on the level sentinel: binds
		// made while resolving a level-0 conflict sit above every real
		// level, which is what conflict analysis expects of them.
		if level == 0 {
			s.Trail.SetLevel(levelMax)
		} else {
			s.Trail.SetLevel(level - 1)
		}
		_, ok = s.propagateClauses(s.ConflictVar.Clauses)
	}
	return level
}

// checkAssignment propagates the freshly bound variable's clause list,
// and the objective pseudo-variable's clause list if one is being
// tracked, recording a cut on failure.
func (s *Solver) checkAssignment(v *Var, level int) bool {
	_, ok := s.propagateClauses(v.Clauses)
	failed := !ok
	if !failed {
		if ov := s.Obj.Var(); ov != nil {
			_, ok2 := s.propagateClauses(ov.Clauses)
			failed = !ok2
		}
	}
	if failed {
		s.Stat.RecordCut(level)
	}
	return failed
}

// checkRestart reports whether the search should restart now, advancing
// the Luby-sequence fail threshold whenever it does.
func (s *Solver) checkRestart() bool {
	if !s.isRestartable() {
		return false
	}
	s.failCount++
	if s.failCount > s.luby.Threshold()*s.opts.RestartFrequency {
		s.failCount = 0
		s.luby.Advance()
		s.Stat.Restarts++
		return true
	}
	return false
}

// updateSolution verifies the root constraint and, if it is better than
// anything seen so far, publishes it under the shared mutex and reports
// it through onSolution.
func (s *Solver) updateSolution() bool {
	if !Eval(s.Root).IsTrue() {
		return false
	}
	updated := false
	s.shared.mu.Lock()
	if !s.foundAny() && s.Obj.Better() {
		s.Obj.UpdateBest()
		// Report while still holding the mutex, so a concurrent worker
		// cannot interleave its own solution line or observe the counter
		// before the line is out.
		if s.onSolution != nil {
			s.onSolution(s)
		}
		atomic.AddUint64(&s.shared.solutions, 1)
		updated = true
	}
	s.shared.mu.Unlock()
	return updated
}

// updateStats bumps the per-call counters and fires the periodic stats
// report at the configured frequency.
func (s *Solver) updateStats(level int) {
	if level < s.Stat.DepthMin {
		s.Stat.DepthMin = level
	}
	if level > s.Stat.DepthMax {
		s.Stat.DepthMax = level
	}
	s.Stat.Calls++
	if peak := s.Arena.Peak() + s.ConflArena.Peak(); peak > s.Stat.AllocPeak {
		s.Stat.AllocPeak = peak
	}
	if s.opts.StatsFrequency != 0 && s.Stat.Calls%s.opts.StatsFrequency == 0 {
		if s.onStats != nil {
			s.onStats(s)
		}
		s.Stat.ResetPeriodic()
	}
}

// timedOut reports whether the shared deadline has fired. The context
// is polled once per main-loop iteration; cancellation is cooperative
// and never interrupts a propagation in progress.
func (s *Solver) timedOut() bool {
	if s.shared.TimedOut() {
		return true
	}
	if s.ctx == nil {
		return false
	}
	select {
	case <-s.ctx.Done():
		s.shared.timedOut.Store(true)
		return true
	default:
		return false
	}
}

// Solve runs the search to completion: branching, propagating,
// detecting and recovering from conflicts, restarting, and reporting
// solutions, as one worker's whole search.
// It returns once the deadline expires, the search space is exhausted,
// or (for ObjAny) any worker has already reported a solution. Callers
// that spawned child goroutines via maybeSpawn should call Wait
// afterwards if they need every descendant to have finished too.
func (s *Solver) Solve() {
	size := len(s.Vars)
	steps := make([]Step, size)
	level := s.minLevel

	for {
		if s.timedOut() {
			break
		}
		if level < s.minLevel {
			break
		}
		if s.foundAny() {
			break
		}

		if level == size {
			updated := s.updateSolution()
			if updated && s.isSolutionRestartable() {
				level--
				s.unwind(steps, level, s.minLevel)
				level = s.minLevel
				continue
			}
			if level != 0 {
				level--
				continue
			}
			break
		}

		if !steps[level].Active {
			// A freshly forked worker resumes exactly where its parent
			// was: branching on the split variable at the fork level.
			v := s.startVar
			if v != nil {
				s.startVar = nil
			} else {
				v = s.Heap.Pop()
				if v == nil {
					break
				}
				s.maybeSpawn(v, level)
			}
			s.stepActivate(&steps[level], v)
		} else {
			s.stepLeave(&steps[level])
			steps[level].Iter++
		}

		if !s.stepCheck(&steps[level]) {
			s.stepDeactivate(&steps[level])
			if level != 0 {
				level--
				continue
			}
			break
		}

		s.Trail.SetLevel(level)
		s.stepEnter(&steps[level], s.stepVal(&steps[level]))

		s.Obj.UpdateVal()
		s.updateStats(level)

		failed := s.checkAssignment(steps[level].Var, level)
		if !failed {
			steps[level].Var.Priority--
			level++
			continue
		}

		steps[level].Var.Priority++
		if s.checkRestart() {
			s.unwind(steps, level, s.minLevel)
			level = s.minLevel
			continue
		}
		if s.opts.CreateConflicts {
			level = s.conflictBacktrack(steps, level)
			continue
		}
	}

	s.shared.mu.Lock()
	s.shared.workers--
	s.shared.mu.Unlock()

	if s.Stat.Calls > 0 && s.onStats != nil {
		s.onStats(s)
	}
}
