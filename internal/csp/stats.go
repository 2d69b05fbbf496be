package csp

import "math"

// Stats holds a worker's search counters.
// Calls/Cuts/Propagations/Restarts/Conflicts and CutDepthSum are running
// totals for the lifetime of the worker; DepthMin/DepthMax reset after
// every periodic report.
type Stats struct {
	Calls        uint64
	Cuts         uint64
	Propagations uint64
	Restarts     uint64
	Conflicts    uint64

	DepthMin int
	DepthMax int

	// CutDepthSum accumulates the level at which each cut occurred,
	// backing the AVG DEPTH report.
	CutDepthSum uint64

	AllocPeak int64
}

// NewStats returns a zeroed Stats with DepthMin raised high enough that
// the first recorded depth always lowers it.
func NewStats() *Stats {
	return &Stats{DepthMin: math.MaxInt}
}

// RecordCut records a backtrack at the given level: it bumps Cuts,
// folds level into the running depth sum, and updates the depth
// extremes.
func (s *Stats) RecordCut(level int) {
	s.Cuts++
	s.CutDepthSum += uint64(level)
	if level < s.DepthMin {
		s.DepthMin = level
	}
	if level > s.DepthMax {
		s.DepthMax = level
	}
}

// AvgCutDepth returns cut_depth/cuts, or 0 before any cut has happened.
func (s *Stats) AvgCutDepth() float64 {
	if s.Cuts == 0 {
		return 0
	}
	return float64(s.CutDepthSum) / float64(s.Cuts)
}

// ResetPeriodic clears the depth extremes after a periodic print,
// leaving the running totals untouched.
func (s *Stats) ResetPeriodic() {
	s.DepthMin = math.MaxInt
	s.DepthMax = 0
}

// Snapshot is an immutable copy of Stats suitable for handing to
// internal/report without exposing the live counters to a formatter
// running in a different goroutine.
type Snapshot struct {
	Calls        uint64
	Cuts         uint64
	Propagations uint64
	Restarts     uint64
	Conflicts    uint64
	DepthMin     int
	DepthMax     int
	AvgCutDepth  float64
	AllocPeak    int64
}

// Snapshot takes a point-in-time copy of s.
func (s *Stats) Snapshot() Snapshot {
	depthMin := s.DepthMin
	if depthMin == math.MaxInt {
		depthMin = 0
	}
	return Snapshot{
		Calls:        s.Calls,
		Cuts:         s.Cuts,
		Propagations: s.Propagations,
		Restarts:     s.Restarts,
		Conflicts:    s.Conflicts,
		DepthMin:     depthMin,
		DepthMax:     s.DepthMax,
		AvgCutDepth:  s.AvgCutDepth(),
		AllocPeak:    s.AllocPeak,
	}
}
