package csp

import "testing"

func TestStatsRecordCut(t *testing.T) {
	s := NewStats()
	s.RecordCut(3)
	s.RecordCut(5)

	if s.Cuts != 2 {
		t.Errorf("Cuts: got %d, want 2", s.Cuts)
	}
	if s.DepthMin != 3 || s.DepthMax != 5 {
		t.Errorf("depth extremes: got %d/%d, want 3/5", s.DepthMin, s.DepthMax)
	}
	if got := s.AvgCutDepth(); got != 4 {
		t.Errorf("AvgCutDepth: got %f, want 4", got)
	}
}

func TestStatsResetPeriodic(t *testing.T) {
	s := NewStats()
	s.Calls = 10
	s.RecordCut(3)

	s.ResetPeriodic()

	if s.Calls != 10 || s.Cuts != 1 {
		t.Errorf("running totals must survive a periodic reset")
	}
	if s.DepthMax != 0 {
		t.Errorf("DepthMax should reset to 0, got %d", s.DepthMax)
	}
	s.RecordCut(7)
	if s.DepthMin != 7 {
		t.Errorf("DepthMin should reset high enough for the next cut, got %d", s.DepthMin)
	}
}

func TestStatsSnapshotBeforeAnyCut(t *testing.T) {
	s := NewStats()
	snap := s.Snapshot()
	if snap.DepthMin != 0 {
		t.Errorf("snapshot DepthMin before any cut: got %d, want 0", snap.DepthMin)
	}
	if snap.AvgCutDepth != 0 {
		t.Errorf("snapshot AvgCutDepth before any cut: got %f, want 0", snap.AvgCutDepth)
	}
}
