package csp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLubySequence(t *testing.T) {
	want := []uint64{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}

	l := NewLuby()
	got := make([]uint64, 0, len(want))
	for range want {
		got = append(got, l.Threshold())
		l.Advance()
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Luby sequence mismatch (-want +got):\n%s", diff)
	}
}
