package csp

import "unsafe"

// allocAlign is the allocation alignment of the bump arenas.
const allocAlign = 8

// Byte footprints used to account node allocations against an arena's
// budget. Go's garbage collector owns the memory itself; the arena
// tracks sizes so that the configured -m/-M limits and the peak-memory
// statistic keep their meaning.
var (
	constrSize = int64(unsafe.Sizeof(Constr{}))
	litSize    = int64(unsafe.Sizeof(ConflictLit{}))
	slotSize   = int64(unsafe.Sizeof(ClauseSlot{}))
)

// Arena is a bump allocator reduced to its accounting: a strict stack
// of byte offsets. Allocation advances the pointer to an aligned
// boundary; freeing is only possible by rewinding to an earlier marker.
// The search driver marks the arena on step entry and rewinds on exit,
// so nodes produced by normalisation die with the step that created
// them.
type Arena struct {
	size int64
	ptr  int64
	peak int64
}

// NewArena returns an empty arena with the given byte budget.
func NewArena(size int64) *Arena {
	return &Arena{size: size}
}

// Mark returns a marker for the arena's current position.
func (a *Arena) Mark() int64 {
	return a.ptr
}

// Alloc accounts for an allocation of n bytes. Running out of space is
// fatal.
func (a *Arena) Alloc(n int64) {
	n = (n + allocAlign - 1) &^ (allocAlign - 1)
	if a.ptr+n > a.size {
		panic(FatalError{Msg: "out of memory"})
	}
	a.ptr += n
	if a.ptr > a.peak {
		a.peak = a.ptr
	}
}

// Rewind restores the arena to an earlier marker. Rewinding forward or
// to a misaligned offset is a fatal invalid-dealloc error.
func (a *Arena) Rewind(marker int64) {
	if marker > a.ptr || marker&(allocAlign-1) != 0 {
		panic(FatalError{Msg: "wrong deallocation"})
	}
	a.ptr = marker
}

// Peak returns the highest offset observed since creation.
func (a *Arena) Peak() int64 {
	return a.peak
}
