package csp

import (
	"math"

	"github.com/rhartert/yagh"
)

// VarHeap is the variable ordering priority queue, built on
// yagh.IntMap[float64] keyed by the selected comparator mode plus the
// optional priority tiebreak.
//
// yagh.IntMap is a min-heap, so the key assigned to a variable is the
// primary comparator metric (smaller is preferred) with the tiebreak
// priority folded into the fractional part: two variables can only tie
// when their primary metrics are integers that compare equal, so a
// fractional nudge strictly inside (-0.5, 0.5) never reorders variables
// whose primary metrics actually differ.
type VarHeap struct {
	order         *yagh.IntMap[float64]
	vars          []*Var // indexed by Var.ID, grown as variables are pushed
	mode          OrderMode
	preferFailing bool
	size          int
}

// NewVarHeap returns an empty heap using the given comparator mode.
func NewVarHeap(mode OrderMode, preferFailing bool) *VarHeap {
	return &VarHeap{
		order:         yagh.New[float64](0),
		mode:          mode,
		preferFailing: preferFailing,
	}
}

func (h *VarHeap) key(v *Var) float64 {
	var primary float64
	switch h.mode {
	case OrderSmallestDomain:
		primary = float64(v.Value.Hi) - float64(v.Value.Lo)
	case OrderLargestDomain:
		primary = -(float64(v.Value.Hi) - float64(v.Value.Lo))
	case OrderSmallestValue:
		primary = float64(v.Value.Lo)
	case OrderLargestValue:
		primary = -float64(v.Value.Hi)
	case OrderNone:
		primary = 0
	}
	if !h.preferFailing {
		return primary
	}
	// Higher priority must be preferred, i.e. map to a smaller key; the
	// nudge is bounded in (-0.5, 0.5) for every Priority, positive or
	// negative, however far it drifts over a long search.
	nudge := -math.Atan(float64(v.Priority)) / math.Pi
	return primary + nudge
}

// Push adds v to the set of candidates, or does nothing if v is already
// in the heap.
func (h *VarHeap) Push(v *Var) {
	if v.HeapPos != NotInHeap {
		return
	}
	for len(h.vars) <= v.ID {
		h.vars = append(h.vars, nil)
		h.order.GrowBy(1)
	}
	h.vars[v.ID] = v
	h.order.Put(v.ID, h.key(v))
	v.HeapPos = v.ID
	h.size++
}

// Pop removes and returns the most preferred variable, or nil if the
// heap is empty.
func (h *VarHeap) Pop() *Var {
	item, ok := h.order.Pop()
	if !ok {
		return nil
	}
	v := h.vars[item.Elem]
	v.HeapPos = NotInHeap
	h.size--
	return v
}

// Update resifts v after its domain or priority changed; the resift goes
// both up and down since the change direction is arbitrary. It is a
// no-op if v is not currently in the heap.
func (h *VarHeap) Update(v *Var) {
	if v.HeapPos == NotInHeap {
		return
	}
	h.order.Put(v.ID, h.key(v))
}

// Contains reports whether v is currently in the heap.
func (h *VarHeap) Contains(v *Var) bool {
	return v.HeapPos != NotInHeap && h.order.Contains(v.ID)
}

// Len reports how many variables are currently in the heap.
func (h *VarHeap) Len() int {
	return h.size
}
