package csp

// Luby generates the restart-threshold sequence
// 1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,… using Knuth's doubling recurrence.
type Luby struct {
	counter   uint64
	threshold uint64
}

// NewLuby returns a generator positioned at the start of the sequence.
func NewLuby() *Luby {
	return &Luby{counter: 1, threshold: 1}
}

// Threshold returns the sequence's current value without advancing it.
func (l *Luby) Threshold() uint64 {
	return l.threshold
}

// Advance moves the generator to the next value in the sequence.
func (l *Luby) Advance() {
	if l.counter&(-l.counter) == l.threshold {
		l.counter++
		l.threshold = 1
	} else {
		l.threshold <<= 1
	}
}
