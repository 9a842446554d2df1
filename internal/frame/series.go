package frame

import "math"

// Series is an ordered per-security float64 vector. Entries keep the order
// they were constructed with; lookups by contract id use the first matching
// entry. A missing entry reads as NaN.
type Series struct {
	conIDs []int64
	vals   []float64
	idx    map[int64]int
}

// NewSeries creates a Series from parallel conID/value slices. Panics if the
// slices differ in length, which is always a programming error.
func NewSeries(conIDs []int64, vals []float64) Series {
	if len(conIDs) != len(vals) {
		panic("frame: series conIDs and values differ in length")
	}
	s := Series{
		conIDs: append([]int64(nil), conIDs...),
		vals:   append([]float64(nil), vals...),
		idx:    make(map[int64]int, len(conIDs)),
	}
	for i, id := range s.conIDs {
		if _, seen := s.idx[id]; !seen {
			s.idx[id] = i
		}
	}
	return s
}

// Len returns the number of entries.
func (s Series) Len() int { return len(s.conIDs) }

// ConIDs returns the contract ids in entry order.
func (s Series) ConIDs() []int64 { return s.conIDs }

// Values returns the values in entry order.
func (s Series) Values() []float64 { return s.vals }

// Value returns the value for conID, or NaN when absent.
func (s Series) Value(conID int64) float64 {
	i, ok := s.idx[conID]
	if !ok {
		return math.NaN()
	}
	return s.vals[i]
}

// Has reports whether conID is present with a non-NaN value.
func (s Series) Has(conID int64) bool {
	i, ok := s.idx[conID]
	return ok && !math.IsNaN(s.vals[i])
}
