// Package frame provides the small tabular types the translation pipeline
// works in: a date-indexed Frame with one float64 column per security, and a
// per-security Series. Missing values are NaN throughout.
package frame

import (
	"fmt"
	"math"
	"time"
)

// Frame is a date-indexed table with one float64 column per security
// (contract id). Column order is fixed at construction and preserved by every
// operation; all pipeline row ordering derives from it.
type Frame struct {
	dates  []time.Time
	conIDs []int64
	colIdx map[int64]int
	cols   [][]float64 // one slice per column, len(dates) each
}

// New creates a Frame with the given date index and security columns, every
// cell initialised to NaN.
func New(dates []time.Time, conIDs []int64) *Frame {
	f := &Frame{
		dates:  append([]time.Time(nil), dates...),
		conIDs: append([]int64(nil), conIDs...),
		colIdx: make(map[int64]int, len(conIDs)),
		cols:   make([][]float64, len(conIDs)),
	}
	for i, id := range conIDs {
		f.colIdx[id] = i
		col := make([]float64, len(dates))
		for j := range col {
			col[j] = math.NaN()
		}
		f.cols[i] = col
	}
	return f
}

// Dates returns the date index in row order.
func (f *Frame) Dates() []time.Time { return f.dates }

// ConIDs returns the security columns in column order.
func (f *Frame) ConIDs() []int64 { return f.conIDs }

// NumRows returns the number of dates.
func (f *Frame) NumRows() int { return len(f.dates) }

// SetColumn replaces the column for conID. The values slice must match the
// date index length.
func (f *Frame) SetColumn(conID int64, values []float64) error {
	i, ok := f.colIdx[conID]
	if !ok {
		return fmt.Errorf("frame: unknown column %d", conID)
	}
	if len(values) != len(f.dates) {
		return fmt.Errorf("frame: column %d has %d values, index has %d rows", conID, len(values), len(f.dates))
	}
	copy(f.cols[i], values)
	return nil
}

// Set assigns a single cell.
func (f *Frame) Set(conID int64, row int, v float64) error {
	i, ok := f.colIdx[conID]
	if !ok {
		return fmt.Errorf("frame: unknown column %d", conID)
	}
	if row < 0 || row >= len(f.dates) {
		return fmt.Errorf("frame: row %d out of range", row)
	}
	f.cols[i][row] = v
	return nil
}

// At returns the cell for conID at row, or NaN when the column is absent.
func (f *Frame) At(conID int64, row int) float64 {
	i, ok := f.colIdx[conID]
	if !ok || row < 0 || row >= len(f.dates) {
		return math.NaN()
	}
	return f.cols[i][row]
}

// Row returns one date row as a Series in column order.
func (f *Frame) Row(row int) Series {
	vals := make([]float64, len(f.conIDs))
	for i := range f.conIDs {
		if row < 0 || row >= len(f.dates) {
			vals[i] = math.NaN()
			continue
		}
		vals[i] = f.cols[i][row]
	}
	return NewSeries(f.conIDs, vals)
}

// LastRow returns the most recent date row. Only this row drives live order
// generation; earlier rows exist for lagged computations.
func (f *Frame) LastRow() Series {
	return f.Row(len(f.dates) - 1)
}

// Shift returns a copy of the Frame with every column lagged by n rows.
// Vacated leading rows are NaN. Negative n is not supported.
func (f *Frame) Shift(n int) *Frame {
	out := New(f.dates, f.conIDs)
	if n < 0 {
		return out
	}
	for i := range f.cols {
		for j := n; j < len(f.dates); j++ {
			out.cols[i][j] = f.cols[i][j-n]
		}
	}
	return out
}

// LastValid returns, per security, the most recent non-NaN value in each
// column.
func (f *Frame) LastValid() Series {
	vals := make([]float64, len(f.conIDs))
	for i := range f.conIDs {
		vals[i] = math.NaN()
		for j := len(f.dates) - 1; j >= 0; j-- {
			if !math.IsNaN(f.cols[i][j]) {
				vals[i] = f.cols[i][j]
				break
			}
		}
	}
	return NewSeries(f.conIDs, vals)
}
