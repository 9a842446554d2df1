// Package prices joins the two boundary inputs of the pipeline — a price time
// series per field and the security reference master — into one read-only
// Panel, and resolves normalized per-security reference attributes from it.
package prices

import (
	"fmt"

	"tradewind/internal/domain"
	"tradewind/internal/frame"
)

// Well-known price fields.
const (
	FieldOpen  = "Open"
	FieldClose = "Close"
)

// Panel is the combined price/reference input to one translation. It is
// immutable after construction: stages read from it concurrently without
// locking.
type Panel struct {
	conIDs []int64
	fields map[string]*frame.Frame
	refs   map[int64]Ref
}

// NewPanel joins price frames with the security master. Every security column
// appearing in any field must have a reference entry; a column without one is
// a configuration fault because it cannot be sized downstream.
func NewPanel(securities []domain.Security, fields map[string]*frame.Frame) (*Panel, error) {
	refs, err := ResolveRefs(securities)
	if err != nil {
		return nil, err
	}

	var conIDs []int64
	seen := make(map[int64]struct{})
	for name, f := range fields {
		for _, id := range f.ConIDs() {
			if _, ok := refs[id]; !ok {
				return nil, &ReferenceError{ConID: id, Reason: fmt.Sprintf("field %q references security with no reference data", name)}
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				conIDs = append(conIDs, id)
			}
		}
	}
	// Preserve the column order of the first field that mentions each
	// security; when only reference data exists the master order is used.
	if len(conIDs) == 0 {
		for _, sec := range securities {
			conIDs = append(conIDs, sec.ConID)
		}
	}

	return &Panel{conIDs: conIDs, fields: fields, refs: refs}, nil
}

// ConIDs returns the security column order all downstream row ordering
// derives from.
func (p *Panel) ConIDs() []int64 { return p.conIDs }

// Field returns the named price frame.
func (p *Panel) Field(name string) (*frame.Frame, bool) {
	f, ok := p.fields[name]
	return f, ok
}

// Ref returns the normalized reference attributes for a security.
func (p *Panel) Ref(conID int64) (Ref, error) {
	r, ok := p.refs[conID]
	if !ok {
		return Ref{}, &ReferenceError{ConID: conID, Reason: "no reference data"}
	}
	return r, nil
}

// LatestPrices returns the sizing price per security: the most recent
// non-NaN Close, falling back to Open when no Close field is present.
func (p *Panel) LatestPrices() frame.Series {
	if f, ok := p.fields[FieldClose]; ok {
		return f.LastValid()
	}
	if f, ok := p.fields[FieldOpen]; ok {
		return f.LastValid()
	}
	return frame.NewSeries(nil, nil)
}
