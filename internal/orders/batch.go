// Package orders holds the order batch produced by the translation engine,
// the child-order linker, and the series-to-batch alignment helper available
// to strategy customization hooks.
package orders

import (
	"fmt"

	"tradewind/internal/domain"
)

// ContractError reports misuse of the batch contract by a customization hook
// or linker caller: mutated engine-assigned identifiers, malformed
// parent/child linkage, or linking a non-parent batch. It is fatal; emitting
// silently mislinked orders is worse than aborting.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string { return "order batch contract: " + e.Reason }

// Batch is an ordered collection of order rows. Top-level identifiers come
// from an explicit monotonic counter rather than row position, so
// concatenating child rows or dropping rows in a hook never disturbs an
// already-assigned id.
type Batch struct {
	rows   []domain.Order
	nextID int64
}

// NewBatch creates an empty batch whose parent id counter starts at 0.
func NewBatch() *Batch { return &Batch{} }

// AppendParent appends a top-level order row, assigning it the next
// sequential OrderID. Any identifier already on the row is overwritten.
func (b *Batch) AppendParent(row domain.Order) int64 {
	id := b.nextID
	b.nextID++
	row.OrderID = &id
	row.ParentID = nil
	b.rows = append(b.rows, row)
	return id
}

// AppendChild appends a dependent order row. The row must carry a ParentID
// and no OrderID.
func (b *Batch) AppendChild(row domain.Order) error {
	if !row.IsChild() {
		return &ContractError{Reason: "AppendChild requires a row with ParentID and no OrderID"}
	}
	b.rows = append(b.rows, row)
	return nil
}

// Concat returns a new batch holding the receiver's rows followed by other's
// rows, identifiers untouched. The receiver's id counter carries over.
func (b *Batch) Concat(other *Batch) *Batch {
	out := &Batch{nextID: b.nextID}
	out.rows = append(out.rows, b.rows...)
	out.rows = append(out.rows, other.rows...)
	return out
}

// Rows returns the underlying row slice. Customization hooks mutate rows in
// place through it to fill execution fields; engine-assigned identifier
// fields must be left alone (enforced by post-hook validation).
func (b *Batch) Rows() []domain.Order { return b.rows }

// Len returns the number of rows.
func (b *Batch) Len() int { return len(b.rows) }

// Clone returns a deep copy of the batch, including identifier pointers.
func (b *Batch) Clone() *Batch {
	out := &Batch{nextID: b.nextID, rows: make([]domain.Order, len(b.rows))}
	for i, row := range b.rows {
		if row.OrderID != nil {
			id := *row.OrderID
			row.OrderID = &id
		}
		if row.ParentID != nil {
			pid := *row.ParentID
			row.ParentID = &pid
		}
		out.rows[i] = row
	}
	return out
}

// Validate checks the batch's linkage invariants: every row is exactly one of
// parent or child, quantities are positive, parent ids strictly increase in
// row order, and every child references a parent present in the batch.
func Validate(b *Batch) error {
	parents := make(map[int64]struct{})
	lastParentID := int64(-1)
	for i, row := range b.rows {
		switch {
		case row.IsParent():
			if *row.OrderID <= lastParentID {
				return &ContractError{Reason: fmt.Sprintf("row %d: parent OrderId %d out of order", i, *row.OrderID)}
			}
			lastParentID = *row.OrderID
			parents[*row.OrderID] = struct{}{}
		case row.IsChild():
			// Checked against the parent set below; children may precede
			// their parent only in malformed batches.
		default:
			return &ContractError{Reason: fmt.Sprintf("row %d: must carry exactly one of OrderId and ParentId", i)}
		}
		if row.TotalQuantity <= 0 {
			return &ContractError{Reason: fmt.Sprintf("row %d: non-positive TotalQuantity %d", i, row.TotalQuantity)}
		}
	}
	for i, row := range b.rows {
		if row.IsChild() {
			if _, ok := parents[*row.ParentID]; !ok {
				return &ContractError{Reason: fmt.Sprintf("row %d: ParentId %d references no parent in batch", i, *row.ParentID)}
			}
		}
	}
	return nil
}
