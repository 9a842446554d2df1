package orders

import "fmt"

// ToChildOrders derives dependent closing rows from a batch of parent orders:
// one child per parent with Action inverted, sizing and execution fields
// copied, and ParentId stamped with the parent's OrderId. Child rows carry no
// OrderId of their own; their real identifier exists only once the parent has
// been submitted.
//
// The input must be a pure parent batch. Feeding rows that already carry a
// ParentId would chain children onto children with ids that never resolve, so
// it fails with a ContractError instead.
func ToChildOrders(parents *Batch) (*Batch, error) {
	children := NewBatch()
	for i, row := range parents.Rows() {
		if !row.IsParent() {
			return nil, &ContractError{Reason: fmt.Sprintf("row %d: ToChildOrders requires a pure parent batch", i)}
		}
		child := row
		parentID := *row.OrderID
		child.OrderID = nil
		child.ParentID = &parentID
		child.Action = row.Action.Invert()
		if err := children.AppendChild(child); err != nil {
			return nil, err
		}
	}
	return children, nil
}
