// Package broker submits translated order batches to an execution venue.
package broker

import (
	"context"

	"tradewind/internal/domain"
	"tradewind/internal/orders"
)

// Submission is the venue-side record of one submitted order row.
type Submission struct {
	// BrokerOrderID is the identifier assigned by the venue.
	BrokerOrderID string

	// BrokerParentID is the venue identifier of the parent this row is
	// attached to, empty for parent and standalone rows.
	BrokerParentID string

	// Row is the order row as submitted.
	Row domain.Order
}

// Submitter sends a translated batch to an execution venue. Rows are
// submitted in batch order, so parents are placed before the children that
// reference them.
type Submitter interface {
	// Name returns the venue identifier (e.g. "alpaca", "simulator").
	Name() string

	// SubmitBatch submits every row of the batch and returns one
	// Submission per row, in row order.
	SubmitBatch(ctx context.Context, b *orders.Batch) ([]Submission, error)
}
