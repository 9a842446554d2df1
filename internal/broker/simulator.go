package broker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tradewind/internal/orders"
)

// Compile-time interface check.
var _ Submitter = (*SimulatorSubmitter)(nil)

// SimulatorSubmitter implements the Submitter interface for paper trading.
// It assigns venue identifiers in memory without making external API calls,
// resolving each child's in-batch parent reference to the venue identifier
// assigned to that parent.
type SimulatorSubmitter struct {
	submissions []Submission
}

// NewSimulatorSubmitter creates an empty SimulatorSubmitter.
func NewSimulatorSubmitter() *SimulatorSubmitter {
	return &SimulatorSubmitter{}
}

// Name returns "simulator".
func (s *SimulatorSubmitter) Name() string {
	return "simulator"
}

// SubmitBatch assigns a fresh venue identifier to every row and records the
// submissions. A child referencing a parent that is not in the batch is an
// error.
func (s *SimulatorSubmitter) SubmitBatch(_ context.Context, b *orders.Batch) ([]Submission, error) {
	if err := orders.Validate(b); err != nil {
		return nil, err
	}

	parentIDs := make(map[int64]string)
	out := make([]Submission, 0, b.Len())
	for _, row := range b.Rows() {
		sub := Submission{
			BrokerOrderID: uuid.NewString(),
			Row:           row,
		}
		if row.IsParent() {
			parentIDs[*row.OrderID] = sub.BrokerOrderID
		}
		if row.IsChild() {
			brokerParent, ok := parentIDs[*row.ParentID]
			if !ok {
				return nil, fmt.Errorf("child row references unknown parent %d", *row.ParentID)
			}
			sub.BrokerParentID = brokerParent
		}
		out = append(out, sub)
	}

	s.submissions = append(s.submissions, out...)
	return out, nil
}

// Submissions returns every submission recorded so far, in submit order.
func (s *SimulatorSubmitter) Submissions() []Submission {
	return s.submissions
}
