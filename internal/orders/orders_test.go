package orders

import (
	"errors"
	"math"
	"testing"

	"tradewind/internal/domain"
	"tradewind/internal/frame"
)

func stub(conID int64, action domain.Action, qty int64) domain.Order {
	return domain.Order{
		ConID:         conID,
		Account:       "U123",
		Action:        action,
		TotalQuantity: qty,
		OrderRef:      "long-short-10",
	}
}

func twoParentBatch() *Batch {
	b := NewBatch()
	b.AppendParent(stub(12345, domain.ActionSell, 1012))
	b.AppendParent(stub(23456, domain.ActionBuy, 1250))
	return b
}

func TestAppendParentAssignsSequentialIDs(t *testing.T) {
	b := twoParentBatch()

	rows := b.Rows()
	for i, row := range rows {
		if !row.IsParent() {
			t.Fatalf("row %d is not a parent", i)
		}
		if *row.OrderID != int64(i) {
			t.Errorf("row %d OrderId = %d, want %d", i, *row.OrderID, i)
		}
	}
}

func TestToChildOrders(t *testing.T) {
	parents := twoParentBatch()
	rows := parents.Rows()
	for i := range rows {
		rows[i].Exchange = "SMART"
		rows[i].OrderType = "MKT"
		rows[i].Tif = "Day"
	}

	children, err := ToChildOrders(parents)
	if err != nil {
		t.Fatalf("ToChildOrders: %v", err)
	}
	if children.Len() != parents.Len() {
		t.Fatalf("child batch has %d rows, want %d", children.Len(), parents.Len())
	}

	for i, child := range children.Rows() {
		parent := parents.Rows()[i]
		if !child.IsChild() {
			t.Fatalf("child row %d carries no ParentId or still has an OrderId", i)
		}
		if *child.ParentID != *parent.OrderID {
			t.Errorf("child row %d ParentId = %d, want %d", i, *child.ParentID, *parent.OrderID)
		}
		if child.Action != parent.Action.Invert() {
			t.Errorf("child row %d Action = %s, want inverted %s", i, child.Action, parent.Action.Invert())
		}
		if child.ConID != parent.ConID || child.TotalQuantity != parent.TotalQuantity {
			t.Errorf("child row %d did not preserve ConId/TotalQuantity", i)
		}
		// Execution fields are copied; callers typically override OrderType.
		if child.Exchange != "SMART" || child.Tif != "Day" {
			t.Errorf("child row %d did not inherit execution fields", i)
		}
	}
}

func TestToChildOrdersRejectsNonParentBatch(t *testing.T) {
	parents := twoParentBatch()
	children, err := ToChildOrders(parents)
	if err != nil {
		t.Fatalf("ToChildOrders: %v", err)
	}
	mixed := parents.Concat(children)

	_, err = ToChildOrders(mixed)
	var contractErr *ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("linking a mixed batch: want ContractError, got %v", err)
	}
}

func TestConcatPreservesExclusivity(t *testing.T) {
	parents := twoParentBatch()
	children, err := ToChildOrders(parents)
	if err != nil {
		t.Fatalf("ToChildOrders: %v", err)
	}
	full := parents.Concat(children)

	if full.Len() != 4 {
		t.Fatalf("concatenated batch has %d rows, want 4", full.Len())
	}
	for i, row := range full.Rows() {
		isParent := row.IsParent()
		isChild := row.IsChild()
		if isParent == isChild {
			t.Errorf("row %d: exactly one of OrderId/ParentId must be set", i)
		}
	}
	if err := Validate(full); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateCatchesDanglingParentID(t *testing.T) {
	b := twoParentBatch()
	missing := int64(99)
	if err := b.AppendChild(domain.Order{ConID: 12345, Account: "U123", Action: domain.ActionBuy, TotalQuantity: 1, ParentID: &missing}); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}

	err := Validate(b)
	var contractErr *ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("want ContractError for dangling ParentId, got %v", err)
	}
}

func TestValidateCatchesIdentifierlessRow(t *testing.T) {
	b := twoParentBatch()
	rows := b.Rows()
	rows[1].OrderID = nil // hook wiped an engine-assigned id

	err := Validate(b)
	var contractErr *ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("want ContractError for identifierless row, got %v", err)
	}
}

func TestReindexLikeOrders(t *testing.T) {
	priorCloses := frame.NewSeries([]int64{12345, 23456}, []float64{11.0, 11.25})

	parents := twoParentBatch()
	got := ReindexLikeOrders(priorCloses, parents)
	want := []float64{11.0, 11.25}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("aligned[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// After linking, the four rows repeat each security once; every
	// duplicate row receives the same value.
	children, err := ToChildOrders(parents)
	if err != nil {
		t.Fatalf("ToChildOrders: %v", err)
	}
	full := parents.Concat(children)
	got = ReindexLikeOrders(priorCloses, full)
	want = []float64{11.0, 11.25, 11.0, 11.25}
	if len(got) != len(want) {
		t.Fatalf("aligned length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("aligned[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReindexLikeOrdersMissingSecurity(t *testing.T) {
	src := frame.NewSeries([]int64{12345}, []float64{11.0})
	got := ReindexLikeOrders(src, twoParentBatch())
	if got[0] != 11.0 {
		t.Errorf("aligned[0] = %v, want 11.0", got[0])
	}
	if !math.IsNaN(got[1]) {
		t.Errorf("aligned[1] = %v, want NaN for missing security", got[1])
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := twoParentBatch()
	clone := b.Clone()

	rows := b.Rows()
	*rows[0].OrderID = 42
	rows[0].Action = domain.ActionBuy

	cloned := clone.Rows()[0]
	if *cloned.OrderID != 0 {
		t.Errorf("clone OrderId = %d, want 0 after mutating original", *cloned.OrderID)
	}
	if cloned.Action != domain.ActionSell {
		t.Errorf("clone Action = %s, want SELL after mutating original", cloned.Action)
	}
}
