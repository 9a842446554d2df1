package prices

import (
	"errors"
	"math"
	"testing"
	"time"

	"tradewind/internal/domain"
	"tradewind/internal/frame"
)

func testDates(n int) []time.Time {
	out := make([]time.Time, n)
	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = base.AddDate(0, 0, i)
	}
	return out
}

func usStock(conID int64, symbol string) domain.Security {
	return domain.Security{
		ConID:    conID,
		Symbol:   symbol,
		Timezone: "America/New_York",
		SecType:  "STK",
		Currency: "USD",
	}
}

func TestResolveRefsDefaults(t *testing.T) {
	refs, err := ResolveRefs([]domain.Security{usStock(12345, "AAA")})
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}

	r := refs[12345]
	if r.PriceMagnifier != 1 {
		t.Errorf("PriceMagnifier = %v, want default 1", r.PriceMagnifier)
	}
	if r.Multiplier != 1 {
		t.Errorf("Multiplier = %v, want default 1", r.Multiplier)
	}
	if r.Currency != "USD" || r.SecType != "STK" {
		t.Errorf("unexpected ref: %+v", r)
	}
}

func TestResolveRefsExplicitValues(t *testing.T) {
	magnifier := 100.0
	multiplier := 50.0
	sec := usStock(34567, "ZC")
	sec.SecType = "FUT"
	sec.PriceMagnifier = &magnifier
	sec.Multiplier = &multiplier

	refs, err := ResolveRefs([]domain.Security{sec})
	if err != nil {
		t.Fatalf("ResolveRefs: %v", err)
	}
	r := refs[34567]
	if r.PriceMagnifier != 100 || r.Multiplier != 50 {
		t.Errorf("got magnifier %v multiplier %v, want 100/50", r.PriceMagnifier, r.Multiplier)
	}
}

func TestResolveRefsRejectsZeroMultiplier(t *testing.T) {
	zero := 0.0
	sec := usStock(34567, "BAD")
	sec.Multiplier = &zero

	_, err := ResolveRefs([]domain.Security{sec})
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("want ReferenceError for zero multiplier, got %v", err)
	}
	if refErr.ConID != 34567 {
		t.Errorf("ReferenceError.ConID = %d, want 34567", refErr.ConID)
	}
}

func TestNewPanelRejectsUnknownSecurity(t *testing.T) {
	open := frame.New(testDates(3), []int64{12345, 99999})

	_, err := NewPanel([]domain.Security{usStock(12345, "AAA")}, map[string]*frame.Frame{FieldOpen: open})
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("want ReferenceError for unreferenced column, got %v", err)
	}
	if refErr.ConID != 99999 {
		t.Errorf("ReferenceError.ConID = %d, want 99999", refErr.ConID)
	}
}

func TestPanelLatestPricesPrefersClose(t *testing.T) {
	open := frame.New(testDates(3), []int64{12345})
	open.SetColumn(12345, []float64{1, 2, 3})
	close_ := frame.New(testDates(3), []int64{12345})
	close_.SetColumn(12345, []float64{9, 11, 10.50})

	p, err := NewPanel([]domain.Security{usStock(12345, "AAA")}, map[string]*frame.Frame{
		FieldOpen:  open,
		FieldClose: close_,
	})
	if err != nil {
		t.Fatalf("NewPanel: %v", err)
	}

	if got := p.LatestPrices().Value(12345); got != 10.50 {
		t.Errorf("LatestPrices = %v, want Close 10.50", got)
	}
}

func TestPanelLatestPricesFallsBackToOpen(t *testing.T) {
	open := frame.New(testDates(3), []int64{12345})
	open.SetColumn(12345, []float64{9, 11, 10.50})

	p, err := NewPanel([]domain.Security{usStock(12345, "AAA")}, map[string]*frame.Frame{FieldOpen: open})
	if err != nil {
		t.Fatalf("NewPanel: %v", err)
	}

	if got := p.LatestPrices().Value(12345); got != 10.50 {
		t.Errorf("LatestPrices = %v, want Open 10.50", got)
	}
}

func TestPanelLatestPricesSkipsTrailingNaN(t *testing.T) {
	close_ := frame.New(testDates(3), []int64{12345})
	close_.SetColumn(12345, []float64{9, 10.25, math.NaN()})

	p, err := NewPanel([]domain.Security{usStock(12345, "AAA")}, map[string]*frame.Frame{FieldClose: close_})
	if err != nil {
		t.Fatalf("NewPanel: %v", err)
	}

	if got := p.LatestPrices().Value(12345); got != 10.25 {
		t.Errorf("LatestPrices = %v, want last valid 10.25", got)
	}
}

func TestPanelRefMissing(t *testing.T) {
	p, err := NewPanel([]domain.Security{usStock(12345, "AAA")}, nil)
	if err != nil {
		t.Fatalf("NewPanel: %v", err)
	}

	if _, err := p.Ref(12345); err != nil {
		t.Errorf("Ref(12345): %v", err)
	}
	_, err = p.Ref(99999)
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Errorf("Ref on unknown security: want ReferenceError, got %v", err)
	}
}
