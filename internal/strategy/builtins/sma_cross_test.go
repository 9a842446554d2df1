package builtins

import (
	"math"
	"testing"
	"time"

	"tradewind/internal/domain"
	"tradewind/internal/frame"
	"tradewind/internal/prices"
)

func smaPanel(t *testing.T) *prices.Panel {
	t.Helper()
	dates := make([]time.Time, 6)
	for i := range dates {
		dates[i] = time.Date(2024, 6, 10+i, 0, 0, 0, 0, time.UTC)
	}
	closes := frame.New(dates, []int64{12345, 23456})
	// Rising then falling: short SMA crosses below long SMA at the end.
	closes.SetColumn(12345, []float64{10, 11, 12, 13, 11, 9})
	// Steadily rising: short SMA stays above long SMA.
	closes.SetColumn(23456, []float64{8, 8.5, 9, 9.5, 10, 10.5})

	securities := []domain.Security{
		{ConID: 12345, Symbol: "AAA", Timezone: "America/New_York", SecType: "STK", Currency: "USD"},
		{ConID: 23456, Symbol: "BBB", Timezone: "America/New_York", SecType: "STK", Currency: "USD"},
	}
	p, err := prices.NewPanel(securities, map[string]*frame.Frame{prices.FieldClose: closes})
	if err != nil {
		t.Fatalf("NewPanel: %v", err)
	}
	return p
}

func TestSMACrossSignals(t *testing.T) {
	s := NewSMACross("sma-2-4", 2, 4, 0.25)
	p := smaPanel(t)

	signals, err := s.PricesToSignals(p)
	if err != nil {
		t.Fatalf("PricesToSignals: %v", err)
	}

	// Rows before the long window fills stay NaN.
	if got := signals.At(12345, 2); !math.IsNaN(got) {
		t.Errorf("signal before window fills = %v, want NaN", got)
	}

	// Last row: SMA2(11,9)=10 below SMA4(12,13,11,9)=11.25.
	last := signals.LastRow()
	if got := last.Value(12345); got != -1 {
		t.Errorf("signal 12345 = %v, want -1", got)
	}
	// SMA2(10,10.5)=10.25 above SMA4(9,9.5,10,10.5)=9.75.
	if got := last.Value(23456); got != 1 {
		t.Errorf("signal 23456 = %v, want 1", got)
	}
}

func TestSMACrossWeights(t *testing.T) {
	s := NewSMACross("sma-2-4", 2, 4, 0.25)
	p := smaPanel(t)

	signals, err := s.PricesToSignals(p)
	if err != nil {
		t.Fatalf("PricesToSignals: %v", err)
	}
	weights, err := s.SignalsToTargetWeights(signals, p)
	if err != nil {
		t.Fatalf("SignalsToTargetWeights: %v", err)
	}

	last := weights.LastRow()
	if got := last.Value(12345); got != -0.25 {
		t.Errorf("weight 12345 = %v, want -0.25", got)
	}
	if got := last.Value(23456); got != 0.25 {
		t.Errorf("weight 23456 = %v, want 0.25", got)
	}
	if got := weights.At(12345, 1); !math.IsNaN(got) {
		t.Errorf("weight before window fills = %v, want NaN", got)
	}
}
