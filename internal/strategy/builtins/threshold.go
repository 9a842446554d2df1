// Package builtins provides built-in strategy implementations that ship with
// the tradewind platform.
package builtins

import (
	"fmt"
	"math"

	"tradewind/internal/frame"
	"tradewind/internal/orders"
	"tradewind/internal/prices"
	"tradewind/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*ThresholdLongShort)(nil)

// ThresholdLongShort goes long every security trading at or below a pivot
// price and short every security trading above it, with a fixed weight
// magnitude per security. Orders go out as market orders; when a closing
// order type is configured, each parent order gets a linked child order of
// that type in the opposite direction (e.g. MKT in, MOC out).
type ThresholdLongShort struct {
	code      string
	pivot     float64
	weight    float64
	closeWith string // child order type, "" for no child orders
}

// NewThresholdLongShort creates the strategy with the given pivot price and
// fixed weight magnitude.
func NewThresholdLongShort(code string, pivot, weight float64, closeWith string) *ThresholdLongShort {
	return &ThresholdLongShort{
		code:      code,
		pivot:     pivot,
		weight:    weight,
		closeWith: closeWith,
	}
}

// Code returns the strategy tag.
func (s *ThresholdLongShort) Code() string { return s.code }

// PricesToSignals emits +1 for securities at or below the pivot and -1 above
// it, per date.
func (s *ThresholdLongShort) PricesToSignals(p *prices.Panel) (*frame.Frame, error) {
	priceField, ok := p.Field(prices.FieldClose)
	if !ok {
		priceField, ok = p.Field(prices.FieldOpen)
	}
	if !ok {
		return nil, fmt.Errorf("%s: panel has neither Close nor Open prices", s.code)
	}

	signals := frame.New(priceField.Dates(), priceField.ConIDs())
	for _, conID := range priceField.ConIDs() {
		for row := 0; row < priceField.NumRows(); row++ {
			px := priceField.At(conID, row)
			if math.IsNaN(px) {
				continue
			}
			if px <= s.pivot {
				signals.Set(conID, row, 1)
			} else {
				signals.Set(conID, row, -1)
			}
		}
	}
	return signals, nil
}

// SignalsToTargetWeights applies the fixed weight magnitude to every signal.
func (s *ThresholdLongShort) SignalsToTargetWeights(signals *frame.Frame, _ *prices.Panel) (*frame.Frame, error) {
	return strategy.AllocateFixedWeights(signals, s.weight), nil
}

// OrderStubsToOrders fills market-order execution fields and, when a closing
// order type is configured, appends linked child orders that unwind each
// position.
func (s *ThresholdLongShort) OrderStubsToOrders(batch *orders.Batch, _ *prices.Panel) (*orders.Batch, error) {
	rows := batch.Rows()
	for i := range rows {
		rows[i].Exchange = "SMART"
		rows[i].OrderType = "MKT"
		rows[i].Tif = "Day"
	}

	if s.closeWith == "" {
		return batch, nil
	}

	children, err := orders.ToChildOrders(batch)
	if err != nil {
		return nil, err
	}
	childRows := children.Rows()
	for i := range childRows {
		childRows[i].OrderType = s.closeWith
	}
	return batch.Concat(children), nil
}
