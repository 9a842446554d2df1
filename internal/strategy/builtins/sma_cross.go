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
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross is a moving average crossover pipeline. It holds a long position
// while the short-period SMA of closes is above the long-period SMA and a
// short position while it is below.
type SMACross struct {
	code        string
	shortPeriod int
	longPeriod  int
	weight      float64
}

// NewSMACross creates an SMACross registered under code with the given SMA
// periods. weight is the absolute target weight assigned to each signal.
func NewSMACross(code string, short, long int, weight float64) *SMACross {
	return &SMACross{
		code:        code,
		shortPeriod: short,
		longPeriod:  long,
		weight:      weight,
	}
}

// Code returns the identifier the strategy is registered under.
func (s *SMACross) Code() string { return s.code }

// PricesToSignals computes both SMAs per security and signals +1 where the
// short SMA is above the long SMA, -1 where below. Rows without enough
// history stay NaN.
func (s *SMACross) PricesToSignals(p *prices.Panel) (*frame.Frame, error) {
	closes, ok := p.Field(prices.FieldClose)
	if !ok {
		return nil, fmt.Errorf("%s: panel has no Close prices", s.code)
	}
	dates := closes.Dates()
	signals := frame.New(dates, closes.ConIDs())

	for _, conID := range closes.ConIDs() {
		for row := range dates {
			shortSMA := trailingMean(closes, conID, row, s.shortPeriod)
			longSMA := trailingMean(closes, conID, row, s.longPeriod)
			if math.IsNaN(shortSMA) || math.IsNaN(longSMA) {
				continue
			}
			switch {
			case shortSMA > longSMA:
				signals.Set(conID, row, 1)
			case shortSMA < longSMA:
				signals.Set(conID, row, -1)
			default:
				signals.Set(conID, row, 0)
			}
		}
	}
	return signals, nil
}

// SignalsToTargetWeights maps signals onto fixed-magnitude weights.
func (s *SMACross) SignalsToTargetWeights(signals *frame.Frame, _ *prices.Panel) (*frame.Frame, error) {
	return strategy.AllocateFixedWeights(signals, s.weight), nil
}

// OrderStubsToOrders routes stubs as SMART market orders good for the day.
func (s *SMACross) OrderStubsToOrders(batch *orders.Batch, _ *prices.Panel) (*orders.Batch, error) {
	rows := batch.Rows()
	for i := range rows {
		rows[i].Exchange = "SMART"
		rows[i].OrderType = "MKT"
		rows[i].Tif = "Day"
	}
	return batch, nil
}

// trailingMean averages the window of closes ending at row. It returns NaN
// when the window extends past the start of the index or contains a NaN.
func trailingMean(closes *frame.Frame, conID int64, row, period int) float64 {
	if period <= 0 || row+1 < period {
		return math.NaN()
	}
	sum := 0.0
	for i := row + 1 - period; i <= row; i++ {
		v := closes.At(conID, i)
		if math.IsNaN(v) {
			return math.NaN()
		}
		sum += v
	}
	return sum / float64(period)
}
