package strategy

import (
	"math"

	"tradewind/internal/frame"
)

// AllocateFixedWeights distributes a constant absolute weight magnitude to
// every security with a nonzero signal, preserving the signal's sign:
// weight = sign(signal) * magnitude. Zero signals get weight 0, NaN signals
// stay NaN. This is the simplest allocation policy and the default building
// block strategies compose with.
func AllocateFixedWeights(signals *frame.Frame, magnitude float64) *frame.Frame {
	weights := frame.New(signals.Dates(), signals.ConIDs())
	for _, conID := range signals.ConIDs() {
		for row := 0; row < signals.NumRows(); row++ {
			s := signals.At(conID, row)
			switch {
			case math.IsNaN(s):
				// Stays NaN.
			case s > 0:
				weights.Set(conID, row, magnitude)
			case s < 0:
				weights.Set(conID, row, -magnitude)
			default:
				weights.Set(conID, row, 0)
			}
		}
	}
	return weights
}
