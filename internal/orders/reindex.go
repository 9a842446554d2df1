package orders

import "tradewind/internal/frame"

// ReindexLikeOrders realigns a per-security series onto a batch, returning
// one value per row in row order. A security appearing in several rows (for
// example after ToChildOrders doubles the batch) receives the same value in
// each; a security absent from the source reads as NaN. Customization hooks
// use this to compute a value once per security and broadcast it across
// whatever row shape the batch has taken.
func ReindexLikeOrders(src frame.Series, b *Batch) []float64 {
	out := make([]float64, b.Len())
	for i, row := range b.Rows() {
		out[i] = src.Value(row.ConID)
	}
	return out
}
