package gather

import (
	"context"
	"fmt"

	"tradewind/internal/domain"
	"tradewind/internal/prices"
	"tradewind/internal/store"
)

// Compile-time interface check.
var _ PriceSource = (*CachedPrices)(nil)

// CachedPrices builds price panels from a local bar store instead of a live
// market-data API. Paper runs without credentials use it against bars cached
// by earlier live fetches.
type CachedPrices struct {
	Store      store.BarStore
	Securities []domain.Security
	Window     DateRange
}

// FetchPanel reads each security's cached bars for the window and joins them
// into a panel.
func (s *CachedPrices) FetchPanel(ctx context.Context) (*prices.Panel, error) {
	var bars []domain.Bar
	for _, sec := range s.Securities {
		secBars, err := s.Store.ReadBars(ctx, sec, s.Window.Start, s.Window.End)
		if err != nil {
			return nil, fmt.Errorf("reading cached bars for %s: %w", sec.Symbol, err)
		}
		bars = append(bars, secBars...)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("bar cache has no data for the %d configured securities", len(s.Securities))
	}
	return prices.PanelFromBars(s.Securities, bars)
}
