// Package gather defines the retrieval capabilities the translation engine
// consumes at its boundary. Each source returns an already-resolved snapshot;
// retries of the underlying calls belong to the source implementation, not
// to the engine.
package gather

import (
	"context"
	"time"

	"tradewind/internal/allocation"
	"tradewind/internal/domain"
	"tradewind/internal/prices"
)

// PriceSource fetches the combined price/reference panel for the universe and
// date range the source was configured with.
type PriceSource interface {
	FetchPanel(ctx context.Context) (*prices.Panel, error)
}

// BalanceSource fetches account balance snapshots keyed by account code.
type BalanceSource interface {
	Balances(ctx context.Context) (map[string]domain.Account, error)
}

// RateSource fetches the currency exchange rate snapshot.
type RateSource interface {
	Rates(ctx context.Context) (*allocation.RateTable, error)
}

// PositionSource fetches current open positions across accounts.
type PositionSource interface {
	Positions(ctx context.Context) ([]domain.Position, error)
}

// DateRange represents a time range for data fetching.
type DateRange struct {
	Start time.Time
	End   time.Time
}
