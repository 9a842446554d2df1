package gather

import (
	"context"

	"tradewind/internal/allocation"
	"tradewind/internal/domain"
	"tradewind/internal/prices"
)

// Compile-time interface checks.
var _ PriceSource = (*StaticPrices)(nil)
var _ BalanceSource = (*StaticBalances)(nil)
var _ RateSource = (*StaticRates)(nil)
var _ PositionSource = (*StaticPositions)(nil)

// StaticPrices serves a pre-built panel. Used for paper trading from
// configured fixtures and in tests.
type StaticPrices struct {
	Panel *prices.Panel
}

// FetchPanel returns the configured panel.
func (s *StaticPrices) FetchPanel(_ context.Context) (*prices.Panel, error) {
	return s.Panel, nil
}

// StaticBalances serves a fixed set of account snapshots.
type StaticBalances struct {
	Accounts []domain.Account
}

// Balances returns the configured accounts keyed by account code.
func (s *StaticBalances) Balances(_ context.Context) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(s.Accounts))
	for _, a := range s.Accounts {
		out[a.ID] = a
	}
	return out, nil
}

// StaticRates serves a fixed exchange rate snapshot.
type StaticRates struct {
	ExchangeRates []domain.ExchangeRate
}

// Rates returns a rate table over the configured rows.
func (s *StaticRates) Rates(_ context.Context) (*allocation.RateTable, error) {
	return allocation.NewRateTable(s.ExchangeRates), nil
}

// StaticPositions serves a fixed open-position snapshot.
type StaticPositions struct {
	Open []domain.Position
}

// Positions returns the configured positions.
func (s *StaticPositions) Positions(_ context.Context) ([]domain.Position, error) {
	return s.Open, nil
}
