// Package allocation computes per-account capital bases and converts amounts
// between currencies using a snapshot of exchange rates.
package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradewind/internal/domain"
)

// BalanceError reports a missing or malformed account balance. It is fatal
// for that account's orders; the engine may skip the account and continue,
// reporting the skip to the caller.
type BalanceError struct {
	Account string
	Reason  string
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("account %s: %s", e.Account, e.Reason)
}

// CapitalBase returns the capital available to a strategy in the account's
// own currency: NetLiquidation * fraction. The fraction must be in (0, 1].
func CapitalBase(account domain.Account, fraction float64) (decimal.Decimal, error) {
	if fraction <= 0 || fraction > 1 {
		return decimal.Zero, &BalanceError{Account: account.ID, Reason: fmt.Sprintf("allocation fraction %v outside (0, 1]", fraction)}
	}
	if account.NetLiquidation <= 0 {
		return decimal.Zero, &BalanceError{Account: account.ID, Reason: fmt.Sprintf("non-positive net liquidation %v", account.NetLiquidation)}
	}
	return decimal.NewFromFloat(account.NetLiquidation).Mul(decimal.NewFromFloat(fraction)), nil
}

// CapitalBases computes capital bases for every requested account. An account
// missing from balances produces a BalanceError; callers that want to skip
// rather than abort call CapitalBase per account instead.
func CapitalBases(allocations map[string]float64, balances map[string]domain.Account) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(allocations))
	for id, fraction := range allocations {
		account, ok := balances[id]
		if !ok {
			return nil, &BalanceError{Account: id, Reason: "no balance snapshot"}
		}
		capital, err := CapitalBase(account, fraction)
		if err != nil {
			return nil, err
		}
		out[id] = capital
	}
	return out, nil
}
