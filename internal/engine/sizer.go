package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"tradewind/internal/allocation"
	"tradewind/internal/domain"
	"tradewind/internal/frame"
	"tradewind/internal/prices"
)

// sizedOrder is one surviving (security, account) pair with a signed net
// quantity: positive buys, negative sells.
type sizedOrder struct {
	conID    int64
	account  string
	quantity int64
}

type positionKey struct {
	account string
	conID   int64
}

// sizeOrders converts final-row target weights into signed integer order
// quantities. Row order is securities in panel column order, accounts in
// sorted code order within each security.
//
// Per pair: target value = capital * weight in account currency, converted to
// the security's currency, divided by the per-unit value (true price times
// multiplier), rounded half-away-from-zero to whole units, then netted
// against the current open position (order = target - current; a zero-weight
// target flattens an open position). Pairs rounding to zero are dropped.
//
// A missing or non-positive sizing price skips the pair with a data-quality
// warning; other securities must still be sizeable. A missing exchange rate
// skips the whole account, reported like a balance failure. A zero per-unit
// value with a valid price is a configuration fault and aborts.
func (t *Translator) sizeOrders(
	panel *prices.Panel,
	targetWeights frame.Series,
	accountIDs []string,
	balances map[string]domain.Account,
	capitals map[string]decimal.Decimal,
	rates *allocation.RateTable,
	openPositions []domain.Position,
) ([]sizedOrder, []SkippedAccount, error) {
	held := make(map[positionKey]int64, len(openPositions))
	for _, p := range openPositions {
		held[positionKey{p.Account, p.ConID}] += p.Quantity
	}

	sizingPrices := panel.LatestPrices()

	var sized []sizedOrder
	dropped := make(map[string]error)

	for _, conID := range panel.ConIDs() {
		weight := targetWeights.Value(conID)
		if math.IsNaN(weight) {
			// No target for this security; leave any position alone.
			continue
		}

		ref, err := panel.Ref(conID)
		if err != nil {
			return nil, nil, err
		}

		for _, account := range accountIDs {
			if _, gone := dropped[account]; gone {
				continue
			}

			targetQty := int64(0)
			if weight != 0 {
				price := sizingPrices.Value(conID)
				if math.IsNaN(price) || price <= 0 {
					t.log.Warn("no usable sizing price, skipping",
						"conId", conID, "symbol", ref.Symbol, "price", price)
					continue
				}

				perUnit := decimal.NewFromFloat(price).
					Div(decimal.NewFromFloat(ref.PriceMagnifier)).
					Mul(decimal.NewFromFloat(ref.Multiplier))
				if perUnit.IsZero() {
					return nil, nil, &prices.ReferenceError{ConID: conID, Reason: "zero per-unit value"}
				}

				targetValue := capitals[account].Mul(decimal.NewFromFloat(weight))
				secValue, err := rates.Convert(targetValue, balances[account].Currency, ref.Currency)
				if err != nil {
					t.log.Warn("skipping account", "account", account, "err", err)
					dropped[account] = err
					continue
				}

				targetQty = secValue.Div(perUnit).Round(0).IntPart()
			}

			orderQty := targetQty - held[positionKey{account, conID}]
			if orderQty == 0 {
				continue
			}
			sized = append(sized, sizedOrder{conID: conID, account: account, quantity: orderQty})
		}
	}

	// Remove rows already emitted for accounts dropped mid-loop, and report
	// the drops in sorted order alongside balance skips.
	var skipped []SkippedAccount
	if len(dropped) > 0 {
		kept := sized[:0]
		for _, s := range sized {
			if _, gone := dropped[s.account]; !gone {
				kept = append(kept, s)
			}
		}
		sized = kept
		for _, account := range accountIDs {
			if err, gone := dropped[account]; gone {
				skipped = append(skipped, SkippedAccount{Account: account, Err: err})
			}
		}
	}
	return sized, skipped, nil
}
