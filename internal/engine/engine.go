// Package engine implements the target-weight-to-order translation pipeline:
// it invokes a strategy's signal and weight functions against the latest
// price panel, scales per-account capital, sizes signed integer quantities,
// assembles stub order rows, and runs the strategy's customization hook to
// produce the final broker-ready batch.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"tradewind/internal/allocation"
	"tradewind/internal/domain"
	"tradewind/internal/gather"
	"tradewind/internal/orders"
	"tradewind/internal/strategy"
)

// Translator wires the four external retrieval capabilities to the
// translation pipeline. One Translate call is self-contained and idempotent
// given identical snapshots; concurrent calls for independent strategies are
// safe because no stage mutates shared state.
type Translator struct {
	prices    gather.PriceSource
	balances  gather.BalanceSource
	rates     gather.RateSource
	positions gather.PositionSource
	log       *slog.Logger
}

// NewTranslator creates a Translator wired with the given sources. A nil
// logger falls back to slog.Default.
func NewTranslator(
	p gather.PriceSource,
	b gather.BalanceSource,
	r gather.RateSource,
	pos gather.PositionSource,
	logger *slog.Logger,
) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		prices:    p,
		balances:  b,
		rates:     r,
		positions: pos,
		log:       logger.With("component", "translator"),
	}
}

// SkippedAccount reports an account whose orders were dropped from a batch
// with the reason, typically a missing balance or exchange rate.
type SkippedAccount struct {
	Account string
	Err     error
}

// Result is the outcome of one translation: the final order batch plus any
// accounts that were skipped rather than aborting the whole invocation.
type Result struct {
	Batch   *orders.Batch
	Skipped []SkippedAccount
}

// Translate converts per-account allocation fractions into a broker-ready
// order batch for the given strategy. Accounts iterate in sorted code order
// so row output is deterministic; securities follow the panel's column order.
func (t *Translator) Translate(ctx context.Context, strat strategy.Strategy, allocations map[string]float64) (*Result, error) {
	panel, err := t.prices.FetchPanel(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching price panel: %w", err)
	}

	signals, err := strat.PricesToSignals(panel)
	if err != nil {
		return nil, fmt.Errorf("strategy %s signals: %w", strat.Code(), err)
	}
	weights, err := strat.SignalsToTargetWeights(signals, panel)
	if err != nil {
		return nil, fmt.Errorf("strategy %s weights: %w", strat.Code(), err)
	}
	if weights == nil {
		return nil, fmt.Errorf("strategy %s returned no weight frame", strat.Code())
	}

	balances, err := t.balances.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching balances: %w", err)
	}
	rates, err := t.rates.Rates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching exchange rates: %w", err)
	}
	openPositions, err := t.positions.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	// Per-account capital bases; accounts without a usable balance are
	// skipped and reported, not fatal to the batch.
	accountIDs := make([]string, 0, len(allocations))
	for id := range allocations {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	capitals := make(map[string]decimal.Decimal, len(accountIDs))
	var skipped []SkippedAccount
	var sizeable []string
	for _, id := range accountIDs {
		account, ok := balances[id]
		if !ok {
			err := &allocation.BalanceError{Account: id, Reason: "no balance snapshot"}
			t.log.Warn("skipping account", "account", id, "err", err)
			skipped = append(skipped, SkippedAccount{Account: id, Err: err})
			continue
		}
		capital, err := allocation.CapitalBase(account, allocations[id])
		if err != nil {
			t.log.Warn("skipping account", "account", id, "err", err)
			skipped = append(skipped, SkippedAccount{Account: id, Err: err})
			continue
		}
		capitals[id] = capital
		sizeable = append(sizeable, id)
	}

	sized, rateSkipped, err := t.sizeOrders(panel, weights.LastRow(), sizeable, balances, capitals, rates, openPositions)
	if err != nil {
		return nil, err
	}
	skipped = append(skipped, rateSkipped...)

	batch := orders.NewBatch()
	for _, s := range sized {
		action := domain.ActionBuy
		qty := s.quantity
		if qty < 0 {
			action = domain.ActionSell
			qty = -qty
		}
		batch.AppendParent(domain.Order{
			ConID:         s.conID,
			Account:       s.account,
			Action:        action,
			TotalQuantity: qty,
			OrderRef:      strat.Code(),
		})
	}
	if batch.Len() == 0 {
		t.log.Info("no orders generated", "strategy", strat.Code())
		return &Result{Batch: batch, Skipped: skipped}, nil
	}

	stubs := batch.Clone()
	final, err := strat.OrderStubsToOrders(batch, panel)
	if err != nil {
		return nil, fmt.Errorf("strategy %s order hook: %w", strat.Code(), err)
	}
	if final == nil {
		return nil, &orders.ContractError{Reason: "customization hook returned nil batch"}
	}
	if err := orders.Validate(final); err != nil {
		return nil, err
	}
	if err := checkHookContract(stubs, final); err != nil {
		return nil, err
	}

	t.log.Info("translated batch",
		"strategy", strat.Code(),
		"rows", final.Len(),
		"skippedAccounts", len(skipped),
	)
	return &Result{Batch: final, Skipped: skipped}, nil
}

// checkHookContract verifies the customization hook left engine-assigned
// fields untouched: every surviving parent row must match its stub.
func checkHookContract(stubs, final *orders.Batch) error {
	byID := make(map[int64]int, stubs.Len())
	for i, row := range stubs.Rows() {
		byID[*row.OrderID] = i
	}
	for i, row := range final.Rows() {
		if !row.IsParent() {
			continue
		}
		si, ok := byID[*row.OrderID]
		if !ok {
			return &orders.ContractError{Reason: fmt.Sprintf("row %d: hook introduced unknown OrderId %d", i, *row.OrderID)}
		}
		stub := stubs.Rows()[si]
		if row.ConID != stub.ConID || row.Account != stub.Account ||
			row.Action != stub.Action || row.TotalQuantity != stub.TotalQuantity ||
			row.OrderRef != stub.OrderRef {
			return &orders.ContractError{Reason: fmt.Sprintf("row %d: hook mutated engine-assigned fields of OrderId %d", i, *row.OrderID)}
		}
	}
	return nil
}
