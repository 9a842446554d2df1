// Package strategy defines the pluggable capabilities a trading strategy
// supplies to the translation engine, and provides a Registry for managing
// multiple strategy implementations.
package strategy

import (
	"sort"

	"tradewind/internal/frame"
	"tradewind/internal/orders"
	"tradewind/internal/prices"
)

// Strategy is the contract between strategy code and the translation engine.
// PricesToSignals and SignalsToTargetWeights must be pure: deterministic for
// identical input, no side effects. Only the final row of the weight frame
// drives live order generation; earlier rows exist so strategies can compute
// rolling or lagged quantities without look-ahead.
type Strategy interface {
	// Code returns the strategy tag stamped on every order as OrderRef.
	Code() string

	// PricesToSignals derives a signal frame from the price panel.
	PricesToSignals(p *prices.Panel) (*frame.Frame, error)

	// SignalsToTargetWeights turns signals into target capital fractions,
	// same index and columns as the signal frame. Negative for short, NaN
	// for no target.
	SignalsToTargetWeights(signals *frame.Frame, p *prices.Panel) (*frame.Frame, error)

	// OrderStubsToOrders decorates the engine-assembled stub batch with
	// execution fields (venue, order type, time-in-force, limit price) and
	// may derive dependent rows via orders.ToChildOrders. It must not
	// mutate engine-assigned identifier fields; the engine validates the
	// returned batch. Its return value becomes the final order batch.
	OrderStubsToOrders(batch *orders.Batch, p *prices.Panel) (*orders.Batch, error)
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Code().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Code()] = s
}

// Get retrieves a strategy by code. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(code string) (Strategy, bool) {
	s, ok := r.strategies[code]
	return s, ok
}

// List returns a sorted slice of all registered strategy codes.
func (r *Registry) List() []string {
	codes := make([]string, 0, len(r.strategies))
	for code := range r.strategies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
