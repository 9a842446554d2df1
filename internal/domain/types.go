// Package domain defines the core value types shared across the translation
// pipeline: securities, accounts, exchange rates, positions, bars, and order
// rows.
package domain

import "time"

// Action is the direction of an order.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Invert returns the opposite direction. Used by the child-order linker to
// derive closing orders.
func (a Action) Invert() Action {
	if a == ActionBuy {
		return ActionSell
	}
	return ActionBuy
}

// Security describes one tradable instrument. PriceMagnifier and Multiplier
// are nil when the reference source carries no value; the resolver defaults
// both to 1. Immutable for the duration of one translation.
type Security struct {
	ConID          int64
	Symbol         string
	Timezone       string
	SecType        string
	Currency       string // 3-letter code
	PriceMagnifier *float64
	Multiplier     *float64
}

// Account is a funded account snapshot supplied per invocation.
type Account struct {
	ID             string // account code, e.g. "U123"
	NetLiquidation float64
	Currency       string
}

// ExchangeRate expresses 1 unit of Base as Rate units of Quote.
type ExchangeRate struct {
	Base  string
	Quote string
	Rate  float64
}

// Position is an open position snapshot for one account and security. Signed:
// negative for short.
type Position struct {
	Account  string
	ConID    int64
	Quantity int64
}

// Bar is one daily OHLCV bar for a security.
type Bar struct {
	ConID     int64
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Order is one broker-ready order row. ConID, Account, Action, TotalQuantity
// and OrderRef are engine-assigned; the customization hook fills execution
// fields. Exactly one of OrderID and ParentID is set: a row is either a
// top-level (parent) order or a dependent (child) order, never both and never
// neither. Child rows get their real identifier only at submission time, once
// the parent exists at the broker.
type Order struct {
	ConID         int64
	Account       string
	Action        Action
	TotalQuantity int64 // positive
	OrderRef      string

	Exchange  string
	OrderType string
	Tif       string
	LmtPrice  float64 // 0 means unset

	OrderID  *int64
	ParentID *int64
}

// IsParent reports whether the row is a top-level order.
func (o Order) IsParent() bool { return o.OrderID != nil && o.ParentID == nil }

// IsChild reports whether the row depends on a parent order.
func (o Order) IsChild() bool { return o.ParentID != nil && o.OrderID == nil }
