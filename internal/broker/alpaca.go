package broker

import (
	"context"
	"fmt"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradewind/internal/domain"
	"tradewind/internal/orders"
	"tradewind/internal/prices"
)

// Compile-time interface check.
var _ Submitter = (*AlpacaSubmitter)(nil)

// AlpacaSubmitter implements the Submitter interface against the Alpaca
// trading API. Alpaca has no attached-order concept, so child rows are
// placed as standalone orders after their parent, linked only through the
// returned Submission records.
type AlpacaSubmitter struct {
	client *alpaca.Client
	refs   map[int64]prices.Ref
}

// NewAlpacaSubmitter creates an AlpacaSubmitter. refs maps security
// identifiers to their reference rows, used to resolve ticker symbols.
func NewAlpacaSubmitter(apiKey, apiSecret, baseURL string, refs map[int64]prices.Ref) *AlpacaSubmitter {
	return &AlpacaSubmitter{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		refs: refs,
	}
}

// Name returns "alpaca".
func (s *AlpacaSubmitter) Name() string {
	return "alpaca"
}

// SubmitBatch places every row of the batch with Alpaca, in row order.
func (s *AlpacaSubmitter) SubmitBatch(ctx context.Context, b *orders.Batch) ([]Submission, error) {
	if err := orders.Validate(b); err != nil {
		return nil, err
	}

	parentIDs := make(map[int64]string)
	out := make([]Submission, 0, b.Len())
	for i, row := range b.Rows() {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		req, err := s.placeRequest(row)
		if err != nil {
			return out, fmt.Errorf("row %d: %w", i, err)
		}
		placed, err := s.client.PlaceOrder(req)
		if err != nil {
			return out, fmt.Errorf("row %d: PlaceOrder: %w", i, err)
		}

		sub := Submission{BrokerOrderID: placed.ID, Row: row}
		if row.IsParent() {
			parentIDs[*row.OrderID] = placed.ID
		}
		if row.IsChild() {
			sub.BrokerParentID = parentIDs[*row.ParentID]
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *AlpacaSubmitter) placeRequest(row domain.Order) (alpaca.PlaceOrderRequest, error) {
	ref, ok := s.refs[row.ConID]
	if !ok {
		return alpaca.PlaceOrderRequest{}, fmt.Errorf("no reference row for security %d", row.ConID)
	}

	qty := decimal.NewFromInt(row.TotalQuantity)
	req := alpaca.PlaceOrderRequest{
		Symbol: ref.Symbol,
		Qty:    &qty,
		// Client order ids must be unique per order; the strategy code
		// prefix keeps them attributable.
		ClientOrderID: row.OrderRef + "-" + uuid.NewString(),
	}

	switch row.Action {
	case domain.ActionBuy:
		req.Side = alpaca.Buy
	case domain.ActionSell:
		req.Side = alpaca.Sell
	default:
		return alpaca.PlaceOrderRequest{}, fmt.Errorf("unknown action %q", row.Action)
	}

	switch strings.ToUpper(row.OrderType) {
	case "MKT":
		req.Type = alpaca.Market
	case "LMT":
		req.Type = alpaca.Limit
		if row.LmtPrice > 0 {
			px := decimal.NewFromFloat(row.LmtPrice)
			req.LimitPrice = &px
		}
	case "MOC":
		req.Type = alpaca.Market
		req.TimeInForce = alpaca.CLS
	default:
		return alpaca.PlaceOrderRequest{}, fmt.Errorf("unsupported order type %q", row.OrderType)
	}

	if req.TimeInForce == "" {
		switch strings.ToUpper(row.Tif) {
		case "", "DAY":
			req.TimeInForce = alpaca.Day
		case "GTC":
			req.TimeInForce = alpaca.GTC
		default:
			return alpaca.PlaceOrderRequest{}, fmt.Errorf("unsupported time in force %q", row.Tif)
		}
	}
	return req, nil
}
