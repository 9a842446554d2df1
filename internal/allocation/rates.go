package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradewind/internal/domain"
)

// RateError reports a missing exchange rate for a currency pair. Like a
// balance failure it is fatal for the affected account's orders.
type RateError struct {
	From string
	To   string
}

func (e *RateError) Error() string {
	return fmt.Sprintf("no exchange rate for %s/%s", e.From, e.To)
}

type currencyPair struct {
	base  string
	quote string
}

// RateTable converts amounts between currencies from a per-invocation rate
// snapshot. The stored convention: a row (Base, Quote, Rate) means 1 Base =
// Rate Quote. Conversion from Base to Quote multiplies by Rate; the reverse
// direction divides, so only one orientation needs to be supplied.
type RateTable struct {
	rates map[currencyPair]decimal.Decimal
}

// NewRateTable builds a RateTable from rate snapshot rows. Later duplicates
// of a pair win. Rows with a non-positive rate are ignored.
func NewRateTable(rates []domain.ExchangeRate) *RateTable {
	t := &RateTable{rates: make(map[currencyPair]decimal.Decimal, len(rates))}
	for _, r := range rates {
		if r.Rate <= 0 {
			continue
		}
		t.rates[currencyPair{r.Base, r.Quote}] = decimal.NewFromFloat(r.Rate)
	}
	return t
}

// Convert converts amount denominated in from into to. Identical currencies
// convert at 1 without needing a rate row.
func (t *RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	if rate, ok := t.rates[currencyPair{from, to}]; ok {
		return amount.Mul(rate), nil
	}
	if rate, ok := t.rates[currencyPair{to, from}]; ok {
		return amount.Div(rate), nil
	}
	return decimal.Zero, &RateError{From: from, To: to}
}
