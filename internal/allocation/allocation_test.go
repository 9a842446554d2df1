package allocation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tradewind/internal/domain"
)

func TestCapitalBase(t *testing.T) {
	account := domain.Account{ID: "U123", NetLiquidation: 85000, Currency: "USD"}

	capital, err := CapitalBase(account, 0.5)
	if err != nil {
		t.Fatalf("CapitalBase: %v", err)
	}
	if want := decimal.NewFromInt(42500); !capital.Equal(want) {
		t.Errorf("capital = %s, want %s", capital, want)
	}
}

func TestCapitalBaseRejectsBadFraction(t *testing.T) {
	account := domain.Account{ID: "U123", NetLiquidation: 85000, Currency: "USD"}

	for _, fraction := range []float64{0, -0.1, 1.5} {
		_, err := CapitalBase(account, fraction)
		var balErr *BalanceError
		if !errors.As(err, &balErr) {
			t.Errorf("fraction %v: want BalanceError, got %v", fraction, err)
		}
	}
}

func TestCapitalBasesMissingAccount(t *testing.T) {
	allocations := map[string]float64{"U123": 0.5, "U999": 0.25}
	balances := map[string]domain.Account{
		"U123": {ID: "U123", NetLiquidation: 85000, Currency: "USD"},
	}

	_, err := CapitalBases(allocations, balances)
	var balErr *BalanceError
	if !errors.As(err, &balErr) {
		t.Fatalf("want BalanceError, got %v", err)
	}
	if balErr.Account != "U999" {
		t.Errorf("BalanceError.Account = %q, want U999", balErr.Account)
	}
}

func TestRateTableIdentity(t *testing.T) {
	// The degenerate USD/USD case needs no rate row at all.
	rt := NewRateTable(nil)
	got, err := rt.Convert(decimal.NewFromInt(10625), "USD", "USD")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(10625)) {
		t.Errorf("identity conversion = %s, want 10625", got)
	}
}

func TestRateTableDirectAndInverse(t *testing.T) {
	// 1 GBP = 1.25 USD.
	rt := NewRateTable([]domain.ExchangeRate{{Base: "GBP", Quote: "USD", Rate: 1.25}})

	usd, err := rt.Convert(decimal.NewFromInt(100), "GBP", "USD")
	if err != nil {
		t.Fatalf("Convert GBP->USD: %v", err)
	}
	if want := decimal.NewFromInt(125); !usd.Equal(want) {
		t.Errorf("GBP->USD = %s, want %s", usd, want)
	}

	// Only the GBP/USD orientation is stored; USD->GBP must invert.
	gbp, err := rt.Convert(decimal.NewFromInt(125), "USD", "GBP")
	if err != nil {
		t.Fatalf("Convert USD->GBP: %v", err)
	}
	if want := decimal.NewFromInt(100); !gbp.Equal(want) {
		t.Errorf("USD->GBP = %s, want %s", gbp, want)
	}
}

func TestRateTableMissingPair(t *testing.T) {
	rt := NewRateTable([]domain.ExchangeRate{{Base: "GBP", Quote: "USD", Rate: 1.25}})

	_, err := rt.Convert(decimal.NewFromInt(1), "USD", "JPY")
	var rateErr *RateError
	if !errors.As(err, &rateErr) {
		t.Fatalf("want RateError, got %v", err)
	}
	if rateErr.From != "USD" || rateErr.To != "JPY" {
		t.Errorf("RateError pair = %s/%s, want USD/JPY", rateErr.From, rateErr.To)
	}
}
