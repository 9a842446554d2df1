// Package us provides Alpaca-backed implementations of the engine's retrieval
// capabilities for US equities: daily price panels, account balance
// snapshots, and open positions.
package us

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"tradewind/internal/domain"
	"tradewind/internal/gather"
	"tradewind/internal/prices"
	"tradewind/internal/store"
	"tradewind/internal/util"
)

// ---------------------------------------------------------------------------
// Compile-time interface checks
// ---------------------------------------------------------------------------

var _ gather.PriceSource = (*PanelSource)(nil)
var _ gather.BalanceSource = (*BalanceSource)(nil)
var _ gather.PositionSource = (*PositionSource)(nil)

// ClientConfig holds the Alpaca credentials and endpoints shared by the
// sources in this package.
type ClientConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string // trading API
	DataURL   string // market-data API
}

// ---------------------------------------------------------------------------
// PanelSource — daily price panels from the Alpaca market-data API.
// ---------------------------------------------------------------------------

// PanelSource fetches daily bars for a fixed security universe and joins them
// with the reference master into a price panel. Fetched bars are written
// through to an optional Parquet cache.
type PanelSource struct {
	cfg        ClientConfig
	client     *marketdata.Client
	securities []domain.Security
	lookback   int // calendar days of history
	cache      store.BarStore
	limiter    *util.RateLimiter
	log        *slog.Logger
}

// NewPanelSource creates a PanelSource for the given universe, looking back
// the given number of calendar days. cache may be nil.
func NewPanelSource(cfg ClientConfig, securities []domain.Security, lookback int, cache store.BarStore) *PanelSource {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.DataURL != "" {
		opts.BaseURL = cfg.DataURL
	}
	if lookback <= 0 {
		lookback = 30
	}

	return &PanelSource{
		cfg:        cfg,
		client:     marketdata.NewClient(opts),
		securities: securities,
		lookback:   lookback,
		cache:      cache,
		limiter:    util.NewRateLimiter(200),
		log:        slog.Default().With("source", "us-panel"),
	}
}

// FetchPanel fetches daily bars for the configured universe and builds the
// price panel from them.
func (s *PanelSource) FetchPanel(ctx context.Context) (*prices.Panel, error) {
	symbols := make([]string, len(s.securities))
	conIDs := make(map[string]int64, len(s.securities))
	for i, sec := range s.securities {
		sym := strings.ToUpper(sec.Symbol)
		symbols[i] = sym
		conIDs[sym] = sec.ConID
	}

	window := s.fetchWindow()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var multiBars map[string][]marketdata.Bar
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		multiBars, err = s.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     window.Start,
			End:       window.End,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		conID, ok := conIDs[strings.ToUpper(symbol)]
		if !ok {
			continue
		}
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				ConID:     conID,
				Symbol:    strings.ToUpper(symbol),
				Timestamp: ab.Timestamp,
				Open:      ab.Open,
				High:      ab.High,
				Low:       ab.Low,
				Close:     ab.Close,
				Volume:    int64(ab.Volume),
			})
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars returned for universe of %d securities", len(symbols))
	}

	if s.cache != nil {
		if err := s.cache.WriteBars(ctx, bars); err != nil {
			// Cache write failures degrade, they don't abort a translation.
			s.log.Warn("writing bar cache failed", "err", err)
		}
	}

	return prices.PanelFromBars(s.securities, bars)
}

// fetchWindow bounds the bar request at the latest finished trading session,
// so signals never size off a partial bar. When the calendar is unreachable
// the wall clock is the fallback bound.
func (s *PanelSource) fetchWindow() gather.DateRange {
	end := time.Now().UTC()
	if day, err := LatestFinishedTradingDay(s.cfg); err == nil {
		end = day.Add(24 * time.Hour)
	} else {
		s.log.Warn("falling back to wall clock for session end", "err", err)
	}
	return gather.DateRange{Start: end.AddDate(0, 0, -s.lookback), End: end}
}

// ---------------------------------------------------------------------------
// BalanceSource — account snapshots from the Alpaca trading API.
// ---------------------------------------------------------------------------

// BalanceSource fetches the authenticated account's balance snapshot.
type BalanceSource struct {
	client *alpaca.Client
	log    *slog.Logger
}

// NewBalanceSource creates a BalanceSource with the given credentials.
func NewBalanceSource(cfg ClientConfig) *BalanceSource {
	return &BalanceSource{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.BaseURL,
		}),
		log: slog.Default().With("source", "us-balance"),
	}
}

// Balances returns the authenticated account keyed by its account number.
func (s *BalanceSource) Balances(ctx context.Context) (map[string]domain.Account, error) {
	var account *alpaca.Account
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		account, err = s.client.GetAccount()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}

	out := map[string]domain.Account{
		account.AccountNumber: {
			ID:             account.AccountNumber,
			NetLiquidation: account.Equity.InexactFloat64(),
			Currency:       account.Currency,
		},
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// PositionSource — open positions from the Alpaca trading API.
// ---------------------------------------------------------------------------

// PositionSource fetches the authenticated account's open positions, mapped
// back onto the configured security universe. Positions in symbols outside
// the universe are dropped; the engine cannot size what it has no reference
// data for.
type PositionSource struct {
	client     *alpaca.Client
	account    string
	securities []domain.Security
	log        *slog.Logger
}

// NewPositionSource creates a PositionSource for the given account code and
// universe.
func NewPositionSource(cfg ClientConfig, account string, securities []domain.Security) *PositionSource {
	return &PositionSource{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.BaseURL,
		}),
		account:    account,
		securities: securities,
		log:        slog.Default().With("source", "us-positions"),
	}
}

// Positions returns current open positions within the configured universe.
func (s *PositionSource) Positions(ctx context.Context) ([]domain.Position, error) {
	var alpacaPositions []alpaca.Position
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		alpacaPositions, err = s.client.GetPositions()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetPositions: %w", err)
	}

	conIDs := make(map[string]int64, len(s.securities))
	for _, sec := range s.securities {
		conIDs[strings.ToUpper(sec.Symbol)] = sec.ConID
	}

	var out []domain.Position
	for _, p := range alpacaPositions {
		conID, ok := conIDs[strings.ToUpper(p.Symbol)]
		if !ok {
			s.log.Warn("position outside universe, ignoring", "symbol", p.Symbol)
			continue
		}
		out = append(out, domain.Position{
			Account:  s.account,
			ConID:    conID,
			Quantity: p.Qty.IntPart(),
		})
	}
	return out, nil
}
