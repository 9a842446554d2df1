// Command tradewind-trader runs one translation cycle: it fetches prices,
// balances and positions, translates the configured strategy's target
// weights into an order batch, journals the batch, and submits it.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tradewind/internal/broker"
	"tradewind/internal/config"
	"tradewind/internal/domain"
	"tradewind/internal/engine"
	"tradewind/internal/gather"
	"tradewind/internal/gather/us"
	"tradewind/internal/prices"
	"tradewind/internal/store"
	"tradewind/internal/strategy"
	"tradewind/internal/strategy/builtins"
	"tradewind/internal/util"
)

func main() {
	cfgPath := flag.String("config", "config/tradewind.yaml", "path to YAML config")
	dryRun := flag.Bool("dry-run", false, "translate and journal but do not submit")
	flag.Parse()

	if p := os.Getenv("TRADEWIND_CONFIG"); p != "" && !flagSet("config") {
		*cfgPath = p
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	if err := run(context.Background(), cfg, *dryRun); err != nil {
		logger.Error("translation cycle failed", "err", err)
		os.Exit(1)
	}
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func run(ctx context.Context, cfg *config.Config, dryRun bool) error {
	registry := strategy.NewRegistry()
	registry.Register(builtins.NewThresholdLongShort("demo", 10, 0.25, "MOC"))
	registry.Register(builtins.NewSMACross("sma-5-20", 5, 20, 0.25))

	strat, ok := registry.Get(cfg.Trading.Strategy)
	if !ok {
		return fmt.Errorf("unknown strategy %q (have %v)", cfg.Trading.Strategy, registry.List())
	}

	securities := cfg.SecurityMaster()
	cache := store.NewParquetStore(cfg.Storage.DataDir)

	clientCfg := us.ClientConfig{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		BaseURL:   cfg.Alpaca.BaseURL,
		DataURL:   cfg.Alpaca.DataURL,
	}

	// Without credentials a paper run sizes off previously cached bars.
	var priceSource gather.PriceSource
	if cfg.Trading.PaperMode && cfg.Alpaca.APIKey == "" {
		end := time.Now().UTC()
		priceSource = &gather.CachedPrices{
			Store:      cache,
			Securities: securities,
			Window: gather.DateRange{
				Start: end.AddDate(0, 0, -cfg.Trading.LookbackDays),
				End:   end,
			},
		}
	} else {
		priceSource = us.NewPanelSource(clientCfg, securities, cfg.Trading.LookbackDays, cache)
	}
	rateSource := &gather.StaticRates{ExchangeRates: cfg.PaperRates()}

	var (
		balanceSource  gather.BalanceSource
		positionSource gather.PositionSource
	)
	if cfg.Trading.PaperMode {
		var accounts []domain.Account
		for _, acct := range cfg.PaperAccounts() {
			accounts = append(accounts, acct)
		}
		balanceSource = &gather.StaticBalances{Accounts: accounts}
		positionSource = &gather.StaticPositions{}
	} else {
		balanceSource = us.NewBalanceSource(clientCfg)
		account := firstAccount(cfg.Trading.Allocations)
		positionSource = us.NewPositionSource(clientCfg, account, securities)
	}

	translator := engine.NewTranslator(priceSource, balanceSource, rateSource, positionSource, nil)
	result, err := translator.Translate(ctx, strat, cfg.Trading.Allocations)
	if err != nil {
		return err
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintf(os.Stderr, "account %s skipped: %v\n", skipped.Account, skipped.Err)
	}
	if result.Batch.Len() == 0 {
		fmt.Println("no orders to place")
		return nil
	}

	journal, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening order journal: %w", err)
	}
	defer journal.Close()

	batchID := uuid.NewString()
	if err := journal.SaveBatch(ctx, batchID, strat.Code(), result.Batch.Rows()); err != nil {
		return fmt.Errorf("journaling batch: %w", err)
	}

	if err := writeCSV(os.Stdout, result.Batch.Rows()); err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(os.Stderr, "dry run: batch %s journaled, not submitted\n", batchID)
		return nil
	}

	submitter, err := chooseSubmitter(cfg, securities)
	if err != nil {
		return err
	}
	subs, err := submitter.SubmitBatch(ctx, result.Batch)
	if err != nil {
		return fmt.Errorf("submitting batch %s via %s: %w", batchID, submitter.Name(), err)
	}
	fmt.Fprintf(os.Stderr, "batch %s: %d orders submitted via %s\n", batchID, len(subs), submitter.Name())
	return nil
}

func firstAccount(allocations map[string]float64) string {
	for account := range allocations {
		return account
	}
	return ""
}

func chooseSubmitter(cfg *config.Config, securities []domain.Security) (broker.Submitter, error) {
	if cfg.Trading.PaperMode {
		return broker.NewSimulatorSubmitter(), nil
	}
	refs, err := prices.ResolveRefs(securities)
	if err != nil {
		return nil, err
	}
	return broker.NewAlpacaSubmitter(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL, refs), nil
}

func writeCSV(w *os.File, rows []domain.Order) error {
	cw := csv.NewWriter(w)
	header := []string{"ConId", "Account", "Action", "TotalQuantity", "OrderRef", "Exchange", "OrderType", "Tif", "OrderId", "ParentId", "LmtPrice"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ConID, 10),
			row.Account,
			string(row.Action),
			strconv.FormatInt(row.TotalQuantity, 10),
			row.OrderRef,
			row.Exchange,
			row.OrderType,
			row.Tif,
			formatID(row.OrderID),
			formatID(row.ParentID),
			formatPrice(row.LmtPrice),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func formatPrice(p float64) string {
	if p == 0 {
		return ""
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}
