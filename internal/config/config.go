package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tradewind/internal/domain"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the tradewind engine.
type Config struct {
	Storage    Storage          `yaml:"storage"`
	Alpaca     Alpaca           `yaml:"alpaca"`
	Logging    Logging          `yaml:"logging"`
	Trading    TradingConfig    `yaml:"trading"`
	Securities []SecurityConfig `yaml:"securities"`
	Paper      PaperConfig      `yaml:"paper"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Alpaca holds credentials and endpoints for the Alpaca broker API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TradingConfig defines which strategy runs and how capital is allocated to
// it per account.
type TradingConfig struct {
	Strategy string `yaml:"strategy"`

	// Allocations maps account codes to the fraction of net liquidation
	// allocated to the strategy, e.g. {"U12345": 0.5}.
	Allocations map[string]float64 `yaml:"allocations"`

	// LookbackDays controls how much price history is fetched for signal
	// generation.
	LookbackDays int `yaml:"lookback_days"`

	PaperMode bool `yaml:"paper_mode"`
}

// SecurityConfig is one row of the security master: the reference data the
// engine needs to size and route orders for one instrument.
type SecurityConfig struct {
	ConID          int64    `yaml:"con_id"`
	Symbol         string   `yaml:"symbol"`
	Currency       string   `yaml:"currency"`
	SecType        string   `yaml:"sec_type"`
	Timezone       string   `yaml:"timezone"`
	PriceMagnifier *float64 `yaml:"price_magnifier"`
	Multiplier     *float64 `yaml:"multiplier"`
}

// PaperConfig supplies the account balances and exchange rates used in paper
// mode, where no broker connection exists to fetch them from.
type PaperConfig struct {
	Accounts []PaperAccount `yaml:"accounts"`
	Rates    []PaperRate    `yaml:"rates"`
}

// PaperAccount is a fixture account balance.
type PaperAccount struct {
	ID             string  `yaml:"id"`
	NetLiquidation float64 `yaml:"net_liquidation"`
	Currency       string  `yaml:"currency"`
}

// PaperRate is a fixture exchange rate quoting one base currency in a quote
// currency.
type PaperRate struct {
	Base  string  `yaml:"base"`
	Quote string  `yaml:"quote"`
	Rate  float64 `yaml:"rate"`
}

// ---------------------------------------------------------------------------
// Derived views
// ---------------------------------------------------------------------------

// SecurityMaster converts the configured securities into domain rows.
func (c *Config) SecurityMaster() []domain.Security {
	out := make([]domain.Security, 0, len(c.Securities))
	for _, sc := range c.Securities {
		out = append(out, domain.Security{
			ConID:          sc.ConID,
			Symbol:         sc.Symbol,
			Currency:       sc.Currency,
			SecType:        sc.SecType,
			Timezone:       sc.Timezone,
			PriceMagnifier: sc.PriceMagnifier,
			Multiplier:     sc.Multiplier,
		})
	}
	return out
}

// PaperAccounts converts the paper fixture accounts into domain rows keyed
// by account code.
func (c *Config) PaperAccounts() map[string]domain.Account {
	out := make(map[string]domain.Account, len(c.Paper.Accounts))
	for _, a := range c.Paper.Accounts {
		out[a.ID] = domain.Account{
			ID:             a.ID,
			NetLiquidation: a.NetLiquidation,
			Currency:       a.Currency,
		}
	}
	return out
}

// PaperRates converts the paper fixture rates into domain rows.
func (c *Config) PaperRates() []domain.ExchangeRate {
	out := make([]domain.ExchangeRate, 0, len(c.Paper.Rates))
	for _, r := range c.Paper.Rates {
		out = append(out, domain.ExchangeRate{Base: r.Base, Quote: r.Quote, Rate: r.Rate})
	}
	return out
}

// Validate checks the parts of the configuration the engine cannot run
// without.
func (c *Config) Validate() error {
	if c.Trading.Strategy == "" {
		return fmt.Errorf("trading.strategy is required")
	}
	if len(c.Trading.Allocations) == 0 {
		return fmt.Errorf("trading.allocations must name at least one account")
	}
	for account, fraction := range c.Trading.Allocations {
		if fraction <= 0 || fraction > 1 {
			return fmt.Errorf("trading.allocations[%s]: fraction %v outside (0, 1]", account, fraction)
		}
	}
	if len(c.Securities) == 0 {
		return fmt.Errorf("securities must name at least one instrument")
	}
	seen := make(map[int64]bool, len(c.Securities))
	for _, sc := range c.Securities {
		if sc.ConID <= 0 {
			return fmt.Errorf("securities: %q has invalid con_id %d", sc.Symbol, sc.ConID)
		}
		if sc.Symbol == "" {
			return fmt.Errorf("securities: con_id %d has no symbol", sc.ConID)
		}
		if seen[sc.ConID] {
			return fmt.Errorf("securities: duplicate con_id %d", sc.ConID)
		}
		seen[sc.ConID] = true
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "tradewind.db"
	}
	if cfg.Trading.LookbackDays <= 0 {
		cfg.Trading.LookbackDays = 30
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}

	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}

	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}

	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (canonical names used by the SDK) win over
	// everything else.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
