package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
storage:
  data_dir: "/tmp/tradewind/data"
  sqlite_path: "/tmp/tradewind/tradewind.db"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  base_url: "https://paper-api.alpaca.markets"
  data_url: "https://data.alpaca.markets"
logging:
  level: "info"
  format: "json"
trading:
  strategy: "demo"
  lookback_days: 20
  paper_mode: true
  allocations:
    U12345: 0.5
securities:
  - con_id: 12345
    symbol: "ABC"
    currency: "USD"
    sec_type: "STK"
    timezone: "America/New_York"
  - con_id: 23456
    symbol: "DEF"
    currency: "USD"
    sec_type: "FUT"
    timezone: "America/New_York"
    price_magnifier: 100
    multiplier: 5
paper:
  accounts:
    - id: "U12345"
      net_liquidation: 85000
      currency: "USD"
  rates:
    - base: "GBP"
      quote: "USD"
      rate: 1.25
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_BASE_URL", "ALPACA_DATA_URL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY", "DATA_DIR", "SQLITE_PATH", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/tmp/tradewind/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/tradewind/data")
	}
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
	if cfg.Trading.Strategy != "demo" {
		t.Errorf("Trading.Strategy = %q, want %q", cfg.Trading.Strategy, "demo")
	}
	if got := cfg.Trading.Allocations["U12345"]; got != 0.5 {
		t.Errorf("Trading.Allocations[U12345] = %v, want 0.5", got)
	}
	if !cfg.Trading.PaperMode {
		t.Error("Trading.PaperMode = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() returned error: %v", err)
	}
}

func TestSecurityMaster(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	master := cfg.SecurityMaster()
	if len(master) != 2 {
		t.Fatalf("got %d securities, want 2", len(master))
	}

	stk := master[0]
	if stk.ConID != 12345 || stk.Symbol != "ABC" {
		t.Errorf("unexpected first security %+v", stk)
	}
	if stk.PriceMagnifier != nil || stk.Multiplier != nil {
		t.Error("stock should leave magnifier and multiplier unset")
	}

	fut := master[1]
	if fut.PriceMagnifier == nil || *fut.PriceMagnifier != 100 {
		t.Errorf("future magnifier = %v, want 100", fut.PriceMagnifier)
	}
	if fut.Multiplier == nil || *fut.Multiplier != 5 {
		t.Errorf("future multiplier = %v, want 5", fut.Multiplier)
	}
}

func TestPaperFixtures(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	accounts := cfg.PaperAccounts()
	acct, ok := accounts["U12345"]
	if !ok {
		t.Fatal("paper account U12345 missing")
	}
	if acct.NetLiquidation != 85000 || acct.Currency != "USD" {
		t.Errorf("unexpected paper account %+v", acct)
	}

	rates := cfg.PaperRates()
	if len(rates) != 1 || rates[0].Base != "GBP" || rates[0].Rate != 1.25 {
		t.Errorf("unexpected paper rates %+v", rates)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APCA_API_KEY_ID", "env-key")
	t.Setenv("APCA_API_SECRET_KEY", "env-secret")
	t.Setenv("DATA_DIR", "/alt/data")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want env override", cfg.Alpaca.APIKey)
	}
	if cfg.Alpaca.APISecret != "env-secret" {
		t.Errorf("Alpaca.APISecret = %q, want env override", cfg.Alpaca.APISecret)
	}
	if cfg.Storage.DataDir != "/alt/data" {
		t.Errorf("Storage.DataDir = %q, want env override", cfg.Storage.DataDir)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
	}{
		{"missing strategy", func(c *Config) { c.Trading.Strategy = "" }},
		{"no allocations", func(c *Config) { c.Trading.Allocations = nil }},
		{"allocation above one", func(c *Config) { c.Trading.Allocations["U12345"] = 1.5 }},
		{"no securities", func(c *Config) { c.Securities = nil }},
		{"duplicate con_id", func(c *Config) {
			c.Securities = append(c.Securities, c.Securities[0])
		}},
		{"zero con_id", func(c *Config) { c.Securities[0].ConID = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load(writeConfig(t, sampleYAML))
			if err != nil {
				t.Fatalf("Load() returned error: %v", err)
			}
			tc.edit(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted invalid config")
			}
		})
	}
}
