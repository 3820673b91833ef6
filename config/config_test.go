package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaultd.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.ListenAddress != "127.0.0.1:8645" {
		t.Fatalf("unexpected listen address: %s", cfg.ListenAddress)
	}
	if len(cfg.Collateral) != 2 {
		t.Fatalf("expected two default collateral assets, got %d", len(cfg.Collateral))
	}
	if cfg.Vault.LiquidationThresholdPct != 50 || cfg.Vault.LiquidationBonusPct != 10 {
		t.Fatalf("unexpected vault defaults: %+v", cfg.Vault)
	}

	// A second load reads the file back rather than recreating it.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.ListenAddress != cfg.ListenAddress {
		t.Fatalf("reload mismatch: %s != %s", again.ListenAddress, cfg.ListenAddress)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaultd.toml")
	content := `
ListenAddress = "0.0.0.0:9000"

[[collateral]]
Symbol = "WETH"
FeedPrice = "200000000000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != "0.0.0.0:9000" {
		t.Fatalf("explicit listen address lost: %s", cfg.ListenAddress)
	}
	if cfg.MetricsAddress != "127.0.0.1:9464" || cfg.DataDir != "./vaultdata" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Vault.OracleMaxAgeSeconds != 10800 {
		t.Fatalf("oracle staleness default not applied: %d", cfg.Vault.OracleMaxAgeSeconds)
	}
}

func TestLoadRejectsMissingCollateral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaultd.toml")
	if err := os.WriteFile(path, []byte(`ListenAddress = "127.0.0.1:8645"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "collateral") {
		t.Fatalf("expected collateral validation error, got %v", err)
	}
}

func TestLoadRejectsDuplicateSymbols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaultd.toml")
	content := `
[[collateral]]
Symbol = "WETH"
FeedPrice = "200000000000"

[[collateral]]
Symbol = "weth"
FeedPrice = "100000000000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate symbol error, got %v", err)
	}
}

func TestLoadRejectsThresholdAbove100(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaultd.toml")
	content := `
[vault]
LiquidationThresholdPct = 150

[[collateral]]
Symbol = "WETH"
FeedPrice = "200000000000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "threshold") {
		t.Fatalf("expected threshold validation error, got %v", err)
	}
}
