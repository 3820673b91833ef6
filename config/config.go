package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stablevault/vault"

	"github.com/BurntSushi/toml"
)

// CollateralAsset declares one approved collateral type together with the
// seed reading for its manual price feed, expressed at the feed-native
// 8-decimal scale.
type CollateralAsset struct {
	Symbol    string `toml:"Symbol"`
	FeedPrice string `toml:"FeedPrice"`
}

// Config is the daemon configuration.
type Config struct {
	ListenAddress  string            `toml:"ListenAddress"`
	MetricsAddress string            `toml:"MetricsAddress"`
	DataDir        string            `toml:"DataDir"`
	Vault          vault.Config      `toml:"vault"`
	Collateral     []CollateralAsset `toml:"collateral"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := validate(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = "127.0.0.1:9464"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./vaultdata"
	}
	cfg.Vault = cfg.Vault.Normalise()
}

func validate(path string, cfg *Config) error {
	if len(cfg.Collateral) == 0 {
		return fmt.Errorf("config %s: at least one collateral asset required", path)
	}
	seen := make(map[string]struct{}, len(cfg.Collateral))
	for i, asset := range cfg.Collateral {
		sym := strings.ToUpper(strings.TrimSpace(asset.Symbol))
		if sym == "" {
			return fmt.Errorf("config %s: collateral entry %d missing symbol", path, i)
		}
		if _, dup := seen[sym]; dup {
			return fmt.Errorf("config %s: duplicate collateral symbol %s", path, sym)
		}
		seen[sym] = struct{}{}
		if strings.TrimSpace(asset.FeedPrice) == "" {
			return fmt.Errorf("config %s: collateral %s missing feed price", path, sym)
		}
	}
	if cfg.Vault.LiquidationThresholdPct > 100 {
		return fmt.Errorf("config %s: liquidation threshold exceeds 100%%", path)
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		Collateral: []CollateralAsset{
			{Symbol: "WETH", FeedPrice: "200000000000"},
			{Symbol: "WBTC", FeedPrice: "3000000000000"},
		},
	}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
