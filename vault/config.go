package vault

import "time"

// Config captures the runtime configuration for the vault engine.
type Config struct {
	LiquidationThresholdPct uint64 `toml:"LiquidationThresholdPct"`
	LiquidationBonusPct     uint64 `toml:"LiquidationBonusPct"`
	OracleMaxAgeSeconds     int64  `toml:"OracleMaxAgeSeconds"`
}

// Normalise applies defaults for any unset field.
func (c Config) Normalise() Config {
	cfg := c
	if cfg.LiquidationThresholdPct == 0 {
		cfg.LiquidationThresholdPct = 50
	}
	if cfg.LiquidationBonusPct == 0 {
		cfg.LiquidationBonusPct = 10
	}
	if cfg.OracleMaxAgeSeconds <= 0 {
		cfg.OracleMaxAgeSeconds = 10800
	}
	return cfg
}

// OracleMaxAge returns the configured staleness bound as a duration.
func (c Config) OracleMaxAge() time.Duration {
	return time.Duration(c.OracleMaxAgeSeconds) * time.Second
}

// RiskParameters converts the configuration into engine risk parameters.
func (c Config) RiskParameters() RiskParameters {
	return RiskParameters{
		LiquidationThresholdPct: c.LiquidationThresholdPct,
		LiquidationBonusPct:     c.LiquidationBonusPct,
	}.Normalise()
}
