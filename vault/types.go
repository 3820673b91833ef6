package vault

import (
	"math/big"

	"stablevault/crypto"
)

// Position maintains the accounting state for an individual account:
// deposited collateral per asset symbol plus the outstanding minted debt.
// Amounts use the internal 18-decimal scale and never go negative.
type Position struct {
	// Address is the account the position belongs to.
	Address crypto.Address
	// Collateral maps asset symbols to deposited amounts.
	Collateral map[string]*big.Int
	// Debt is the outstanding minted debt unit balance.
	Debt *big.Int
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := &Position{Address: p.Address, Collateral: make(map[string]*big.Int, len(p.Collateral))}
	for sym, amount := range p.Collateral {
		if amount != nil {
			clone.Collateral[sym] = new(big.Int).Set(amount)
		}
	}
	if p.Debt != nil {
		clone.Debt = new(big.Int).Set(p.Debt)
	}
	return clone
}

// CollateralBalance returns the deposited amount for the asset, zero when the
// account never touched it.
func (p *Position) CollateralBalance(asset string) *big.Int {
	if p == nil || p.Collateral == nil {
		return big.NewInt(0)
	}
	amount, ok := p.Collateral[normaliseSymbol(asset)]
	if !ok || amount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(amount)
}

func (p *Position) ensureDefaults() {
	if p.Collateral == nil {
		p.Collateral = make(map[string]*big.Int)
	}
	if p.Debt == nil {
		p.Debt = big.NewInt(0)
	}
}

// RiskParameters groups the solvency tunables applied to every operation.
type RiskParameters struct {
	// LiquidationThresholdPct is the percentage of raw collateral value
	// counted toward solvency.
	LiquidationThresholdPct uint64
	// LiquidationBonusPct is the extra percentage of seized collateral awarded
	// to liquidators.
	LiquidationBonusPct uint64
	// MinHealthFactor is the solvency floor at the internal scale.
	MinHealthFactor *big.Int
}

// Normalise applies the default parameters for any zero-valued field.
func (p RiskParameters) Normalise() RiskParameters {
	out := RiskParameters{
		LiquidationThresholdPct: p.LiquidationThresholdPct,
		LiquidationBonusPct:     p.LiquidationBonusPct,
	}
	if out.LiquidationThresholdPct == 0 {
		out.LiquidationThresholdPct = 50
	}
	if out.LiquidationBonusPct == 0 {
		out.LiquidationBonusPct = 10
	}
	if p.MinHealthFactor != nil && p.MinHealthFactor.Sign() > 0 {
		out.MinHealthFactor = new(big.Int).Set(p.MinHealthFactor)
	} else {
		out.MinHealthFactor = new(big.Int).Set(precision)
	}
	return out
}

// Clone returns a deep copy of the parameters.
func (p RiskParameters) Clone() RiskParameters {
	clone := RiskParameters{
		LiquidationThresholdPct: p.LiquidationThresholdPct,
		LiquidationBonusPct:     p.LiquidationBonusPct,
	}
	if p.MinHealthFactor != nil {
		clone.MinHealthFactor = new(big.Int).Set(p.MinHealthFactor)
	}
	return clone
}
