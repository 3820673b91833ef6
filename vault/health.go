package vault

import "math/big"

// HealthFactor maps outstanding debt and threshold-adjusted collateral value
// to a solvency ratio at the internal scale. Debt-free accounts are
// unconditionally healthy and report the maximum representable value.
//
// adjusted = collateralUsd * thresholdPct / 100
// result   = adjusted * 1e18 / debt
//
// Both divisions truncate. The function is pure; the engine uses it for
// gating and exposes it so external tooling can simulate outcomes before
// submitting a mutation.
func HealthFactor(debt, collateralUsd *big.Int, thresholdPct uint64) *big.Int {
	if debt == nil || debt.Sign() == 0 {
		return new(big.Int).Set(maxHealthFactor)
	}
	if collateralUsd == nil || collateralUsd.Sign() <= 0 {
		return big.NewInt(0)
	}
	adjusted := mulDiv(collateralUsd, new(big.Int).SetUint64(thresholdPct), percentDivisor)
	return mulDiv(adjusted, precision, debt)
}
