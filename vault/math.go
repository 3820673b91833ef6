package vault

import "math/big"

var (
	// precision is the shared 18-decimal fixed point scale for debt and USD
	// value quantities.
	precision = mustBigInt("1000000000000000000")
	// additionalFeedPrecision lifts 8-decimal feed readings to the internal
	// 18-decimal scale.
	additionalFeedPrecision = mustBigInt("10000000000")
	percentDivisor          = big.NewInt(100)
	// maxHealthFactor is 2^256-1, the ceiling of the fixed point universe the
	// engine's quantities live in. Returned for debt-free accounts.
	maxHealthFactor = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

func mustBigInt(value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("invalid big integer constant")
	}
	return v
}

// Precision returns the internal fixed point scale (1e18).
func Precision() *big.Int { return new(big.Int).Set(precision) }

// FeedPrecisionMultiplier returns the constant applied to feed-native readings
// before they enter any valuation (1e10).
func FeedPrecisionMultiplier() *big.Int { return new(big.Int).Set(additionalFeedPrecision) }

// MaxHealthFactor returns the value reported for accounts with no debt.
func MaxHealthFactor() *big.Int { return new(big.Int).Set(maxHealthFactor) }

// mulDiv computes a*b/div with truncating integer division. The rounding
// direction is part of the solvency contract and must stay floor.
func mulDiv(a, b, div *big.Int) *big.Int {
	if a == nil || b == nil || div == nil || div.Sign() == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, div)
}
