package vault

import (
	"math/big"
	"testing"
)

func TestHealthFactorDebtFreeIsMax(t *testing.T) {
	hf := HealthFactor(big.NewInt(0), units(1_000), 50)
	if hf.Cmp(MaxHealthFactor()) != 0 {
		t.Fatalf("expected max health factor, got %s", hf)
	}
	if hf := HealthFactor(nil, units(1_000), 50); hf.Cmp(MaxHealthFactor()) != 0 {
		t.Fatalf("expected max health factor for nil debt, got %s", hf)
	}
}

func TestHealthFactorNoCollateralIsZero(t *testing.T) {
	if hf := HealthFactor(units(100), big.NewInt(0), 50); hf.Sign() != 0 {
		t.Fatalf("expected zero health factor, got %s", hf)
	}
}

func TestHealthFactorKnownRatio(t *testing.T) {
	// $20,000 collateral, 50% threshold, 100 units of debt: ratio 100.0.
	hf := HealthFactor(units(100), units(20_000), 50)
	if hf.Cmp(units(100)) != 0 {
		t.Fatalf("unexpected health factor: got %s want %s", hf, units(100))
	}
}

func TestHealthFactorFloorsDivision(t *testing.T) {
	// $20,000 adjusted to $10,000 against 11,000 of debt: 10/11 truncated.
	hf := HealthFactor(units(11_000), units(20_000), 50)
	want, _ := new(big.Int).SetString("909090909090909090", 10)
	if hf.Cmp(want) != 0 {
		t.Fatalf("unexpected health factor: got %s want %s", hf, want)
	}
}

func TestHealthFactorDoesNotMutateInputs(t *testing.T) {
	debt := units(100)
	value := units(20_000)
	HealthFactor(debt, value, 50)
	if debt.Cmp(units(100)) != 0 || value.Cmp(units(20_000)) != 0 {
		t.Fatalf("inputs mutated: debt=%s value=%s", debt, value)
	}
}
