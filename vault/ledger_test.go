package vault

import (
	"errors"
	"math/big"
	"testing"
)

func TestDepositCollateralAccumulates(t *testing.T) {
	pos := &Position{Address: makeAddress(0x40)}

	if err := depositCollateral(pos, wethSym, units(3)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := depositCollateral(pos, wethSym, units(4)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if pos.CollateralBalance(wethSym).Cmp(units(7)) != 0 {
		t.Fatalf("unexpected balance: %s", pos.CollateralBalance(wethSym))
	}
}

func TestDepositCollateralRejectsNonPositive(t *testing.T) {
	pos := &Position{Address: makeAddress(0x41)}

	if err := depositCollateral(pos, wethSym, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if err := depositCollateral(pos, wethSym, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if err := depositCollateral(pos, wethSym, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for nil, got %v", err)
	}
}

func TestWithdrawCollateralGuardsBalance(t *testing.T) {
	pos := &Position{Address: makeAddress(0x42)}
	if err := depositCollateral(pos, wethSym, units(5)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if err := withdrawCollateral(pos, wethSym, units(6)); !errors.Is(err, ErrInsufficientCollateral) {
		t.Fatalf("expected ErrInsufficientCollateral, got %v", err)
	}
	if err := withdrawCollateral(pos, wbtcSym, units(1)); !errors.Is(err, ErrInsufficientCollateral) {
		t.Fatalf("expected ErrInsufficientCollateral for untouched asset, got %v", err)
	}
	if err := withdrawCollateral(pos, wethSym, units(5)); err != nil {
		t.Fatalf("full withdrawal: %v", err)
	}
	if pos.CollateralBalance(wethSym).Sign() != 0 {
		t.Fatalf("balance not drained: %s", pos.CollateralBalance(wethSym))
	}
}

func TestRecordBurnGuardsDebt(t *testing.T) {
	pos := &Position{Address: makeAddress(0x43)}
	if err := recordMint(pos, units(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := recordBurn(pos, units(11)); !errors.Is(err, ErrInsufficientDebt) {
		t.Fatalf("expected ErrInsufficientDebt, got %v", err)
	}
	if err := recordBurn(pos, units(10)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if pos.Debt.Sign() != 0 {
		t.Fatalf("debt not cleared: %s", pos.Debt)
	}
}

func TestPositionCloneIsIndependent(t *testing.T) {
	pos := &Position{
		Address:    makeAddress(0x44),
		Collateral: map[string]*big.Int{wethSym: units(5)},
		Debt:       units(2),
	}

	clone := pos.Clone()
	clone.Collateral[wethSym].SetInt64(0)
	clone.Debt.SetInt64(0)
	clone.Collateral[wbtcSym] = units(9)

	if pos.CollateralBalance(wethSym).Cmp(units(5)) != 0 {
		t.Fatalf("clone mutation leaked into collateral: %s", pos.CollateralBalance(wethSym))
	}
	if pos.Debt.Cmp(units(2)) != 0 {
		t.Fatalf("clone mutation leaked into debt: %s", pos.Debt)
	}
	if _, ok := pos.Collateral[wbtcSym]; ok {
		t.Fatalf("clone map addition leaked")
	}
}

func TestRiskParametersNormalise(t *testing.T) {
	params := RiskParameters{}.Normalise()
	if params.LiquidationThresholdPct != 50 || params.LiquidationBonusPct != 10 {
		t.Fatalf("unexpected defaults: %+v", params)
	}
	if params.MinHealthFactor.Cmp(Precision()) != 0 {
		t.Fatalf("unexpected default solvency floor: %s", params.MinHealthFactor)
	}

	custom := RiskParameters{
		LiquidationThresholdPct: 75,
		LiquidationBonusPct:     5,
		MinHealthFactor:         units(2),
	}.Normalise()
	if custom.LiquidationThresholdPct != 75 || custom.LiquidationBonusPct != 5 {
		t.Fatalf("explicit parameters overridden: %+v", custom)
	}
	if custom.MinHealthFactor.Cmp(units(2)) != 0 {
		t.Fatalf("explicit floor overridden: %s", custom.MinHealthFactor)
	}
}
