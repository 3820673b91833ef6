package vault

import (
	"errors"
	"math/big"
	"testing"

	"stablevault/crypto"
)

// adversarialBank calls back into the engine from inside TransferIn, the way a
// compromised custody service could.
type adversarialBank struct {
	engine    *Engine
	account   crypto.Address
	propagate bool
	innerErr  error
}

func (b *adversarialBank) TransferIn(_ string, _ crypto.Address, _ *big.Int) error {
	b.innerErr = b.engine.Deposit(b.account, wethSym, units(1))
	if b.propagate {
		return b.innerErr
	}
	return nil
}

func (b *adversarialBank) TransferOut(_ string, _ crypto.Address, _ *big.Int) error {
	return nil
}

func TestNestedMutationIsRejected(t *testing.T) {
	fix := newFixture(t)
	account := makeAddress(0x30)
	bank := &adversarialBank{engine: fix.engine, account: account}
	fix.engine.SetCollaborators(fix.token, bank)

	if err := fix.engine.Deposit(account, wethSym, units(5)); err != nil {
		t.Fatalf("outer deposit: %v", err)
	}
	if !errors.Is(bank.innerErr, ErrReentrantCall) {
		t.Fatalf("expected ErrReentrantCall from nested deposit, got %v", bank.innerErr)
	}
	// Only the outer deposit's effect lands.
	pos := fix.state.positions[fix.state.key(account)]
	if pos.CollateralBalance(wethSym).Cmp(units(5)) != 0 {
		t.Fatalf("unexpected collateral after nested call: %s", pos.CollateralBalance(wethSym))
	}
}

func TestNestedMutationFailureRollsBackOuterCall(t *testing.T) {
	fix := newFixture(t)
	account := makeAddress(0x31)
	bank := &adversarialBank{engine: fix.engine, account: account, propagate: true}
	fix.engine.SetCollaborators(fix.token, bank)

	if err := fix.engine.Deposit(account, wethSym, units(5)); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
	if !errors.Is(bank.innerErr, ErrReentrantCall) {
		t.Fatalf("expected ErrReentrantCall from nested deposit, got %v", bank.innerErr)
	}
	if len(fix.state.positions) != 0 || len(fix.state.events) != 0 {
		t.Fatalf("state persisted despite propagated reentrancy failure")
	}
}
