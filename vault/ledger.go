package vault

import (
	"math/big"

	"stablevault/core/types"
	"stablevault/crypto"
)

// LedgerState is the persistence boundary for account positions. The engine
// loads a position, applies every mutation and invariant check in memory and
// only then commits with PutPosition, so a failed operation leaves the store
// untouched.
type LedgerState interface {
	// GetPosition returns the stored position, or nil when the account has no
	// entry yet. Implementations must return an independent copy; the engine
	// mutates the returned value before deciding whether to commit.
	GetPosition(addr crypto.Address) (*Position, error)
	// PutPosition commits the position for the account.
	PutPosition(addr crypto.Address, pos *Position) error
	// AppendEvent records an observability event for a committed mutation.
	AppendEvent(evt *types.Event)
}

// The primitive ledger mutations below operate on an in-memory position and
// enforce the explicit guards the engine's invariants depend on. They never
// touch the state store themselves.

func depositCollateral(pos *Position, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pos.ensureDefaults()
	current := pos.Collateral[asset]
	if current == nil {
		current = big.NewInt(0)
	}
	pos.Collateral[asset] = new(big.Int).Add(current, amount)
	return nil
}

func withdrawCollateral(pos *Position, asset string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pos.ensureDefaults()
	current := pos.Collateral[asset]
	if current == nil || current.Cmp(amount) < 0 {
		return ErrInsufficientCollateral
	}
	pos.Collateral[asset] = new(big.Int).Sub(current, amount)
	return nil
}

func recordMint(pos *Position, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pos.ensureDefaults()
	pos.Debt = new(big.Int).Add(pos.Debt, amount)
	return nil
}

func recordBurn(pos *Position, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pos.ensureDefaults()
	if pos.Debt.Cmp(amount) < 0 {
		return ErrInsufficientDebt
	}
	pos.Debt = new(big.Int).Sub(pos.Debt, amount)
	return nil
}
