package vault

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrNilState                = errors.New("vault engine: state not configured")
	ErrNilCollaborator         = errors.New("vault engine: collaborators not configured")
	ErrInvalidAmount           = errors.New("vault engine: amount must be positive")
	ErrAssetNotAllowed         = errors.New("vault engine: collateral asset not allowed")
	ErrInsufficientCollateral  = errors.New("vault engine: insufficient collateral")
	ErrInsufficientDebt        = errors.New("vault engine: burn exceeds outstanding debt")
	ErrTransferFailed          = errors.New("vault engine: collateral transfer failed")
	ErrMintFailed              = errors.New("vault engine: debt token mint failed")
	ErrBurnPullFailed          = errors.New("vault engine: debt token pull for burn failed")
	ErrBurnFailed              = errors.New("vault engine: debt token burn failed")
	ErrHealthFactorOk          = errors.New("vault engine: target not eligible for liquidation")
	ErrHealthFactorNotImproved = errors.New("vault engine: liquidation did not improve health factor")
	ErrReentrantCall           = errors.New("vault engine: mutating operation already in progress")

	ErrLengthMismatch = errors.New("vault registry: asset and feed lists differ in length")
	ErrUnknownAsset   = errors.New("vault registry: unknown collateral asset")

	ErrOracleStale       = errors.New("vault oracle: price reading too old")
	ErrOracleUnavailable = errors.New("vault oracle: price source unavailable")
)

// BreaksHealthFactorError reports a solvency check failure together with the
// computed ratio so callers can diagnose how far below the minimum the
// position landed.
type BreaksHealthFactorError struct {
	HealthFactor *big.Int
}

func (e *BreaksHealthFactorError) Error() string {
	if e == nil || e.HealthFactor == nil {
		return "vault engine: operation breaks health factor"
	}
	return fmt.Sprintf("vault engine: operation breaks health factor (%s)", e.HealthFactor.String())
}
