package vault

import (
	"math/big"

	"stablevault/core/types"
)

const (
	// EventTypeCollateralDeposited is emitted when collateral enters a position.
	EventTypeCollateralDeposited = "vault.collateral.deposited"
	// EventTypeCollateralRedeemed is emitted when collateral leaves a position.
	EventTypeCollateralRedeemed = "vault.collateral.redeemed"
)

// CollateralDepositedEvent returns the structured payload for a deposit.
func CollateralDepositedEvent(account, asset string, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeCollateralDeposited,
		Attributes: map[string]string{
			"account": account,
			"asset":   asset,
			"amount":  amountString(amount),
		},
	}
}

// CollateralRedeemedEvent returns the structured payload for a withdrawal,
// carrying both the debited position and the recipient.
func CollateralRedeemedEvent(from, to, asset string, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeCollateralRedeemed,
		Attributes: map[string]string{
			"from":   from,
			"to":     to,
			"asset":  asset,
			"amount": amountString(amount),
		},
	}
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
