package vault

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"stablevault/common"
	"stablevault/crypto"
	"stablevault/observability"
)

const moduleName = "vault"

// DebtToken is the external service owning the minted debt unit's supply
// bookkeeping. A non-nil error means the request was refused.
type DebtToken interface {
	Mint(to crypto.Address, amount *big.Int) error
	PullForBurn(from crypto.Address, amount *big.Int) error
	Burn(amount *big.Int) error
}

// CollateralBank is the external service moving collateral assets in and out
// of engine custody.
type CollateralBank interface {
	TransferIn(asset string, from crypto.Address, amount *big.Int) error
	TransferOut(asset string, to crypto.Address, amount *big.Int) error
}

// Engine orchestrates deposits, minting, burning, redemption and liquidation
// against one shared ledger, gating every mutation behind the health factor
// invariant.
//
// Every mutating operation validates, applies its changes to an in-memory
// copy of the position, runs the invariant checks, only then invokes the
// external collaborators and finally commits through the state store. A
// failure at any point leaves the store untouched. Nested mutating calls
// (for example from a misbehaving collaborator) fail with ErrReentrantCall
// instead of observing intermediate state.
type Engine struct {
	mu       sync.Mutex
	state    LedgerState
	registry *Registry
	oracle   *OracleAdapter
	debt     DebtToken
	bank     CollateralBank
	params   RiskParameters
	pauses   common.PauseView
	metrics  *observability.EngineMetrics
}

// NewEngine constructs an engine bound to the approved collateral registry
// and oracle adapter. Zero-valued risk parameters fall back to the defaults.
func NewEngine(registry *Registry, oracle *OracleAdapter, params RiskParameters) *Engine {
	return &Engine{
		registry: registry,
		oracle:   oracle,
		params:   params.Normalise(),
		metrics:  observability.Engine(),
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state LedgerState) {
	if e == nil {
		return
	}
	e.state = state
}

// SetCollaborators wires the debt token and collateral transfer services.
func (e *Engine) SetCollaborators(debt DebtToken, bank CollateralBank) {
	if e == nil {
		return
	}
	e.debt = debt
	e.bank = bank
}

func (e *Engine) SetPauses(p common.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// begin runs the shared preamble for mutating operations and takes the
// non-reentrant lock. Callers must unlock when begin returns nil.
func (e *Engine) begin() error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if e.debt == nil || e.bank == nil {
		return ErrNilCollaborator
	}
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if !e.mu.TryLock() {
		return ErrReentrantCall
	}
	return nil
}

func (e *Engine) observe(operation string, start time.Time, err error) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(operation, start, err)
}

// Deposit locks collateral for the account. The ledger update only persists
// once the transfer collaborator confirms custody of the amount.
func (e *Engine) Deposit(account crypto.Address, asset string, amount *big.Int) (err error) {
	defer func(start time.Time) { e.observe("deposit", start, err) }(time.Now())
	if err = e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return e.deposit(account, asset, amount)
}

func (e *Engine) deposit(account crypto.Address, asset string, amount *big.Int) error {
	sym := normaliseSymbol(asset)
	if !e.registry.IsAllowed(sym) {
		return ErrAssetNotAllowed
	}
	pos, err := e.ensurePosition(account)
	if err != nil {
		return err
	}
	if err := depositCollateral(pos, sym, amount); err != nil {
		return err
	}
	if err := e.bank.TransferIn(sym, account, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.state.PutPosition(account, pos); err != nil {
		return err
	}
	e.state.AppendEvent(CollateralDepositedEvent(account.String(), sym, amount))
	return nil
}

// DepositAndMint performs a deposit followed by a mint as one atomic unit:
// if the mint step fails the deposit does not persist either.
func (e *Engine) DepositAndMint(account crypto.Address, asset string, collateralAmount, debtAmount *big.Int) (err error) {
	defer func(start time.Time) { e.observe("deposit_and_mint", start, err) }(time.Now())
	if err = e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	sym := normaliseSymbol(asset)
	if !e.registry.IsAllowed(sym) {
		return ErrAssetNotAllowed
	}
	pos, err := e.ensurePosition(account)
	if err != nil {
		return err
	}
	if err := depositCollateral(pos, sym, collateralAmount); err != nil {
		return err
	}
	if err := recordMint(pos, debtAmount); err != nil {
		return err
	}
	if err := e.checkHealth(pos); err != nil {
		return err
	}
	if err := e.bank.TransferIn(sym, account, collateralAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.debt.Mint(account, debtAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrMintFailed, err)
	}
	if err := e.state.PutPosition(account, pos); err != nil {
		return err
	}
	e.state.AppendEvent(CollateralDepositedEvent(account.String(), sym, collateralAmount))
	return nil
}

// Mint raises the account's debt, verifies the resulting health factor and
// requests the debt token collaborator mint the amount to the account.
func (e *Engine) Mint(account crypto.Address, amount *big.Int) (err error) {
	defer func(start time.Time) { e.observe("mint", start, err) }(time.Now())
	if err = e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	pos, err := e.ensurePosition(account)
	if err != nil {
		return err
	}
	if err := recordMint(pos, amount); err != nil {
		return err
	}
	if err := e.checkHealth(pos); err != nil {
		return err
	}
	if err := e.debt.Mint(account, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrMintFailed, err)
	}
	return e.state.PutPosition(account, pos)
}

// Burn pulls debt tokens from the caller into engine custody, destroys them
// and lowers the recorded debt. Burning can only improve solvency; the final
// health check is defensive and expected never to trigger.
func (e *Engine) Burn(account crypto.Address, amount *big.Int) (err error) {
	defer func(start time.Time) { e.observe("burn", start, err) }(time.Now())
	if err = e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	return e.burn(account, amount)
}

func (e *Engine) burn(account crypto.Address, amount *big.Int) error {
	pos, err := e.ensurePosition(account)
	if err != nil {
		return err
	}
	if err := recordBurn(pos, amount); err != nil {
		return err
	}
	if err := e.checkHealth(pos); err != nil {
		return err
	}
	if err := e.debt.PullForBurn(account, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrBurnPullFailed, err)
	}
	if err := e.debt.Burn(amount); err != nil {
		return fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	return e.state.PutPosition(account, pos)
}

// Redeem withdraws collateral from the account and transfers it to the
// recipient, rolling back when the remaining position would be insolvent.
func (e *Engine) Redeem(from, to crypto.Address, asset string, amount *big.Int) (err error) {
	defer func(start time.Time) { e.observe("redeem", start, err) }(time.Now())
	if err = e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	sym := normaliseSymbol(asset)
	pos, err := e.ensurePosition(from)
	if err != nil {
		return err
	}
	if err := withdrawCollateral(pos, sym, amount); err != nil {
		return err
	}
	if err := e.checkHealth(pos); err != nil {
		return err
	}
	if err := e.bank.TransferOut(sym, to, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.state.PutPosition(from, pos); err != nil {
		return err
	}
	e.state.AppendEvent(CollateralRedeemedEvent(from.String(), to.String(), sym, amount))
	return nil
}

// RedeemForDebt burns debt and withdraws collateral as one atomic unit,
// verified at the end.
func (e *Engine) RedeemForDebt(account crypto.Address, asset string, collateralAmount, debtAmount *big.Int) (err error) {
	defer func(start time.Time) { e.observe("redeem_for_debt", start, err) }(time.Now())
	if err = e.begin(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	sym := normaliseSymbol(asset)
	pos, err := e.ensurePosition(account)
	if err != nil {
		return err
	}
	if err := recordBurn(pos, debtAmount); err != nil {
		return err
	}
	if err := withdrawCollateral(pos, sym, collateralAmount); err != nil {
		return err
	}
	if err := e.checkHealth(pos); err != nil {
		return err
	}
	if err := e.debt.PullForBurn(account, debtAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrBurnPullFailed, err)
	}
	if err := e.debt.Burn(debtAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	if err := e.bank.TransferOut(sym, account, collateralAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.state.PutPosition(account, pos); err != nil {
		return err
	}
	e.state.AppendEvent(CollateralRedeemedEvent(account.String(), account.String(), sym, collateralAmount))
	return nil
}

// Liquidate lets a third party repay part of an undercollateralized target's
// debt in exchange for a bonus-weighted seizure of its collateral. The
// seized amount is returned. The target's health factor must strictly
// improve, and the liquidator's own position must stay solvent.
func (e *Engine) Liquidate(liquidator crypto.Address, asset string, target crypto.Address, debtToCover *big.Int) (seized *big.Int, err error) {
	defer func(start time.Time) { e.observe("liquidate", start, err) }(time.Now())
	if err = e.begin(); err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if debtToCover == nil || debtToCover.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sym := normaliseSymbol(asset)
	if !e.registry.IsAllowed(sym) {
		return nil, ErrAssetNotAllowed
	}

	targetPos, err := e.ensurePosition(target)
	if err != nil {
		return nil, err
	}
	startingHF, err := e.healthFactor(targetPos)
	if err != nil {
		return nil, err
	}
	if startingHF.Cmp(e.params.MinHealthFactor) >= 0 {
		return nil, ErrHealthFactorOk
	}

	equivalent, err := e.oracle.TokenAmountFromUsd(sym, debtToCover)
	if err != nil {
		return nil, err
	}
	bonus := mulDiv(equivalent, new(big.Int).SetUint64(e.params.LiquidationBonusPct), percentDivisor)
	seized = new(big.Int).Add(equivalent, bonus)

	// The seizure must be covered by the target's actual deposited balance;
	// an arithmetic trap is not an acceptable substitute for this guard.
	if targetPos.CollateralBalance(sym).Cmp(seized) < 0 {
		return nil, ErrInsufficientCollateral
	}
	if err := withdrawCollateral(targetPos, sym, seized); err != nil {
		return nil, err
	}
	if err := recordBurn(targetPos, debtToCover); err != nil {
		return nil, err
	}

	endingHF, err := e.healthFactor(targetPos)
	if err != nil {
		return nil, err
	}
	if endingHF.Cmp(startingHF) <= 0 {
		return nil, ErrHealthFactorNotImproved
	}

	// The liquidator may carry a position of their own.
	liquidatorPos, err := e.ensurePosition(liquidator)
	if err != nil {
		return nil, err
	}
	if err := e.checkHealth(liquidatorPos); err != nil {
		return nil, err
	}

	if err := e.bank.TransferOut(sym, liquidator, seized); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if err := e.debt.PullForBurn(liquidator, debtToCover); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBurnPullFailed, err)
	}
	if err := e.debt.Burn(debtToCover); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBurnFailed, err)
	}
	if err := e.state.PutPosition(target, targetPos); err != nil {
		return nil, err
	}
	e.state.AppendEvent(CollateralRedeemedEvent(target.String(), liquidator.String(), sym, seized))
	return seized, nil
}

func (e *Engine) ensurePosition(addr crypto.Address) (*Position, error) {
	pos, err := e.state.GetPosition(addr)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		pos = &Position{Address: addr}
	}
	pos.ensureDefaults()
	return pos, nil
}

func (e *Engine) collateralValue(pos *Position) (*big.Int, error) {
	total := big.NewInt(0)
	if pos == nil || pos.Collateral == nil {
		return total, nil
	}
	for _, sym := range e.registry.Assets() {
		balance := pos.Collateral[sym]
		if balance == nil || balance.Sign() == 0 {
			continue
		}
		value, err := e.oracle.UsdValue(sym, balance)
		if err != nil {
			return nil, err
		}
		total.Add(total, value)
	}
	return total, nil
}

// healthFactor values the position and computes its solvency ratio.
// Debt-free positions skip valuation so they stay healthy even when a feed
// is down.
func (e *Engine) healthFactor(pos *Position) (*big.Int, error) {
	if pos == nil || pos.Debt == nil || pos.Debt.Sign() == 0 {
		return MaxHealthFactor(), nil
	}
	value, err := e.collateralValue(pos)
	if err != nil {
		return nil, err
	}
	return HealthFactor(pos.Debt, value, e.params.LiquidationThresholdPct), nil
}

func (e *Engine) checkHealth(pos *Position) error {
	hf, err := e.healthFactor(pos)
	if err != nil {
		return err
	}
	if hf.Cmp(e.params.MinHealthFactor) < 0 {
		return &BreaksHealthFactorError{HealthFactor: hf}
	}
	return nil
}

// --- Read-only queries ---

// AccountInfo returns the account's outstanding debt and total collateral
// value. Zero-deposit accounts valuate to 0 without consulting any feed.
func (e *Engine) AccountInfo(account crypto.Address) (*big.Int, *big.Int, error) {
	if e == nil || e.state == nil {
		return nil, nil, ErrNilState
	}
	pos, err := e.ensurePosition(account)
	if err != nil {
		return nil, nil, err
	}
	value, err := e.collateralValue(pos)
	if err != nil {
		return nil, nil, err
	}
	return new(big.Int).Set(pos.Debt), value, nil
}

// CollateralBalance returns the account's deposited balance of the asset.
func (e *Engine) CollateralBalance(account crypto.Address, asset string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	pos, err := e.ensurePosition(account)
	if err != nil {
		return nil, err
	}
	return pos.CollateralBalance(asset), nil
}

// CollateralValue returns the account's total collateral value in USD.
func (e *Engine) CollateralValue(account crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	pos, err := e.ensurePosition(account)
	if err != nil {
		return nil, err
	}
	return e.collateralValue(pos)
}

// HealthFactorOf returns the account's current solvency ratio.
func (e *Engine) HealthFactorOf(account crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	pos, err := e.ensurePosition(account)
	if err != nil {
		return nil, err
	}
	return e.healthFactor(pos)
}

// Assets returns the approved collateral symbols in registration order.
func (e *Engine) Assets() []string {
	if e == nil {
		return nil
	}
	return e.registry.Assets()
}

// Price returns the normalized unit price for the asset.
func (e *Engine) Price(asset string) (*big.Int, error) {
	if e == nil || e.oracle == nil {
		return nil, ErrOracleUnavailable
	}
	return e.oracle.Price(asset)
}

// Params returns a copy of the engine's risk parameters.
func (e *Engine) Params() RiskParameters {
	if e == nil {
		return RiskParameters{}
	}
	return e.params.Clone()
}

// MinHealthFactor returns the solvency floor.
func (e *Engine) MinHealthFactor() *big.Int {
	if e == nil || e.params.MinHealthFactor == nil {
		return new(big.Int).Set(precision)
	}
	return new(big.Int).Set(e.params.MinHealthFactor)
}
