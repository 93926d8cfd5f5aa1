package engine

import "weathercover/internal/models"

// Pool accounting. Shares are a proportional claim on totalLiquidity, so
// share price carries premium yield and socializes claim losses across
// providers. reservedFunds <= totalLiquidity + unattributedPremium holds
// across every operation.

// Deposit adds capital to the pool and mints shares for the provider.
// The first depositor sets the share unit one-to-one with their deposit;
// later depositors are priced by the current share value. Any premium
// collected before the first deposit is credited to tracked liquidity at
// that moment. Returns the updated position.
func (e *Engine) Deposit(provider string, amount float64) (models.LPPosition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if provider == "" || amount <= 0 {
		return models.LPPosition{}, ErrInvalidInput
	}

	var shares float64
	if e.totalShares == 0 {
		e.totalLiquidity += e.unattributedPremium
		e.unattributedPremium = 0
		shares = amount
	} else {
		shares = amount * e.totalShares / e.totalLiquidity
	}

	e.totalLiquidity += amount
	e.totalShares += shares

	pos, ok := e.positions[provider]
	if !ok {
		pos = &models.LPPosition{Provider: provider}
		e.positions[provider] = pos
	}
	pos.Deposited += amount
	pos.Shares += shares
	pos.UpdatedAt = e.clock.Now()

	return *pos, nil
}

// Withdraw burns shares and pays out their current value. Capital
// reserved against active policies is not withdrawable; the request fails
// rather than dipping below the reservation floor. Returns the updated
// position and the amount paid.
func (e *Engine) Withdraw(provider string, shares float64) (models.LPPosition, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if provider == "" || shares <= 0 {
		return models.LPPosition{}, 0, ErrInvalidInput
	}
	pos, ok := e.positions[provider]
	if !ok || pos.Shares < shares {
		return models.LPPosition{}, 0, ErrInsufficientShares
	}

	amount := shares * e.totalLiquidity / e.totalShares
	if amount > e.totalLiquidity-e.reservedFunds {
		return models.LPPosition{}, 0, ErrInsufficientLiquidity
	}

	pos.Shares -= shares
	pos.UpdatedAt = e.clock.Now()
	e.totalShares -= shares
	e.totalLiquidity -= amount

	return *pos, amount, nil
}

// ProviderValue returns the current redeemable value of a provider's
// shares.
func (e *Engine) ProviderValue(provider string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pos, ok := e.positions[provider]
	if !ok || e.totalShares == 0 {
		return 0
	}
	return pos.Shares * e.totalLiquidity / e.totalShares
}

// Position returns a copy of a provider's position.
func (e *Engine) Position(provider string) (models.LPPosition, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pos, ok := e.positions[provider]
	if !ok {
		return models.LPPosition{}, ErrNotFound
	}
	return *pos, nil
}

// WithdrawProtocolFees pays the accrued protocol fees to the owner and
// resets the accrual. Owner only.
func (e *Engine) WithdrawProtocolFees(caller string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return 0, ErrUnauthorized
	}
	amount := e.protocolFees
	e.protocolFees = 0
	return amount, nil
}
