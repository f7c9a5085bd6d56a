package keeper

import (
	"context"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// PreferredValidatorKind selects which preference SetPreferredValidator sets.
type PreferredValidatorKind string

const (
	PreferredDeposit  PreferredValidatorKind = "deposit"
	PreferredWithdraw PreferredValidatorKind = "withdraw"
)

// SetFee schedules a new epoch fee. The change takes effect on the next pool
// balance update so the current epoch's rewards are charged at the rate that
// was advertised when they accrued.
func (k *Keeper) SetFee(
	ctx context.Context,
	poolAddr, manager types.Address,
	signers []types.Address,
	fee types.Fee,
) error {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	if err := sp.CheckManager(manager, signers); err != nil {
		return err
	}
	if err := fee.Validate(); err != nil {
		return err
	}
	sp.NextEpochFee = &fee
	if err := k.savePool(poolAddr, sp); err != nil {
		return err
	}
	k.logger.Info("fee change scheduled",
		"pool", poolAddr.String(),
		"numerator", fee.Numerator,
		"denominator", fee.Denominator,
	)
	return nil
}

// SetManager hands the pool to a new manager together with a new fee token
// account. Both must be supplied at once so fee mints never land in an account
// the outgoing manager still controls.
func (k *Keeper) SetManager(
	ctx context.Context,
	poolAddr, manager types.Address,
	signers []types.Address,
	newManager, newFeeAccount types.Address,
) error {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	if err := sp.CheckManager(manager, signers); err != nil {
		return err
	}
	if newManager.IsZero() {
		return types.ErrWrongManager.Wrap("new manager must not be the zero address")
	}
	if newFeeAccount.IsZero() {
		return types.ErrWrongManagerFee.Wrap("new fee account must not be the zero address")
	}
	sp.Manager = newManager
	sp.ManagerFeeAccount = newFeeAccount
	if err := k.savePool(poolAddr, sp); err != nil {
		return err
	}
	k.logger.Info("manager changed",
		"pool", poolAddr.String(),
		"manager", newManager.String(),
		"fee_account", newFeeAccount.String(),
	)
	return nil
}

// SetStaker replaces the pool's staker. Either the manager or the current
// staker may do this.
func (k *Keeper) SetStaker(
	ctx context.Context,
	poolAddr, authority types.Address,
	signers []types.Address,
	newStaker types.Address,
) error {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	if authority != sp.Manager && authority != sp.Staker {
		return types.ErrWrongStaker.Wrapf("%s is neither manager nor staker", authority)
	}
	if !types.HasSigner(signers, authority) {
		return types.ErrSignatureMissing.Wrapf("%s signature missing", authority)
	}
	if newStaker.IsZero() {
		return types.ErrWrongStaker.Wrap("new staker must not be the zero address")
	}
	sp.Staker = newStaker
	if err := k.savePool(poolAddr, sp); err != nil {
		return err
	}
	k.logger.Info("staker changed",
		"pool", poolAddr.String(),
		"staker", newStaker.String(),
	)
	return nil
}

// SetPreferredValidator pins deposits or withdrawals to one validator, or
// clears the pin when validator is nil.
func (k *Keeper) SetPreferredValidator(
	ctx context.Context,
	poolAddr, staker types.Address,
	signers []types.Address,
	kind PreferredValidatorKind,
	validator *types.Address,
) error {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	if err := sp.CheckStaker(staker, signers); err != nil {
		return err
	}
	if validator != nil {
		vl, err := k.loadValidatorList(sp)
		if err != nil {
			return err
		}
		if !vl.Contains(*validator) {
			return types.ErrValidatorNotFound.Wrapf("validator %s is not in the pool", *validator)
		}
	}
	switch kind {
	case PreferredDeposit:
		sp.PreferredDepositValidator = validator
	case PreferredWithdraw:
		sp.PreferredWithdrawValidator = validator
	default:
		return types.ErrWrongAccountKind.Wrapf("unknown preferred validator kind %q", kind)
	}
	if err := k.savePool(poolAddr, sp); err != nil {
		return err
	}
	target := "none"
	if validator != nil {
		target = validator.String()
	}
	k.logger.Info("preferred validator set",
		"pool", poolAddr.String(),
		"kind", string(kind),
		"validator", target,
	)
	return nil
}
