package keeper

import (
	"context"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// AddValidator appends a validator to the pool's list. The validator's
// canonical stake account must already exist, be delegated to the vote
// account, and have its withdraw authority set to the pool's deposit
// authority; stake is folded into the pool via a subsequent deposit.
func (k *Keeper) AddValidator(
	ctx context.Context,
	poolAddr, staker types.Address,
	signers []types.Address,
	voteAccount types.Address,
) error {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	if err := sp.CheckStaker(staker, signers); err != nil {
		return err
	}
	vl, err := k.loadValidatorList(sp)
	if err != nil {
		return err
	}
	if vl.Contains(voteAccount) {
		return types.ErrValidatorAlreadyAdded.Wrapf("validator %s", voteAccount)
	}

	stakeAddr := k.stakeAddress(voteAccount, poolAddr)
	acct, err := k.stake.Account(stakeAddr)
	if err != nil {
		return err
	}
	if acct == nil {
		return types.ErrWrongStakeState.Wrapf("no stake account at derived address %s", stakeAddr)
	}
	if acct.VoteAccount != voteAccount {
		return types.ErrWrongStakeState.Wrapf(
			"stake account %s delegated to %s, not %s", stakeAddr, acct.VoteAccount, voteAccount)
	}
	if acct.WithdrawAuthority != sp.DepositAuthority {
		return types.ErrWrongStakeState.Wrapf(
			"stake account %s withdraw authority must be the pool deposit authority", stakeAddr)
	}
	if acct.Lockup != sp.Lockup {
		return types.ErrInvalidLockup.Wrapf("stake account %s", stakeAddr)
	}

	// Pin the account to the pool before it is tracked.
	withdrawAuth := k.withdrawAuthority(poolAddr, sp)
	if err := k.stake.Authorize(stakeAddr, withdrawAuth, withdrawAuth); err != nil {
		return err
	}

	info := types.ValidatorStakeInfo{
		Status:             types.StakeStatusActive,
		VoteAccountAddress: voteAccount,
		LastUpdateEpoch:    k.clock.CurrentEpoch(),
	}
	if err := vl.Push(info); err != nil {
		return err
	}
	if err := k.saveValidatorList(sp, vl); err != nil {
		return err
	}
	if k.metrics != nil {
		k.metrics.ValidatorCount.Set(float64(len(vl.Validators)))
	}

	k.logger.Info("validator added",
		"pool", poolAddr.String(),
		"vote_account", voteAccount.String(),
		"validators", len(vl.Validators),
	)
	return nil
}

// RemoveValidator drops a validator from the list and hands its canonical
// stake account to newAuthority. The staker must have decommissioned the
// validator first: any remaining active or transient stake blocks removal.
func (k *Keeper) RemoveValidator(
	ctx context.Context,
	poolAddr, staker types.Address,
	signers []types.Address,
	voteAccount, newAuthority types.Address,
) error {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	if err := sp.CheckStaker(staker, signers); err != nil {
		return err
	}
	vl, err := k.loadValidatorList(sp)
	if err != nil {
		return err
	}
	if err := vl.Remove(voteAccount); err != nil {
		return err
	}

	stakeAddr := k.stakeAddress(voteAccount, poolAddr)
	acct, err := k.stake.Account(stakeAddr)
	if err != nil {
		return err
	}
	if acct != nil {
		if err := k.stake.Authorize(stakeAddr, newAuthority, newAuthority); err != nil {
			return err
		}
	}

	if err := k.saveValidatorList(sp, vl); err != nil {
		return err
	}
	if k.metrics != nil {
		k.metrics.ValidatorCount.Set(float64(len(vl.Validators)))
	}

	k.logger.Info("validator removed",
		"pool", poolAddr.String(),
		"vote_account", voteAccount.String(),
		"new_authority", newAuthority.String(),
	)
	return nil
}
