package keeper

import (
	"context"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// checkTransientUnused enforces the one-transient-account-per-validator rule.
// Concurrent conflicting rebalances are rejected here rather than racing:
// the derived account either exists or it does not.
func (k *Keeper) checkTransientUnused(entry *types.ValidatorStakeInfo, transientAddr types.Address) error {
	if entry.TransientStakeLamports != 0 || entry.Status != types.StakeStatusActive {
		return types.ErrTransientAccountInUse.Wrapf(
			"validator %s has %d transient lamports in status %s",
			entry.VoteAccountAddress, entry.TransientStakeLamports, entry.Status)
	}
	acct, err := k.stake.Account(transientAddr)
	if err != nil {
		return err
	}
	if acct != nil && acct.Lamports > 0 {
		return types.ErrTransientAccountInUse.Wrapf("transient account %s holds %d lamports", transientAddr, acct.Lamports)
	}
	return nil
}

// DecreaseValidatorStake splits lamports out of a validator's canonical stake
// account into its derived transient account and deactivates the split. The
// lamports return to the reserve once a later balance update observes the
// deactivation complete.
func (k *Keeper) DecreaseValidatorStake(
	ctx context.Context,
	poolAddr, staker types.Address,
	signers []types.Address,
	voteAccount types.Address,
	lamports uint64,
	transientSeed uint64,
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
	entry := vl.Find(voteAccount)
	if entry == nil {
		return types.ErrValidatorNotFound.Wrapf("validator %s", voteAccount)
	}

	transientAddr := k.transientStakeAddress(voteAccount, poolAddr, transientSeed)
	if err := k.checkTransientUnused(entry, transientAddr); err != nil {
		return err
	}
	if lamports > entry.ActiveStakeLamports {
		return types.ErrWithdrawalTooLarge.Wrapf(
			"%d lamports exceeds %d active", lamports, entry.ActiveStakeLamports)
	}

	stakeAddr := k.stakeAddress(voteAccount, poolAddr)
	acct, err := k.stake.Account(stakeAddr)
	if err != nil {
		return err
	}
	if acct == nil {
		return types.ErrWrongStakeState.Wrapf("no stake account at %s", stakeAddr)
	}
	rentMin := k.stake.RentExemptMinimum()
	if lamports < rentMin {
		return types.ErrStakeBelowMinimum.Wrapf(
			"%d lamports cannot fund a rent-exempt transient account (minimum %d)", lamports, rentMin)
	}
	remaining, err := types.SubUint64(acct.Lamports, lamports)
	if err != nil {
		return types.ErrWithdrawalTooLarge.Wrapf("%d lamports exceeds account balance %d", lamports, acct.Lamports)
	}
	if remaining < rentMin {
		return types.ErrInsufficientStake.Wrapf(
			"split would leave %d lamports, below the rent-exempt minimum %d", remaining, rentMin)
	}

	if err := k.stake.Split(stakeAddr, lamports, transientAddr); err != nil {
		return err
	}
	if err := k.stake.Deactivate(transientAddr); err != nil {
		return err
	}

	entry.ActiveStakeLamports -= lamports
	entry.TransientStakeLamports = lamports
	entry.Status = types.StakeStatusDeactivatingTransient
	if err := k.saveValidatorList(sp, vl); err != nil {
		return err
	}
	if k.metrics != nil {
		k.metrics.RebalancesTotal.WithLabelValues("decrease").Inc()
	}

	k.logger.Info("validator stake decreased",
		"pool", poolAddr.String(),
		"vote_account", voteAccount.String(),
		"lamports", lamports,
		"transient", transientAddr.String(),
	)
	return nil
}

// IncreaseValidatorStake splits lamports from the reserve into a validator's
// transient account and delegates it. The stake joins the canonical account
// once a later balance update observes the activation complete.
func (k *Keeper) IncreaseValidatorStake(
	ctx context.Context,
	poolAddr, staker types.Address,
	signers []types.Address,
	voteAccount types.Address,
	lamports uint64,
	transientSeed uint64,
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
	entry := vl.Find(voteAccount)
	if entry == nil {
		return types.ErrValidatorNotFound.Wrapf("validator %s", voteAccount)
	}

	transientAddr := k.transientStakeAddress(voteAccount, poolAddr, transientSeed)
	if err := k.checkTransientUnused(entry, transientAddr); err != nil {
		return err
	}

	rentMin := k.stake.RentExemptMinimum()
	minDelta, err := types.AddUint64(rentMin, k.cfg.MinimumActiveStake)
	if err != nil {
		return err
	}
	if lamports < minDelta {
		return types.ErrStakeBelowMinimum.Wrapf("%d lamports below minimum increase %d", lamports, minDelta)
	}

	reserve, err := k.stake.Account(sp.ReserveStake)
	if err != nil {
		return err
	}
	if reserve == nil {
		return types.ErrWrongReserveStake.Wrapf("no stake account at %s", sp.ReserveStake)
	}
	remaining, err := types.SubUint64(reserve.Lamports, lamports)
	if err != nil || remaining < rentMin {
		return types.ErrInsufficientStake.Wrapf(
			"reserve holds %d lamports, cannot move %d and stay rent exempt", reserve.Lamports, lamports)
	}

	if err := k.stake.Split(sp.ReserveStake, lamports, transientAddr); err != nil {
		return err
	}
	if err := k.stake.Delegate(transientAddr, voteAccount); err != nil {
		return err
	}

	entry.TransientStakeLamports = lamports
	if err := k.saveValidatorList(sp, vl); err != nil {
		return err
	}
	if k.metrics != nil {
		k.metrics.RebalancesTotal.WithLabelValues("increase").Inc()
	}

	k.logger.Info("validator stake increased",
		"pool", poolAddr.String(),
		"vote_account", voteAccount.String(),
		"lamports", lamports,
		"transient", transientAddr.String(),
	)
	return nil
}
