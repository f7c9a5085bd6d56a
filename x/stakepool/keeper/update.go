package keeper

import (
	"context"
	"time"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// ValidatorBalanceUpdate names one validator to refresh and the seed of the
// transient account its current rebalance, if any, was derived with.
type ValidatorBalanceUpdate struct {
	VoteAccount   types.Address
	TransientSeed uint64
}

// UpdateValidatorListBalance refreshes the listed validators' entries against
// their live stake accounts: settled transient stake is merged back into the
// reserve or the canonical account, lamport fields are re-read, and each
// touched entry is stamped with the current epoch.
//
// Entries are rewritten in place through the raw record so a partial batch
// never forces a decode-encode cycle of the untouched remainder. Permissionless:
// anyone may call this.
func (k *Keeper) UpdateValidatorListBalance(
	ctx context.Context,
	poolAddr types.Address,
	updates []ValidatorBalanceUpdate,
) error {
	start := time.Now()
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	raw, err := k.ledger.ReadAccount(sp.ValidatorList)
	if err != nil {
		return err
	}
	if raw == nil {
		return types.ErrInvalidValidatorList.Wrapf("no record at %s", sp.ValidatorList)
	}
	buf := types.ValidatorListBuffer(raw)
	epoch := k.clock.CurrentEpoch()

	for _, upd := range updates {
		idx, entry, err := buf.FindEntry(upd.VoteAccount)
		if err != nil {
			return err
		}
		refreshed, err := k.refreshValidatorEntry(sp, poolAddr, entry, upd.TransientSeed, epoch)
		if err != nil {
			return err
		}
		if err := buf.PutEntryAt(idx, refreshed); err != nil {
			return err
		}
	}

	if err := k.ledger.WriteAccount(sp.ValidatorList, raw); err != nil {
		return err
	}
	if k.metrics != nil {
		k.metrics.ListUpdatesTotal.Inc()
		k.metrics.UpdateDuration.Observe(time.Since(start).Seconds())
	}
	k.logger.Info("validator list balances updated",
		"pool", poolAddr.String(),
		"validators", len(updates),
		"epoch", epoch,
	)
	return nil
}

// refreshValidatorEntry reconciles one entry with its live accounts.
func (k *Keeper) refreshValidatorEntry(
	sp *types.StakePool,
	poolAddr types.Address,
	entry types.ValidatorStakeInfo,
	transientSeed uint64,
	epoch uint64,
) (types.ValidatorStakeInfo, error) {
	vote := entry.VoteAccountAddress
	stakeAddr := k.stakeAddress(vote, poolAddr)
	transientAddr := k.transientStakeAddress(vote, poolAddr, transientSeed)

	canonical, err := k.stake.Account(stakeAddr)
	if err != nil {
		return entry, err
	}
	transient, err := k.stake.Account(transientAddr)
	if err != nil {
		return entry, err
	}

	if transient != nil && transient.Lamports > 0 {
		switch {
		case transient.Activation == StakeInactive:
			// Finished deactivating. Fold it back into the reserve.
			if err := k.stake.Merge(transientAddr, sp.ReserveStake); err != nil {
				return entry, err
			}
			entry.TransientStakeLamports = 0
			transient = nil
		case transient.Activation == StakeActive &&
			canonical != nil &&
			canonical.Activation == StakeActive &&
			transient.CreditsObserved == canonical.CreditsObserved:
			// Finished activating and merge-compatible with the canonical
			// account. Fold it in and account the lamports as active.
			if err := k.stake.Merge(transientAddr, stakeAddr); err != nil {
				return entry, err
			}
			canonical, err = k.stake.Account(stakeAddr)
			if err != nil {
				return entry, err
			}
			entry.TransientStakeLamports = 0
			transient = nil
		default:
			// Still warming up, cooling down, or credits-observed differs
			// from the canonical account. Leave it and re-read the balance.
			entry.TransientStakeLamports = transient.Lamports
		}
	} else {
		entry.TransientStakeLamports = 0
	}

	if canonical != nil && canonical.IsDelegated() && canonical.Activation != StakeInactive {
		entry.ActiveStakeLamports = canonical.Lamports
	} else {
		entry.ActiveStakeLamports = 0
	}

	switch {
	case entry.ActiveStakeLamports == 0 && entry.TransientStakeLamports == 0:
		entry.Status = types.StakeStatusReadyForRemoval
	case entry.ActiveStakeLamports == 0:
		entry.Status = types.StakeStatusDeactivatingTransient
	default:
		entry.Status = types.StakeStatusActive
	}
	entry.LastUpdateEpoch = epoch
	return entry, nil
}

// UpdateStakePoolBalance refreshes the pool's cached totals once every
// validator entry has been updated this epoch, mints the epoch fee to the
// manager, applies any pending fee change, and compacts removed validators.
// Permissionless: anyone may call this.
func (k *Keeper) UpdateStakePoolBalance(ctx context.Context, poolAddr types.Address) error {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return err
	}
	vl, err := k.loadValidatorList(sp)
	if err != nil {
		return err
	}
	epoch := k.clock.CurrentEpoch()
	for i := range vl.Validators {
		if vl.Validators[i].LastUpdateEpoch < epoch {
			return types.ErrStakeListOutOfDate.Wrapf(
				"validator %s last updated at epoch %d, current %d",
				vl.Validators[i].VoteAccountAddress, vl.Validators[i].LastUpdateEpoch, epoch)
		}
	}

	reserve, err := k.stake.Account(sp.ReserveStake)
	if err != nil {
		return err
	}
	if reserve == nil {
		return types.ErrWrongReserveStake.Wrapf("no stake account at %s", sp.ReserveStake)
	}
	total := reserve.Lamports
	for i := range vl.Validators {
		managed, err := vl.Validators[i].StakeLamports()
		if err != nil {
			return err
		}
		total, err = types.AddUint64(total, managed)
		if err != nil {
			return err
		}
	}

	var reward uint64
	if total > sp.TotalStakeLamports {
		reward = total - sp.TotalStakeLamports
	}
	feeTokens, err := sp.FeeInPoolTokens(reward)
	if err != nil {
		return err
	}
	if feeTokens > 0 {
		if err := k.token.MintTo(sp.PoolMint, sp.ManagerFeeAccount, feeTokens); err != nil {
			return err
		}
		sp.PoolTokenSupply, err = types.AddUint64(sp.PoolTokenSupply, feeTokens)
		if err != nil {
			return err
		}
	}

	sp.TotalStakeLamports = total
	sp.LastUpdateEpoch = epoch
	if sp.NextEpochFee != nil {
		sp.Fee = *sp.NextEpochFee
		sp.NextEpochFee = nil
	}
	removed := vl.Compact()

	if err := k.saveValidatorList(sp, vl); err != nil {
		return err
	}
	if err := k.savePool(poolAddr, sp); err != nil {
		return err
	}
	if k.metrics != nil {
		k.metrics.PoolUpdatesTotal.Inc()
		k.metrics.FeeTokensMinted.Add(float64(feeTokens))
		k.metrics.TotalStakeLamports.Set(float64(sp.TotalStakeLamports))
		k.metrics.PoolTokenSupply.Set(float64(sp.PoolTokenSupply))
		k.metrics.ValidatorCount.Set(float64(len(vl.Validators)))
	}
	k.logger.Info("stake pool balance updated",
		"pool", poolAddr.String(),
		"total_lamports", sp.TotalStakeLamports,
		"pool_token_supply", sp.PoolTokenSupply,
		"reward_lamports", reward,
		"fee_tokens", feeTokens,
		"validators_removed", removed,
		"epoch", epoch,
	)
	return nil
}
