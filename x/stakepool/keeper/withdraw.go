package keeper

import (
	"context"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// WithdrawStake burns pool tokens and splits the equivalent lamports out of a
// validator's canonical stake account, or out of the reserve when no validator
// carries active stake anymore. The split lands in destinationStake and its
// authorities are handed to destinationAuthority.
//
// sourceVoteAccount selects the validator to draw from; nil requests the
// reserve.
func (k *Keeper) WithdrawStake(
	ctx context.Context,
	poolAddr types.Address,
	signers []types.Address,
	sourceVoteAccount *types.Address,
	destinationStake types.Address,
	destinationAuthority types.Address,
	sourceTokens types.Address,
	poolTokens uint64,
) (*types.WithdrawReceipt, error) {
	sp, err := k.loadPool(poolAddr)
	if err != nil {
		return nil, err
	}
	vl, err := k.loadValidatorList(sp)
	if err != nil {
		return nil, err
	}
	epoch := k.clock.CurrentEpoch()
	if err := k.checkFresh(sp, vl, epoch); err != nil {
		return nil, err
	}

	lamports, err := sp.LamportsForWithdraw(poolTokens)
	if err != nil {
		return nil, err
	}
	if lamports == 0 {
		return nil, types.ErrWithdrawalTooLarge.Wrapf("%d pool tokens redeem zero lamports", poolTokens)
	}
	rentMin := k.stake.RentExemptMinimum()
	if lamports < rentMin {
		return nil, types.ErrStakeBelowMinimum.Wrapf(
			"%d lamports cannot fund a rent-exempt destination (minimum %d)", lamports, rentMin)
	}

	var source types.Address
	var entry *types.ValidatorStakeInfo
	if sourceVoteAccount == nil {
		// Reserve withdrawal, only once every validator is fully drained.
		if vl.HasActiveStake() {
			return nil, types.ErrActiveStakeExists.Wrap("reserve withdrawals require all validators drained")
		}
		source = sp.ReserveStake
	} else {
		vote := *sourceVoteAccount
		if sp.PreferredWithdrawValidator != nil && *sp.PreferredWithdrawValidator != vote {
			preferred := vl.Find(*sp.PreferredWithdrawValidator)
			// The preference only binds while the preferred validator still
			// has stake to give.
			if preferred != nil && preferred.ActiveStakeLamports > 0 {
				return nil, types.ErrIncorrectWithdrawVoteAddress.Wrapf(
					"withdrawals must draw from preferred validator %s, got %s",
					*sp.PreferredWithdrawValidator, vote)
			}
		}
		entry = vl.Find(vote)
		if entry == nil {
			return nil, types.ErrUnknownValidator.Wrapf("validator %s is not in the pool", vote)
		}
		if lamports > entry.ActiveStakeLamports {
			return nil, types.ErrWithdrawalTooLarge.Wrapf(
				"%d lamports exceeds validator %s active stake %d", lamports, vote, entry.ActiveStakeLamports)
		}
		source = k.stakeAddress(vote, poolAddr)
	}

	acct, err := k.stake.Account(source)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, types.ErrWrongStakeState.Wrapf("no stake account at %s", source)
	}
	remaining, err := types.SubUint64(acct.Lamports, lamports)
	if err != nil || remaining < rentMin {
		return nil, types.ErrWithdrawalTooLarge.Wrapf(
			"withdrawing %d lamports from %s would breach the rent-exempt minimum", lamports, source)
	}

	if err := k.token.Burn(sp.PoolMint, sourceTokens, poolTokens); err != nil {
		return nil, err
	}
	if err := k.stake.Split(source, lamports, destinationStake); err != nil {
		return nil, err
	}
	if err := k.stake.Authorize(destinationStake, destinationAuthority, destinationAuthority); err != nil {
		return nil, err
	}

	if entry != nil {
		entry.ActiveStakeLamports -= lamports
	}
	sp.TotalStakeLamports, err = types.SubUint64(sp.TotalStakeLamports, lamports)
	if err != nil {
		return nil, err
	}
	sp.PoolTokenSupply, err = types.SubUint64(sp.PoolTokenSupply, poolTokens)
	if err != nil {
		return nil, err
	}

	if err := k.saveValidatorList(sp, vl); err != nil {
		return nil, err
	}
	if err := k.savePool(poolAddr, sp); err != nil {
		return nil, err
	}
	if k.metrics != nil {
		k.metrics.WithdrawalsTotal.Inc()
		k.metrics.WithdrawnLamports.Add(float64(lamports))
		k.metrics.TotalStakeLamports.Set(float64(sp.TotalStakeLamports))
		k.metrics.PoolTokenSupply.Set(float64(sp.PoolTokenSupply))
	}

	receipt := types.NewWithdrawReceipt(poolAddr, source, lamports, poolTokens, epoch)
	k.logger.Info("stake withdrawn",
		"receipt", receipt.ReceiptID,
		"pool", poolAddr.String(),
		"source", source.String(),
		"lamports", lamports,
		"pool_tokens", poolTokens,
	)
	return receipt, nil
}
