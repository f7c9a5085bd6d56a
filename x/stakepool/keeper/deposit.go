package keeper

import (
	"context"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// checkFresh gates pricing operations behind this epoch's balance updates.
// Stale cached totals would misprice pool tokens against lamports.
func (k *Keeper) checkFresh(sp *types.StakePool, vl *types.ValidatorList, epoch uint64) error {
	if sp.IsStale(epoch) {
		return types.ErrStakeListAndPoolOutOfDate.Wrapf(
			"pool last updated at epoch %d, current %d", sp.LastUpdateEpoch, epoch)
	}
	for i := range vl.Validators {
		if vl.Validators[i].LastUpdateEpoch < epoch {
			return types.ErrStakeListAndPoolOutOfDate.Wrapf(
				"validator %s last updated at epoch %d, current %d",
				vl.Validators[i].VoteAccountAddress, vl.Validators[i].LastUpdateEpoch, epoch)
		}
	}
	return nil
}

// DepositStake merges a user's active stake account into the matching
// validator's canonical account and mints pool tokens for it at the current
// exchange rate.
func (k *Keeper) DepositStake(
	ctx context.Context,
	poolAddr types.Address,
	signers []types.Address,
	stakeAccount types.Address,
	destinationTokens types.Address,
) (*types.DepositReceipt, error) {
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
	if err := sp.CheckDepositAuthority(signers); err != nil {
		return nil, err
	}

	acct, err := k.stake.Account(stakeAccount)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, types.ErrWrongStakeState.Wrapf("no stake account at %s", stakeAccount)
	}
	if !acct.IsDelegated() || acct.Activation != StakeActive {
		return nil, types.ErrWrongStakeState.Wrapf("stake account %s is not actively delegated", stakeAccount)
	}
	if acct.Lockup != sp.Lockup {
		return nil, types.ErrInvalidLockup.Wrapf("stake account %s lockup differs from the pool's", stakeAccount)
	}

	vote := acct.VoteAccount
	if sp.PreferredDepositValidator != nil && *sp.PreferredDepositValidator != vote {
		return nil, types.ErrIncorrectDepositVoteAddress.Wrapf(
			"deposits must target preferred validator %s, got %s", *sp.PreferredDepositValidator, vote)
	}
	entry := vl.Find(vote)
	if entry == nil {
		return nil, types.ErrUnknownValidator.Wrapf("validator %s is not in the pool", vote)
	}

	stakeLamports := acct.Lamports
	tokens, err := sp.PoolTokensForDeposit(stakeLamports)
	if err != nil {
		return nil, err
	}
	if tokens == 0 {
		return nil, types.ErrStakeBelowMinimum.Wrapf("%d lamports mints zero pool tokens", stakeLamports)
	}

	stakeAddr := k.stakeAddress(vote, poolAddr)
	if err := k.stake.Merge(stakeAccount, stakeAddr); err != nil {
		return nil, err
	}
	if err := k.token.MintTo(sp.PoolMint, destinationTokens, tokens); err != nil {
		return nil, err
	}

	entry.ActiveStakeLamports, err = types.AddUint64(entry.ActiveStakeLamports, stakeLamports)
	if err != nil {
		return nil, err
	}
	sp.TotalStakeLamports, err = types.AddUint64(sp.TotalStakeLamports, stakeLamports)
	if err != nil {
		return nil, err
	}
	sp.PoolTokenSupply, err = types.AddUint64(sp.PoolTokenSupply, tokens)
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
		k.metrics.DepositsTotal.Inc()
		k.metrics.DepositedLamports.Add(float64(stakeLamports))
		k.metrics.TotalStakeLamports.Set(float64(sp.TotalStakeLamports))
		k.metrics.PoolTokenSupply.Set(float64(sp.PoolTokenSupply))
	}

	receipt := types.NewDepositReceipt(poolAddr, vote, stakeLamports, tokens, epoch)
	k.logger.Info("stake deposited",
		"receipt", receipt.ReceiptID,
		"pool", poolAddr.String(),
		"vote_account", vote.String(),
		"lamports", stakeLamports,
		"pool_tokens", tokens,
	)
	return receipt, nil
}
