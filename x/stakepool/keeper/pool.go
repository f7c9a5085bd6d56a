package keeper

import (
	"context"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// InitializeParams collects the accounts and settings for a new pool.
type InitializeParams struct {
	Pool              types.Address
	Manager           types.Address
	Staker            types.Address
	ValidatorList     types.Address
	ReserveStake      types.Address
	PoolMint          types.Address
	ManagerFeeAccount types.Address

	// DepositAuthority overrides the derived default when non-nil.
	DepositAuthority *types.Address

	Fee           types.Fee
	MaxValidators uint32
	Lockup        types.Lockup
}

// InitializePool writes a fresh stake pool record and its sized validator
// list. The reserve must already exist as an undelegated, inactive stake
// account and the pool mint must have zero supply.
func (k *Keeper) InitializePool(ctx context.Context, p InitializeParams) error {
	if p.MaxValidators == 0 {
		return types.ErrMaxValidatorsReached.Wrap("max validators must be positive")
	}
	if err := p.Fee.Validate(); err != nil {
		return err
	}

	for _, addr := range []types.Address{p.Pool, p.ValidatorList} {
		data, err := k.ledger.ReadAccount(addr)
		if err != nil {
			return err
		}
		if len(data) > 0 && types.AccountType(data[0]) != types.AccountTypeUninitialized {
			return types.ErrAlreadyInUse.Wrapf("record at %s", addr)
		}
	}

	reserve, err := k.stake.Account(p.ReserveStake)
	if err != nil {
		return err
	}
	if reserve == nil {
		return types.ErrWrongStakeState.Wrapf("reserve %s does not exist", p.ReserveStake)
	}
	if reserve.IsDelegated() || reserve.Activation != StakeInactive {
		return types.ErrWrongStakeState.Wrapf("reserve %s must be undelegated and inactive", p.ReserveStake)
	}

	supply, err := k.token.Supply(p.PoolMint)
	if err != nil {
		return err
	}
	if supply != 0 {
		return types.ErrAlreadyInUse.Wrapf("mint %s already has supply %d", p.PoolMint, supply)
	}

	_, withdrawBump := types.FindWithdrawAuthority(k.cfg.ProgramID, p.Pool)
	depositAuthority := types.ZeroAddress
	if p.DepositAuthority != nil {
		depositAuthority = *p.DepositAuthority
	} else {
		depositAuthority, _ = types.FindDepositAuthority(k.cfg.ProgramID, p.Pool)
	}

	sp := &types.StakePool{
		AccountType:       types.AccountTypeStakePool,
		Manager:           p.Manager,
		Staker:            p.Staker,
		DepositAuthority:  depositAuthority,
		WithdrawBumpSeed:  withdrawBump,
		ValidatorList:     p.ValidatorList,
		ReserveStake:      p.ReserveStake,
		PoolMint:          p.PoolMint,
		ManagerFeeAccount: p.ManagerFeeAccount,
		LastUpdateEpoch:   k.clock.CurrentEpoch(),
		Lockup:            p.Lockup,
		Fee:               p.Fee,
	}
	if err := k.saveValidatorList(sp, types.NewValidatorList(p.MaxValidators)); err != nil {
		return err
	}
	if err := k.savePool(p.Pool, sp); err != nil {
		return err
	}

	k.logger.Info("stake pool initialized",
		"pool", p.Pool.String(),
		"manager", p.Manager.String(),
		"staker", p.Staker.String(),
		"max_validators", p.MaxValidators,
		"fee", p.Fee,
	)
	return nil
}
