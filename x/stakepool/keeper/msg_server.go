package keeper

import (
	"context"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

type msgServer struct {
	*Keeper
}

// MsgServer is the message-level entry point into the engine. Each handler
// runs ValidateBasic, decodes the message's hex addresses, and dispatches to
// the keeper.
type MsgServer interface {
	InitializePool(ctx context.Context, msg types.MsgInitializePool) error
	AddValidator(ctx context.Context, msg types.MsgAddValidator) error
	RemoveValidator(ctx context.Context, msg types.MsgRemoveValidator) error
	IncreaseValidatorStake(ctx context.Context, msg types.MsgIncreaseValidatorStake) error
	DecreaseValidatorStake(ctx context.Context, msg types.MsgDecreaseValidatorStake) error
	UpdateValidatorListBalance(ctx context.Context, msg types.MsgUpdateValidatorListBalance) error
	UpdateStakePoolBalance(ctx context.Context, msg types.MsgUpdateStakePoolBalance) error
	DepositStake(ctx context.Context, msg types.MsgDepositStake) (*types.DepositReceipt, error)
	WithdrawStake(ctx context.Context, msg types.MsgWithdrawStake) (*types.WithdrawReceipt, error)
	SetFee(ctx context.Context, msg types.MsgSetFee) error
	SetManager(ctx context.Context, msg types.MsgSetManager) error
	SetStaker(ctx context.Context, msg types.MsgSetStaker) error
	SetPreferredValidator(ctx context.Context, msg types.MsgSetPreferredValidator) error
}

// NewMsgServerImpl returns the message server backed by the given keeper.
func NewMsgServerImpl(keeper *Keeper) MsgServer {
	return &msgServer{Keeper: keeper}
}

// mustAddr decodes a hex address already checked by ValidateBasic.
func mustAddr(value string) types.Address {
	addr, err := types.AddressFromHex(value)
	if err != nil {
		panic("unvalidated address: " + value)
	}
	return addr
}

func (m *msgServer) InitializePool(ctx context.Context, msg types.MsgInitializePool) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	p := InitializeParams{
		Pool:              mustAddr(msg.Pool),
		Manager:           mustAddr(msg.Manager),
		Staker:            mustAddr(msg.Staker),
		ValidatorList:     mustAddr(msg.ValidatorList),
		ReserveStake:      mustAddr(msg.ReserveStake),
		PoolMint:          mustAddr(msg.PoolMint),
		ManagerFeeAccount: mustAddr(msg.ManagerFeeAccount),
		Fee:               msg.Fee,
		MaxValidators:     msg.MaxValidators,
		Lockup: types.Lockup{
			UnixTimestamp: msg.LockupTimestamp,
			Epoch:         msg.LockupEpoch,
		},
	}
	if msg.DepositAuthority != "" {
		authority := mustAddr(msg.DepositAuthority)
		p.DepositAuthority = &authority
	}
	if msg.LockupCustodian != "" {
		p.Lockup.Custodian = mustAddr(msg.LockupCustodian)
	}
	return m.Keeper.InitializePool(ctx, p)
}

func (m *msgServer) AddValidator(ctx context.Context, msg types.MsgAddValidator) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.AddValidator(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Staker), types.ParseSigners(msg.Signers),
		mustAddr(msg.VoteAccount))
}

func (m *msgServer) RemoveValidator(ctx context.Context, msg types.MsgRemoveValidator) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.RemoveValidator(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Staker), types.ParseSigners(msg.Signers),
		mustAddr(msg.VoteAccount), mustAddr(msg.NewAuthority))
}

func (m *msgServer) IncreaseValidatorStake(ctx context.Context, msg types.MsgIncreaseValidatorStake) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.IncreaseValidatorStake(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Staker), types.ParseSigners(msg.Signers),
		mustAddr(msg.VoteAccount), msg.Lamports, msg.TransientSeed)
}

func (m *msgServer) DecreaseValidatorStake(ctx context.Context, msg types.MsgDecreaseValidatorStake) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.DecreaseValidatorStake(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Staker), types.ParseSigners(msg.Signers),
		mustAddr(msg.VoteAccount), msg.Lamports, msg.TransientSeed)
}

func (m *msgServer) UpdateValidatorListBalance(ctx context.Context, msg types.MsgUpdateValidatorListBalance) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	updates := make([]ValidatorBalanceUpdate, len(msg.Updates))
	for i, upd := range msg.Updates {
		updates[i] = ValidatorBalanceUpdate{
			VoteAccount:   mustAddr(upd.VoteAccount),
			TransientSeed: upd.TransientSeed,
		}
	}
	return m.Keeper.UpdateValidatorListBalance(ctx, mustAddr(msg.Pool), updates)
}

func (m *msgServer) UpdateStakePoolBalance(ctx context.Context, msg types.MsgUpdateStakePoolBalance) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.UpdateStakePoolBalance(ctx, mustAddr(msg.Pool))
}

func (m *msgServer) DepositStake(ctx context.Context, msg types.MsgDepositStake) (*types.DepositReceipt, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	return m.Keeper.DepositStake(ctx,
		mustAddr(msg.Pool), types.ParseSigners(msg.Signers),
		mustAddr(msg.StakeAccount), mustAddr(msg.DestinationTokens))
}

func (m *msgServer) WithdrawStake(ctx context.Context, msg types.MsgWithdrawStake) (*types.WithdrawReceipt, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	var sourceVote *types.Address
	if msg.SourceVoteAccount != "" {
		vote := mustAddr(msg.SourceVoteAccount)
		sourceVote = &vote
	}
	return m.Keeper.WithdrawStake(ctx,
		mustAddr(msg.Pool), types.ParseSigners(msg.Signers),
		sourceVote,
		mustAddr(msg.DestinationStake), mustAddr(msg.DestinationAuthority),
		mustAddr(msg.SourceTokens), msg.PoolTokens)
}

func (m *msgServer) SetFee(ctx context.Context, msg types.MsgSetFee) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.SetFee(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Manager), types.ParseSigners(msg.Signers), msg.Fee)
}

func (m *msgServer) SetManager(ctx context.Context, msg types.MsgSetManager) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.SetManager(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Manager), types.ParseSigners(msg.Signers),
		mustAddr(msg.NewManager), mustAddr(msg.NewManagerFeeAccount))
}

func (m *msgServer) SetStaker(ctx context.Context, msg types.MsgSetStaker) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return m.Keeper.SetStaker(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Authority), types.ParseSigners(msg.Signers),
		mustAddr(msg.NewStaker))
}

func (m *msgServer) SetPreferredValidator(ctx context.Context, msg types.MsgSetPreferredValidator) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	var validator *types.Address
	if msg.VoteAccount != "" {
		vote := mustAddr(msg.VoteAccount)
		validator = &vote
	}
	return m.Keeper.SetPreferredValidator(ctx,
		mustAddr(msg.Pool), mustAddr(msg.Staker), types.ParseSigners(msg.Signers),
		PreferredValidatorKind(msg.Kind), validator)
}
