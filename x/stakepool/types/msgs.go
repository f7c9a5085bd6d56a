package types

import (
	"fmt"
)

// Message types
const (
	TypeMsgInitializePool             = "initialize_pool"
	TypeMsgAddValidator               = "add_validator"
	TypeMsgRemoveValidator            = "remove_validator"
	TypeMsgIncreaseValidatorStake     = "increase_validator_stake"
	TypeMsgDecreaseValidatorStake     = "decrease_validator_stake"
	TypeMsgUpdateValidatorListBalance = "update_validator_list_balance"
	TypeMsgUpdateStakePoolBalance     = "update_stake_pool_balance"
	TypeMsgDepositStake               = "deposit_stake"
	TypeMsgWithdrawStake              = "withdraw_stake"
	TypeMsgSetFee                     = "set_fee"
	TypeMsgSetManager                 = "set_manager"
	TypeMsgSetStaker                  = "set_staker"
	TypeMsgSetPreferredValidator      = "set_preferred_validator"
)

func validateAddress(field, value string) error {
	if _, err := AddressFromHex(value); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func validateSigners(signers []string) error {
	if len(signers) == 0 {
		return ErrSignatureMissing.Wrap("no signers supplied")
	}
	for _, s := range signers {
		if err := validateAddress("signer", s); err != nil {
			return err
		}
	}
	return nil
}

// ParseSigners converts hex signer strings to addresses. ValidateBasic must
// have been run first; a parse failure here is a programming error.
func ParseSigners(signers []string) []Address {
	out := make([]Address, len(signers))
	for i, s := range signers {
		addr, err := AddressFromHex(s)
		if err != nil {
			panic(fmt.Sprintf("unvalidated signer %q: %v", s, err))
		}
		out[i] = addr
	}
	return out
}

// MsgInitializePool creates a new stake pool and its validator list.
type MsgInitializePool struct {
	Pool              string   `json:"pool"`
	Manager           string   `json:"manager"`
	Staker            string   `json:"staker"`
	ValidatorList     string   `json:"validator_list"`
	ReserveStake      string   `json:"reserve_stake"`
	PoolMint          string   `json:"pool_mint"`
	ManagerFeeAccount string   `json:"manager_fee_account"`
	DepositAuthority  string   `json:"deposit_authority,omitempty"`
	Fee               Fee      `json:"fee"`
	MaxValidators     uint32   `json:"max_validators"`
	LockupTimestamp   int64    `json:"lockup_timestamp,omitempty"`
	LockupEpoch       uint64   `json:"lockup_epoch,omitempty"`
	LockupCustodian   string   `json:"lockup_custodian,omitempty"`
	Signers           []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgInitializePool) Type() string { return TypeMsgInitializePool }

// ValidateBasic performs stateless validation.
func (msg MsgInitializePool) ValidateBasic() error {
	fields := map[string]string{
		"pool": msg.Pool, "manager": msg.Manager, "staker": msg.Staker,
		"validator_list": msg.ValidatorList, "reserve_stake": msg.ReserveStake,
		"pool_mint": msg.PoolMint, "manager_fee_account": msg.ManagerFeeAccount,
	}
	if msg.DepositAuthority != "" {
		fields["deposit_authority"] = msg.DepositAuthority
	}
	if msg.LockupCustodian != "" {
		fields["lockup_custodian"] = msg.LockupCustodian
	}
	for field, v := range fields {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	if err := msg.Fee.Validate(); err != nil {
		return err
	}
	if msg.MaxValidators == 0 {
		return ErrMaxValidatorsReached.Wrap("max validators must be positive")
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgInitializePool) String() string {
	return fmt.Sprintf("MsgInitializePool{Pool: %s, MaxValidators: %d}", msg.Pool, msg.MaxValidators)
}

// MsgAddValidator adds a validator's canonical stake account to the pool.
type MsgAddValidator struct {
	Pool        string   `json:"pool"`
	Staker      string   `json:"staker"`
	VoteAccount string   `json:"vote_account"`
	Signers     []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgAddValidator) Type() string { return TypeMsgAddValidator }

// ValidateBasic performs stateless validation.
func (msg MsgAddValidator) ValidateBasic() error {
	for field, v := range map[string]string{
		"pool": msg.Pool, "staker": msg.Staker, "vote_account": msg.VoteAccount,
	} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgAddValidator) String() string {
	return fmt.Sprintf("MsgAddValidator{Pool: %s, VoteAccount: %s}", msg.Pool, msg.VoteAccount)
}

// MsgRemoveValidator removes a fully decommissioned validator from the pool.
type MsgRemoveValidator struct {
	Pool         string   `json:"pool"`
	Staker       string   `json:"staker"`
	VoteAccount  string   `json:"vote_account"`
	NewAuthority string   `json:"new_authority"`
	Signers      []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgRemoveValidator) Type() string { return TypeMsgRemoveValidator }

// ValidateBasic performs stateless validation.
func (msg MsgRemoveValidator) ValidateBasic() error {
	for field, v := range map[string]string{
		"pool": msg.Pool, "staker": msg.Staker,
		"vote_account": msg.VoteAccount, "new_authority": msg.NewAuthority,
	} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgRemoveValidator) String() string {
	return fmt.Sprintf("MsgRemoveValidator{Pool: %s, VoteAccount: %s}", msg.Pool, msg.VoteAccount)
}

// MsgIncreaseValidatorStake moves reserve stake into a validator's transient
// account.
type MsgIncreaseValidatorStake struct {
	Pool          string   `json:"pool"`
	Staker        string   `json:"staker"`
	VoteAccount   string   `json:"vote_account"`
	Lamports      uint64   `json:"lamports"`
	TransientSeed uint64   `json:"transient_seed"`
	Signers       []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgIncreaseValidatorStake) Type() string { return TypeMsgIncreaseValidatorStake }

// ValidateBasic performs stateless validation.
func (msg MsgIncreaseValidatorStake) ValidateBasic() error {
	for field, v := range map[string]string{
		"pool": msg.Pool, "staker": msg.Staker, "vote_account": msg.VoteAccount,
	} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	if msg.Lamports == 0 {
		return ErrStakeBelowMinimum.Wrap("lamports must be positive")
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgIncreaseValidatorStake) String() string {
	return fmt.Sprintf("MsgIncreaseValidatorStake{Pool: %s, VoteAccount: %s, Lamports: %d}",
		msg.Pool, msg.VoteAccount, msg.Lamports)
}

// MsgDecreaseValidatorStake moves validator stake into its transient account
// and deactivates it.
type MsgDecreaseValidatorStake struct {
	Pool          string   `json:"pool"`
	Staker        string   `json:"staker"`
	VoteAccount   string   `json:"vote_account"`
	Lamports      uint64   `json:"lamports"`
	TransientSeed uint64   `json:"transient_seed"`
	Signers       []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgDecreaseValidatorStake) Type() string { return TypeMsgDecreaseValidatorStake }

// ValidateBasic performs stateless validation.
func (msg MsgDecreaseValidatorStake) ValidateBasic() error {
	for field, v := range map[string]string{
		"pool": msg.Pool, "staker": msg.Staker, "vote_account": msg.VoteAccount,
	} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	if msg.Lamports == 0 {
		return ErrStakeBelowMinimum.Wrap("lamports must be positive")
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgDecreaseValidatorStake) String() string {
	return fmt.Sprintf("MsgDecreaseValidatorStake{Pool: %s, VoteAccount: %s, Lamports: %d}",
		msg.Pool, msg.VoteAccount, msg.Lamports)
}

// ValidatorUpdateEntry names one validator to refresh together with the seed
// of its current transient stake account, if any.
type ValidatorUpdateEntry struct {
	VoteAccount   string `json:"vote_account"`
	TransientSeed uint64 `json:"transient_seed"`
}

// MsgUpdateValidatorListBalance refreshes a subset of validator entries.
// Permissionless.
type MsgUpdateValidatorListBalance struct {
	Pool    string                 `json:"pool"`
	Updates []ValidatorUpdateEntry `json:"updates"`
}

// Type implements the message interface.
func (msg MsgUpdateValidatorListBalance) Type() string { return TypeMsgUpdateValidatorListBalance }

// ValidateBasic performs stateless validation.
func (msg MsgUpdateValidatorListBalance) ValidateBasic() error {
	if err := validateAddress("pool", msg.Pool); err != nil {
		return err
	}
	if len(msg.Updates) == 0 {
		return ErrValidatorNotFound.Wrap("no vote accounts supplied")
	}
	for _, upd := range msg.Updates {
		if err := validateAddress("vote_account", upd.VoteAccount); err != nil {
			return err
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (msg MsgUpdateValidatorListBalance) String() string {
	return fmt.Sprintf("MsgUpdateValidatorListBalance{Pool: %s, Updates: %d}", msg.Pool, len(msg.Updates))
}

// MsgUpdateStakePoolBalance recomputes pool totals and mints the epoch fee.
// Permissionless.
type MsgUpdateStakePoolBalance struct {
	Pool string `json:"pool"`
}

// Type implements the message interface.
func (msg MsgUpdateStakePoolBalance) Type() string { return TypeMsgUpdateStakePoolBalance }

// ValidateBasic performs stateless validation.
func (msg MsgUpdateStakePoolBalance) ValidateBasic() error {
	return validateAddress("pool", msg.Pool)
}

// String implements fmt.Stringer.
func (msg MsgUpdateStakePoolBalance) String() string {
	return fmt.Sprintf("MsgUpdateStakePoolBalance{Pool: %s}", msg.Pool)
}

// MsgDepositStake merges a user stake account into the pool for pool tokens.
type MsgDepositStake struct {
	Pool              string   `json:"pool"`
	StakeAccount      string   `json:"stake_account"`
	DestinationTokens string   `json:"destination_tokens"`
	Signers           []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgDepositStake) Type() string { return TypeMsgDepositStake }

// ValidateBasic performs stateless validation.
func (msg MsgDepositStake) ValidateBasic() error {
	for field, v := range map[string]string{
		"pool": msg.Pool, "stake_account": msg.StakeAccount, "destination_tokens": msg.DestinationTokens,
	} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgDepositStake) String() string {
	return fmt.Sprintf("MsgDepositStake{Pool: %s, StakeAccount: %s}", msg.Pool, msg.StakeAccount)
}

// MsgWithdrawStake burns pool tokens and splits stake to the caller.
type MsgWithdrawStake struct {
	Pool                 string   `json:"pool"`
	SourceVoteAccount    string   `json:"source_vote_account,omitempty"`
	DestinationStake     string   `json:"destination_stake"`
	DestinationAuthority string   `json:"destination_authority"`
	SourceTokens         string   `json:"source_tokens"`
	PoolTokens           uint64   `json:"pool_tokens"`
	Signers              []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgWithdrawStake) Type() string { return TypeMsgWithdrawStake }

// ValidateBasic performs stateless validation.
func (msg MsgWithdrawStake) ValidateBasic() error {
	fields := map[string]string{
		"pool": msg.Pool, "destination_stake": msg.DestinationStake,
		"destination_authority": msg.DestinationAuthority, "source_tokens": msg.SourceTokens,
	}
	if msg.SourceVoteAccount != "" {
		fields["source_vote_account"] = msg.SourceVoteAccount
	}
	for field, v := range fields {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	if msg.PoolTokens == 0 {
		return ErrWithdrawalTooLarge.Wrap("pool tokens must be positive")
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgWithdrawStake) String() string {
	return fmt.Sprintf("MsgWithdrawStake{Pool: %s, PoolTokens: %d}", msg.Pool, msg.PoolTokens)
}

// MsgSetFee schedules a fee change for the next epoch.
type MsgSetFee struct {
	Pool    string   `json:"pool"`
	Manager string   `json:"manager"`
	Fee     Fee      `json:"fee"`
	Signers []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgSetFee) Type() string { return TypeMsgSetFee }

// ValidateBasic performs stateless validation.
func (msg MsgSetFee) ValidateBasic() error {
	for field, v := range map[string]string{"pool": msg.Pool, "manager": msg.Manager} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	if err := msg.Fee.Validate(); err != nil {
		return err
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgSetFee) String() string {
	return fmt.Sprintf("MsgSetFee{Pool: %s, Fee: %d/%d}", msg.Pool, msg.Fee.Numerator, msg.Fee.Denominator)
}

// MsgSetManager hands the manager authority to a new key.
type MsgSetManager struct {
	Pool                 string   `json:"pool"`
	Manager              string   `json:"manager"`
	NewManager           string   `json:"new_manager"`
	NewManagerFeeAccount string   `json:"new_manager_fee_account"`
	Signers              []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgSetManager) Type() string { return TypeMsgSetManager }

// ValidateBasic performs stateless validation.
func (msg MsgSetManager) ValidateBasic() error {
	for field, v := range map[string]string{
		"pool": msg.Pool, "manager": msg.Manager,
		"new_manager": msg.NewManager, "new_manager_fee_account": msg.NewManagerFeeAccount,
	} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgSetManager) String() string {
	return fmt.Sprintf("MsgSetManager{Pool: %s, NewManager: %s}", msg.Pool, msg.NewManager)
}

// MsgSetStaker hands the staker authority to a new key. Either the manager or
// the current staker may do this.
type MsgSetStaker struct {
	Pool      string   `json:"pool"`
	Authority string   `json:"authority"`
	NewStaker string   `json:"new_staker"`
	Signers   []string `json:"signers"`
}

// Type implements the message interface.
func (msg MsgSetStaker) Type() string { return TypeMsgSetStaker }

// ValidateBasic performs stateless validation.
func (msg MsgSetStaker) ValidateBasic() error {
	for field, v := range map[string]string{
		"pool": msg.Pool, "authority": msg.Authority, "new_staker": msg.NewStaker,
	} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgSetStaker) String() string {
	return fmt.Sprintf("MsgSetStaker{Pool: %s, NewStaker: %s}", msg.Pool, msg.NewStaker)
}

// MsgSetPreferredValidator sets or clears a deposit/withdraw routing hint.
type MsgSetPreferredValidator struct {
	Pool        string   `json:"pool"`
	Staker      string   `json:"staker"`
	Kind        string   `json:"kind"` // "deposit" or "withdraw"
	VoteAccount string   `json:"vote_account,omitempty"`
	Signers     []string `json:"signers"`
}

// Preferred validator kinds.
const (
	PreferredDeposit  = "deposit"
	PreferredWithdraw = "withdraw"
)

// Type implements the message interface.
func (msg MsgSetPreferredValidator) Type() string { return TypeMsgSetPreferredValidator }

// ValidateBasic performs stateless validation.
func (msg MsgSetPreferredValidator) ValidateBasic() error {
	for field, v := range map[string]string{"pool": msg.Pool, "staker": msg.Staker} {
		if err := validateAddress(field, v); err != nil {
			return err
		}
	}
	if msg.Kind != PreferredDeposit && msg.Kind != PreferredWithdraw {
		return fmt.Errorf("kind must be %q or %q, got %q", PreferredDeposit, PreferredWithdraw, msg.Kind)
	}
	if msg.VoteAccount != "" {
		if err := validateAddress("vote_account", msg.VoteAccount); err != nil {
			return err
		}
	}
	return validateSigners(msg.Signers)
}

// String implements fmt.Stringer.
func (msg MsgSetPreferredValidator) String() string {
	return fmt.Sprintf("MsgSetPreferredValidator{Pool: %s, Kind: %s, VoteAccount: %s}", msg.Pool, msg.Kind, msg.VoteAccount)
}
