package types

// Module name and store key
const (
	ModuleName = "stakepool"
	StoreKey   = ModuleName
)

// MinimumActiveStake is the smallest stake delta worth moving through a
// transient account. Splitting less than this risks merge failures later when
// credits-observed weighting rounds the tiny delegation away.
const MinimumActiveStake uint64 = 1_000_000

// AccountType tags every record persisted by the engine. The tag byte leads
// the layout and is checked before any full decode, so handing the wrong kind
// of account to an operation fails fast instead of misinterpreting bytes.
type AccountType uint8

const (
	// AccountTypeUninitialized marks an account that has never been written.
	AccountTypeUninitialized AccountType = iota
	// AccountTypeStakePool marks a stake pool record.
	AccountTypeStakePool
	// AccountTypeValidatorList marks a validator list record.
	AccountTypeValidatorList
)

// Fee is a fee ratio, minted on UpdateStakePoolBalance as a proportion of the
// epoch rewards.
type Fee struct {
	Denominator uint64 `json:"denominator"`
	Numerator   uint64 `json:"numerator"`
}

// Validate rejects fees of 100% or more. A zero denominator encodes "no fee"
// and is allowed.
func (f Fee) Validate() error {
	if f.Denominator > 0 && f.Numerator >= f.Denominator {
		return ErrInvalidFee.Wrapf("fee %d/%d must stay below one", f.Numerator, f.Denominator)
	}
	if f.Denominator == 0 && f.Numerator > 0 {
		return ErrInvalidFee.Wrap("fee with zero denominator must have zero numerator")
	}
	return nil
}

// IsZero reports whether the fee takes nothing.
func (f Fee) IsZero() bool {
	return f.Numerator == 0 || f.Denominator == 0
}

// Lockup is the constraint every member stake account must share with the
// pool. Mixing lockups would let a withdrawal land in an account the user
// cannot actually spend from.
type Lockup struct {
	UnixTimestamp int64   `json:"unix_timestamp"`
	Epoch         uint64  `json:"epoch"`
	Custodian     Address `json:"custodian"`
}

// StakePool is the top-level pool record, one per pool instance.
type StakePool struct {
	// AccountType must be AccountTypeStakePool once initialized.
	AccountType AccountType

	// Manager may update the staker, manager, and fee schedule.
	Manager Address

	// Staker may add and remove validators and move stake between them.
	Staker Address

	// DepositAuthority must co-sign deposits. Defaults to the derived
	// deposit address when no explicit key is configured at initialization.
	DepositAuthority Address

	// WithdrawBumpSeed is the bump used to derive the withdraw authority.
	WithdrawBumpSeed uint8

	// ValidatorList references the validator list record.
	ValidatorList Address

	// ReserveStake holds deactivated stake awaiting redelegation.
	ReserveStake Address

	// PoolMint references the fungible pool-share token mint.
	PoolMint Address

	// ManagerFeeAccount receives minted fee shares.
	ManagerFeeAccount Address

	// TotalStakeLamports is the cached sum of all stake under management.
	// Only accurate when LastUpdateEpoch matches the current epoch.
	TotalStakeLamports uint64

	// PoolTokenSupply mirrors the mint's live supply.
	PoolTokenSupply uint64

	// LastUpdateEpoch is when the cached totals were last refreshed.
	LastUpdateEpoch uint64

	// Lockup that all member stake accounts must carry.
	Lockup Lockup

	// Fee charged on epoch rewards.
	Fee Fee

	// NextEpochFee, when present, replaces Fee at the next balance update.
	NextEpochFee *Fee

	// PreferredDepositValidator, when present, is the only validator
	// deposits may target.
	PreferredDepositValidator *Address

	// PreferredWithdrawValidator, when present, is the only validator
	// withdrawals may draw from.
	PreferredWithdrawValidator *Address
}

// IsValid reports whether the record is initialized as a stake pool.
func (sp *StakePool) IsValid() bool {
	return sp.AccountType == AccountTypeStakePool
}

// IsUninitialized reports whether the record has never been initialized.
func (sp *StakePool) IsUninitialized() bool {
	return sp.AccountType == AccountTypeUninitialized
}

// CheckManager verifies the supplied manager key and its signature.
func (sp *StakePool) CheckManager(manager Address, signers []Address) error {
	if manager != sp.Manager {
		return ErrWrongManager.Wrapf("expected %s, got %s", sp.Manager, manager)
	}
	if !HasSigner(signers, manager) {
		return ErrSignatureMissing.Wrap("manager signature missing")
	}
	return nil
}

// CheckStaker verifies the supplied staker key and its signature.
func (sp *StakePool) CheckStaker(staker Address, signers []Address) error {
	if staker != sp.Staker {
		return ErrWrongStaker.Wrapf("expected %s, got %s", sp.Staker, staker)
	}
	if !HasSigner(signers, staker) {
		return ErrSignatureMissing.Wrap("staker signature missing")
	}
	return nil
}

// CheckDepositAuthority verifies that the pool's deposit authority signed.
func (sp *StakePool) CheckDepositAuthority(signers []Address) error {
	if !HasSigner(signers, sp.DepositAuthority) {
		return ErrSignatureMissing.Wrapf("deposit authority %s signature missing", sp.DepositAuthority)
	}
	return nil
}

// CheckWithdrawAuthority recomputes the derived withdraw authority from the
// stored bump and compares it against the supplied address.
func (sp *StakePool) CheckWithdrawAuthority(programID, stakePool, authority Address) error {
	expected := CreateAddressWithBump(programID, sp.WithdrawBumpSeed, stakePool.Bytes(), SeedWithdraw)
	if authority != expected {
		return ErrInvalidProgramAddress.Wrapf("withdraw authority: expected %s, got %s", expected, authority)
	}
	return nil
}

// CheckValidatorList verifies the supplied validator list account reference.
func (sp *StakePool) CheckValidatorList(validatorList Address) error {
	if validatorList != sp.ValidatorList {
		return ErrInvalidValidatorList.Wrapf("expected %s, got %s", sp.ValidatorList, validatorList)
	}
	return nil
}

// CheckReserveStake verifies the supplied reserve stake account reference.
func (sp *StakePool) CheckReserveStake(reserve Address) error {
	if reserve != sp.ReserveStake {
		return ErrWrongReserveStake.Wrapf("expected %s, got %s", sp.ReserveStake, reserve)
	}
	return nil
}

// CheckMint verifies the supplied pool mint reference.
func (sp *StakePool) CheckMint(mint Address) error {
	if mint != sp.PoolMint {
		return ErrWrongPoolMint.Wrapf("expected %s, got %s", sp.PoolMint, mint)
	}
	return nil
}

// IsStale reports whether the cached totals cannot be trusted for pricing.
func (sp *StakePool) IsStale(currentEpoch uint64) bool {
	return sp.LastUpdateEpoch < currentEpoch
}
