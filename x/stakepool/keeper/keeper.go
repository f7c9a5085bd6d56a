package keeper

import (
	"cosmossdk.io/log"

	"github.com/openalpha/stake-pool/metrics"
	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// ActivationStatus is the lifecycle phase of a native stake account.
type ActivationStatus uint8

const (
	// StakeInactive means the account holds no live delegation.
	StakeInactive ActivationStatus = iota
	// StakeActivating means the delegation warms up this epoch.
	StakeActivating
	// StakeActive means the delegation earns rewards.
	StakeActive
	// StakeDeactivating means the delegation cools down this epoch.
	StakeDeactivating
)

// String implements fmt.Stringer.
func (s ActivationStatus) String() string {
	switch s {
	case StakeInactive:
		return "inactive"
	case StakeActivating:
		return "activating"
	case StakeActive:
		return "active"
	case StakeDeactivating:
		return "deactivating"
	default:
		return "unknown"
	}
}

// StakeAccount is the engine's view of a native stake account.
type StakeAccount struct {
	Address           types.Address
	Lamports          uint64
	VoteAccount       types.Address
	Activation        ActivationStatus
	CreditsObserved   uint64
	Lockup            types.Lockup
	StakeAuthority    types.Address
	WithdrawAuthority types.Address
}

// IsDelegated reports whether the account carries a live delegation.
func (a *StakeAccount) IsDelegated() bool {
	return !a.VoteAccount.IsZero()
}

// StakeService is the native staking primitive the engine drives. Each
// method either fully applies or fails without effect.
type StakeService interface {
	// Account returns the stake account at addr, or nil when none exists.
	Account(addr types.Address) (*StakeAccount, error)
	// Split moves lamports from an existing stake account into a new one
	// at dest, carrying over authorities and lockup.
	Split(from types.Address, lamports uint64, dest types.Address) error
	// Merge folds the source account into dest and removes the source.
	Merge(source, dest types.Address) error
	// Delegate points the account's stake at the given vote account.
	Delegate(addr, voteAccount types.Address) error
	// Deactivate starts cooling the account's delegation down.
	Deactivate(addr types.Address) error
	// Authorize reassigns the account's stake and withdraw authorities.
	Authorize(addr, stakeAuthority, withdrawAuthority types.Address) error
	// RentExemptMinimum is the smallest balance a stake account may hold.
	RentExemptMinimum() uint64
}

// TokenService is the fungible pool-share token primitive, keyed by mint.
type TokenService interface {
	MintTo(mint, account types.Address, amount uint64) error
	Burn(mint, account types.Address, amount uint64) error
	Transfer(from, to types.Address, amount uint64) error
	Supply(mint types.Address) (uint64, error)
	Balance(account types.Address) (uint64, error)
}

// Ledger is the keyed record storage the engine persists its own state in.
type Ledger interface {
	// ReadAccount returns the record bytes at addr, or nil when absent.
	ReadAccount(addr types.Address) ([]byte, error)
	// WriteAccount replaces the record bytes at addr.
	WriteAccount(addr types.Address, data []byte) error
}

// Clock exposes the epoch the engine stamps its staleness checks with.
type Clock interface {
	CurrentEpoch() uint64
}

// Config carries the engine's injected identity and tuning knobs. There are
// no process-wide program ids; everything arrives here.
type Config struct {
	// ProgramID namespaces every derived address.
	ProgramID types.Address

	// MinimumActiveStake floors stake moved through transient accounts.
	// Zero selects types.MinimumActiveStake.
	MinimumActiveStake uint64
}

// Keeper is the stake pool engine. All operations execute one at a time to
// completion; the only cross-call coordination is the state persisted in the
// ledger records themselves.
type Keeper struct {
	cfg     Config
	ledger  Ledger
	stake   StakeService
	token   TokenService
	clock   Clock
	logger  log.Logger
	metrics *metrics.Collector
}

// NewKeeper wires the engine to its external collaborators. The metrics
// collector may be nil.
func NewKeeper(
	cfg Config,
	ledger Ledger,
	stake StakeService,
	token TokenService,
	clock Clock,
	logger log.Logger,
	collector *metrics.Collector,
) *Keeper {
	if cfg.MinimumActiveStake == 0 {
		cfg.MinimumActiveStake = types.MinimumActiveStake
	}
	return &Keeper{
		cfg:     cfg,
		ledger:  ledger,
		stake:   stake,
		token:   token,
		clock:   clock,
		logger:  logger.With("module", "x/"+types.ModuleName),
		metrics: collector,
	}
}

// Logger returns the module logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// loadPool reads and decodes an initialized pool record.
func (k *Keeper) loadPool(addr types.Address) (*types.StakePool, error) {
	data, err := k.ledger.ReadAccount(addr)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, types.ErrWrongAccountKind.Wrapf("no record at %s", addr)
	}
	return types.DecodeStakePool(data)
}

func (k *Keeper) savePool(addr types.Address, sp *types.StakePool) error {
	return k.ledger.WriteAccount(addr, sp.Encode())
}

// loadValidatorList reads and fully decodes the pool's validator list.
func (k *Keeper) loadValidatorList(sp *types.StakePool) (*types.ValidatorList, error) {
	data, err := k.ledger.ReadAccount(sp.ValidatorList)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, types.ErrInvalidValidatorList.Wrapf("no record at %s", sp.ValidatorList)
	}
	return types.DecodeValidatorList(data)
}

func (k *Keeper) saveValidatorList(sp *types.StakePool, vl *types.ValidatorList) error {
	data, err := vl.Encode()
	if err != nil {
		return err
	}
	return k.ledger.WriteAccount(sp.ValidatorList, data)
}

// withdrawAuthority recomputes the pool's derived withdraw authority.
func (k *Keeper) withdrawAuthority(poolAddr types.Address, sp *types.StakePool) types.Address {
	return types.CreateAddressWithBump(k.cfg.ProgramID, sp.WithdrawBumpSeed, poolAddr.Bytes(), types.SeedWithdraw)
}

// stakeAddress derives a validator's canonical stake account.
func (k *Keeper) stakeAddress(voteAccount, poolAddr types.Address) types.Address {
	addr, _ := types.FindStakeAddress(k.cfg.ProgramID, voteAccount, poolAddr)
	return addr
}

// transientStakeAddress derives a validator's transient stake account.
func (k *Keeper) transientStakeAddress(voteAccount, poolAddr types.Address, seed uint64) types.Address {
	addr, _ := types.FindTransientStakeAddress(k.cfg.ProgramID, voteAccount, poolAddr, seed)
	return addr
}
