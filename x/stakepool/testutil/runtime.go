// Package testutil provides an in-memory runtime standing in for the external
// ledger, staking, and token collaborators in tests.
package testutil

import (
	"fmt"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/openalpha/stake-pool/x/stakepool/keeper"
	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// RentExemptMinimum is the stake account rent floor the runtime enforces.
const RentExemptMinimum uint64 = 2_282_880

// TokenAccount is one fungible token balance.
type TokenAccount struct {
	Mint    types.Address
	Balance uint64
}

// Runtime is an in-memory implementation of the keeper's collaborator
// interfaces. Records live in a cosmos-db MemDB; stake and token state live
// in plain maps. Epochs only move when AdvanceEpoch is called, so tests
// control activation and reward timing exactly.
type Runtime struct {
	db    dbm.DB
	epoch uint64

	stakes      map[types.Address]*keeper.StakeAccount
	voteCredits map[types.Address]uint64

	supplies map[types.Address]uint64
	tokens   map[types.Address]*TokenAccount
}

// NewRuntime creates an empty runtime at epoch zero.
func NewRuntime() *Runtime {
	return &Runtime{
		db:          dbm.NewMemDB(),
		stakes:      make(map[types.Address]*keeper.StakeAccount),
		voteCredits: make(map[types.Address]uint64),
		supplies:    make(map[types.Address]uint64),
		tokens:      make(map[types.Address]*TokenAccount),
	}
}

// TestProgramID namespaces every address the test keeper derives.
var TestProgramID = Addr("stake-pool-program-id-for-tests!")

// NewTestKeeper wires a keeper to a fresh runtime with a fixed program id.
func NewTestKeeper() (*keeper.Keeper, *Runtime) {
	rt := NewRuntime()
	k := keeper.NewKeeper(
		keeper.Config{ProgramID: TestProgramID},
		rt, rt, rt, rt,
		log.NewNopLogger(),
		nil,
	)
	return k, rt
}

// ReadAccount implements keeper.Ledger.
func (r *Runtime) ReadAccount(addr types.Address) ([]byte, error) {
	return r.db.Get(addr.Bytes())
}

// WriteAccount implements keeper.Ledger.
func (r *Runtime) WriteAccount(addr types.Address, data []byte) error {
	return r.db.Set(addr.Bytes(), data)
}

// CurrentEpoch implements keeper.Clock.
func (r *Runtime) CurrentEpoch() uint64 {
	return r.epoch
}

// AdvanceEpoch moves to the next epoch: activating stake becomes active,
// deactivating stake becomes inactive, and every active delegation observes
// one more vote credit.
func (r *Runtime) AdvanceEpoch() {
	r.epoch++
	for vote := range r.voteCredits {
		r.voteCredits[vote]++
	}
	for _, acct := range r.stakes {
		switch acct.Activation {
		case keeper.StakeActivating:
			acct.Activation = keeper.StakeActive
		case keeper.StakeDeactivating:
			acct.Activation = keeper.StakeInactive
		}
		if acct.Activation == keeper.StakeActive && acct.IsDelegated() {
			acct.CreditsObserved = r.voteCredits[acct.VoteAccount]
		}
	}
}

// RegisterVote starts credit tracking for a vote account.
func (r *Runtime) RegisterVote(vote types.Address) {
	if _, ok := r.voteCredits[vote]; !ok {
		r.voteCredits[vote] = 0
	}
}

// PutStakeAccount installs a stake account verbatim.
func (r *Runtime) PutStakeAccount(acct keeper.StakeAccount) {
	copied := acct
	r.stakes[acct.Address] = &copied
}

// CreateReserve installs an undelegated, inactive stake account.
func (r *Runtime) CreateReserve(addr types.Address, lamports uint64) {
	r.PutStakeAccount(keeper.StakeAccount{
		Address:    addr,
		Lamports:   lamports,
		Activation: keeper.StakeInactive,
	})
}

// CreateActiveStake installs a stake account actively delegated to vote with
// the runtime's current credits observed.
func (r *Runtime) CreateActiveStake(addr, vote types.Address, lamports uint64, withdrawAuthority types.Address) {
	r.RegisterVote(vote)
	r.PutStakeAccount(keeper.StakeAccount{
		Address:           addr,
		Lamports:          lamports,
		VoteAccount:       vote,
		Activation:        keeper.StakeActive,
		CreditsObserved:   r.voteCredits[vote],
		StakeAuthority:    withdrawAuthority,
		WithdrawAuthority: withdrawAuthority,
	})
}

// AddReward credits lamports to a stake account, simulating epoch rewards.
func (r *Runtime) AddReward(addr types.Address, lamports uint64) error {
	acct, ok := r.stakes[addr]
	if !ok {
		return fmt.Errorf("no stake account at %s", addr)
	}
	acct.Lamports += lamports
	return nil
}

// StakeAt returns the live stake account, or nil.
func (r *Runtime) StakeAt(addr types.Address) *keeper.StakeAccount {
	return r.stakes[addr]
}

// Account implements keeper.StakeService.
func (r *Runtime) Account(addr types.Address) (*keeper.StakeAccount, error) {
	acct, ok := r.stakes[addr]
	if !ok {
		return nil, nil
	}
	copied := *acct
	return &copied, nil
}

// Split implements keeper.StakeService.
func (r *Runtime) Split(from types.Address, lamports uint64, dest types.Address) error {
	src, ok := r.stakes[from]
	if !ok {
		return fmt.Errorf("no stake account at %s", from)
	}
	if lamports > src.Lamports {
		return fmt.Errorf("split %d exceeds balance %d at %s", lamports, src.Lamports, from)
	}
	if _, exists := r.stakes[dest]; exists {
		return fmt.Errorf("stake account already exists at %s", dest)
	}
	src.Lamports -= lamports
	r.stakes[dest] = &keeper.StakeAccount{
		Address:           dest,
		Lamports:          lamports,
		VoteAccount:       src.VoteAccount,
		Activation:        src.Activation,
		CreditsObserved:   src.CreditsObserved,
		Lockup:            src.Lockup,
		StakeAuthority:    src.StakeAuthority,
		WithdrawAuthority: src.WithdrawAuthority,
	}
	if src.Lamports == 0 {
		delete(r.stakes, from)
	}
	return nil
}

// Merge implements keeper.StakeService.
func (r *Runtime) Merge(source, dest types.Address) error {
	src, ok := r.stakes[source]
	if !ok {
		return fmt.Errorf("no stake account at %s", source)
	}
	dst, ok := r.stakes[dest]
	if !ok {
		return fmt.Errorf("no stake account at %s", dest)
	}
	dst.Lamports += src.Lamports
	delete(r.stakes, source)
	return nil
}

// Delegate implements keeper.StakeService.
func (r *Runtime) Delegate(addr, voteAccount types.Address) error {
	acct, ok := r.stakes[addr]
	if !ok {
		return fmt.Errorf("no stake account at %s", addr)
	}
	r.RegisterVote(voteAccount)
	acct.VoteAccount = voteAccount
	acct.Activation = keeper.StakeActivating
	acct.CreditsObserved = r.voteCredits[voteAccount]
	return nil
}

// Deactivate implements keeper.StakeService.
func (r *Runtime) Deactivate(addr types.Address) error {
	acct, ok := r.stakes[addr]
	if !ok {
		return fmt.Errorf("no stake account at %s", addr)
	}
	acct.Activation = keeper.StakeDeactivating
	return nil
}

// Authorize implements keeper.StakeService.
func (r *Runtime) Authorize(addr, stakeAuthority, withdrawAuthority types.Address) error {
	acct, ok := r.stakes[addr]
	if !ok {
		return fmt.Errorf("no stake account at %s", addr)
	}
	acct.StakeAuthority = stakeAuthority
	acct.WithdrawAuthority = withdrawAuthority
	return nil
}

// RentExemptMinimum implements keeper.StakeService.
func (r *Runtime) RentExemptMinimum() uint64 {
	return RentExemptMinimum
}

// MintTo implements keeper.TokenService.
func (r *Runtime) MintTo(mint, account types.Address, amount uint64) error {
	acct, ok := r.tokens[account]
	if !ok {
		acct = &TokenAccount{Mint: mint}
		r.tokens[account] = acct
	}
	if acct.Mint != mint {
		return fmt.Errorf("token account %s belongs to mint %s", account, acct.Mint)
	}
	acct.Balance += amount
	r.supplies[mint] += amount
	return nil
}

// Burn implements keeper.TokenService.
func (r *Runtime) Burn(mint, account types.Address, amount uint64) error {
	acct, ok := r.tokens[account]
	if !ok || acct.Mint != mint {
		return fmt.Errorf("no token account at %s for mint %s", account, mint)
	}
	if amount > acct.Balance {
		return fmt.Errorf("burn %d exceeds balance %d at %s", amount, acct.Balance, account)
	}
	acct.Balance -= amount
	r.supplies[mint] -= amount
	return nil
}

// Transfer implements keeper.TokenService.
func (r *Runtime) Transfer(from, to types.Address, amount uint64) error {
	src, ok := r.tokens[from]
	if !ok {
		return fmt.Errorf("no token account at %s", from)
	}
	if amount > src.Balance {
		return fmt.Errorf("transfer %d exceeds balance %d at %s", amount, src.Balance, from)
	}
	dst, ok := r.tokens[to]
	if !ok {
		dst = &TokenAccount{Mint: src.Mint}
		r.tokens[to] = dst
	}
	if dst.Mint != src.Mint {
		return fmt.Errorf("token account %s belongs to mint %s", to, dst.Mint)
	}
	src.Balance -= amount
	dst.Balance += amount
	return nil
}

// Supply implements keeper.TokenService.
func (r *Runtime) Supply(mint types.Address) (uint64, error) {
	return r.supplies[mint], nil
}

// Balance implements keeper.TokenService.
func (r *Runtime) Balance(account types.Address) (uint64, error) {
	acct, ok := r.tokens[account]
	if !ok {
		return 0, nil
	}
	return acct.Balance, nil
}

// Addr builds a deterministic test address from a label.
func Addr(label string) types.Address {
	var a types.Address
	copy(a[:], label)
	return a
}
