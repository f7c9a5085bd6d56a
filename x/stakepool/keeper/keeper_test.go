package keeper_test

import (
	"context"
	"testing"

	"github.com/openalpha/stake-pool/x/stakepool/keeper"
	"github.com/openalpha/stake-pool/x/stakepool/testutil"
	"github.com/openalpha/stake-pool/x/stakepool/types"
)

const solLamports = 1_000_000_000

// env bundles a keeper, its runtime, and one initialized pool.
type env struct {
	k  *keeper.Keeper
	rt *testutil.Runtime

	pool       types.Address
	manager    types.Address
	staker     types.Address
	list       types.Address
	reserve    types.Address
	mint       types.Address
	feeAccount types.Address

	depositAuth  types.Address
	withdrawAuth types.Address
}

func (e *env) stakerSigners() []types.Address  { return []types.Address{e.staker} }
func (e *env) managerSigners() []types.Address { return []types.Address{e.manager} }
func (e *env) depositSigners() []types.Address { return []types.Address{e.depositAuth} }

// newEnv initializes a pool with the given fee, a rent-exempt reserve, and
// room for 16 validators.
func newEnv(t *testing.T, fee types.Fee) *env {
	t.Helper()
	k, rt := testutil.NewTestKeeper()
	e := &env{
		k:          k,
		rt:         rt,
		pool:       testutil.Addr("pool"),
		manager:    testutil.Addr("manager"),
		staker:     testutil.Addr("staker"),
		list:       testutil.Addr("validator-list"),
		reserve:    testutil.Addr("reserve"),
		mint:       testutil.Addr("pool-mint"),
		feeAccount: testutil.Addr("manager-fee-account"),
	}
	e.depositAuth, _ = types.FindDepositAuthority(testutil.TestProgramID, e.pool)
	e.withdrawAuth, _ = types.FindWithdrawAuthority(testutil.TestProgramID, e.pool)

	rt.CreateReserve(e.reserve, testutil.RentExemptMinimum)
	err := k.InitializePool(context.Background(), keeper.InitializeParams{
		Pool:              e.pool,
		Manager:           e.manager,
		Staker:            e.staker,
		ValidatorList:     e.list,
		ReserveStake:      e.reserve,
		PoolMint:          e.mint,
		ManagerFeeAccount: e.feeAccount,
		Fee:               fee,
		MaxValidators:     16,
	})
	if err != nil {
		t.Fatalf("InitializePool: %v", err)
	}
	return e
}

// stakeAddr derives the canonical stake account for a vote account.
func (e *env) stakeAddr(vote types.Address) types.Address {
	addr, _ := types.FindStakeAddress(testutil.TestProgramID, vote, e.pool)
	return addr
}

// transientAddr derives the transient stake account for a vote account.
func (e *env) transientAddr(vote types.Address, seed uint64) types.Address {
	addr, _ := types.FindTransientStakeAddress(testutil.TestProgramID, vote, e.pool, seed)
	return addr
}

// addValidator installs a canonical stake account for vote, delegated and
// authorized the way AddValidator expects, then registers the validator.
func (e *env) addValidator(t *testing.T, vote types.Address, lamports uint64) {
	t.Helper()
	e.rt.CreateActiveStake(e.stakeAddr(vote), vote, lamports, e.depositAuth)
	if err := e.k.AddValidator(context.Background(), e.pool, e.staker, e.stakerSigners(), vote); err != nil {
		t.Fatalf("AddValidator(%s): %v", vote, err)
	}
}

// depositStake installs an active user stake account delegated to vote and
// deposits it, crediting pool tokens to tokenAccount.
func (e *env) depositStake(t *testing.T, vote, stakeAccount, tokenAccount types.Address, lamports uint64) *types.DepositReceipt {
	t.Helper()
	e.rt.CreateActiveStake(stakeAccount, vote, lamports, e.depositAuth)
	receipt, err := e.k.DepositStake(context.Background(), e.pool, e.depositSigners(), stakeAccount, tokenAccount)
	if err != nil {
		t.Fatalf("DepositStake: %v", err)
	}
	return receipt
}

// updateAll refreshes every listed validator with the given transient seed,
// then the pool totals.
func (e *env) updateAll(t *testing.T, votes []types.Address, seed uint64) {
	t.Helper()
	updates := make([]keeper.ValidatorBalanceUpdate, len(votes))
	for i, vote := range votes {
		updates[i] = keeper.ValidatorBalanceUpdate{VoteAccount: vote, TransientSeed: seed}
	}
	if err := e.k.UpdateValidatorListBalance(context.Background(), e.pool, updates); err != nil {
		t.Fatalf("UpdateValidatorListBalance: %v", err)
	}
	if err := e.k.UpdateStakePoolBalance(context.Background(), e.pool); err != nil {
		t.Fatalf("UpdateStakePoolBalance: %v", err)
	}
}

// readPool decodes the live pool record.
func (e *env) readPool(t *testing.T) *types.StakePool {
	t.Helper()
	data, err := e.rt.ReadAccount(e.pool)
	if err != nil || data == nil {
		t.Fatalf("read pool record: %v", err)
	}
	sp, err := types.DecodeStakePool(data)
	if err != nil {
		t.Fatalf("decode pool record: %v", err)
	}
	return sp
}

// readList decodes the live validator list record.
func (e *env) readList(t *testing.T) *types.ValidatorList {
	t.Helper()
	data, err := e.rt.ReadAccount(e.list)
	if err != nil || data == nil {
		t.Fatalf("read validator list record: %v", err)
	}
	vl, err := types.DecodeValidatorList(data)
	if err != nil {
		t.Fatalf("decode validator list record: %v", err)
	}
	return vl
}

// entry returns the list entry for vote, failing the test when absent.
func (e *env) entry(t *testing.T, vote types.Address) types.ValidatorStakeInfo {
	t.Helper()
	info := e.readList(t).Find(vote)
	if info == nil {
		t.Fatalf("validator %s not in list", vote)
	}
	return *info
}
