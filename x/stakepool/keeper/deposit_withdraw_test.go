package keeper_test

import (
	"context"
	"testing"

	"github.com/openalpha/stake-pool/x/stakepool/keeper"
	"github.com/openalpha/stake-pool/x/stakepool/testutil"
	"github.com/openalpha/stake-pool/x/stakepool/types"
)

func TestDepositStakeBootstrap(t *testing.T) {
	e := newEnv(t, types.Fee{})
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)

	amount := uint64(100 * solLamports)
	receipt := e.depositStake(t, vote, testutil.Addr("user-stake"), testutil.Addr("user-tokens"), amount)

	// An empty pool prices deposits 1:1.
	if receipt.PoolTokens != amount {
		t.Errorf("minted %d pool tokens, want %d", receipt.PoolTokens, amount)
	}
	if receipt.StakeLamports != amount || receipt.VoteAccount != vote {
		t.Errorf("receipt %+v", receipt)
	}
	if receipt.ReceiptID == "" {
		t.Error("receipt has no id")
	}

	balance, err := e.rt.Balance(testutil.Addr("user-tokens"))
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != amount {
		t.Errorf("user token balance %d, want %d", balance, amount)
	}

	sp := e.readPool(t)
	if sp.TotalStakeLamports != amount || sp.PoolTokenSupply != amount {
		t.Errorf("pool totals %d/%d, want %d/%d", sp.TotalStakeLamports, sp.PoolTokenSupply, amount, amount)
	}
	if e.entry(t, vote).ActiveStakeLamports != amount {
		t.Errorf("entry active %d, want %d", e.entry(t, vote).ActiveStakeLamports, amount)
	}

	// The user account was merged into the canonical one.
	if e.rt.StakeAt(testutil.Addr("user-stake")) != nil {
		t.Error("user stake account survived the merge")
	}
	canonical := e.rt.StakeAt(e.stakeAddr(vote))
	if canonical.Lamports != testutil.RentExemptMinimum+amount {
		t.Errorf("canonical %d lamports", canonical.Lamports)
	}
}

func TestDepositStakeRejections(t *testing.T) {
	e := newEnv(t, types.Fee{})
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)
	ctx := context.Background()

	t.Run("missing deposit authority signature", func(t *testing.T) {
		e.rt.CreateActiveStake(testutil.Addr("stake-a"), vote, solLamports, e.depositAuth)
		_, err := e.k.DepositStake(ctx, e.pool, []types.Address{testutil.Addr("someone")},
			testutil.Addr("stake-a"), testutil.Addr("tokens-a"))
		if !types.ErrSignatureMissing.Is(err) {
			t.Errorf("got %v, want ErrSignatureMissing", err)
		}
	})

	t.Run("untracked validator", func(t *testing.T) {
		e.rt.CreateActiveStake(testutil.Addr("stake-b"), testutil.Addr("vote-unknown"), solLamports, e.depositAuth)
		_, err := e.k.DepositStake(ctx, e.pool, e.depositSigners(),
			testutil.Addr("stake-b"), testutil.Addr("tokens-b"))
		if !types.ErrUnknownValidator.Is(err) {
			t.Errorf("got %v, want ErrUnknownValidator", err)
		}
	})

	t.Run("lockup mismatch", func(t *testing.T) {
		e.rt.PutStakeAccount(stakeAccountWithLockup(testutil.Addr("stake-c"), vote, solLamports,
			types.Lockup{Epoch: 99}))
		_, err := e.k.DepositStake(ctx, e.pool, e.depositSigners(),
			testutil.Addr("stake-c"), testutil.Addr("tokens-c"))
		if !types.ErrInvalidLockup.Is(err) {
			t.Errorf("got %v, want ErrInvalidLockup", err)
		}
	})

	t.Run("stale pool", func(t *testing.T) {
		e.rt.CreateActiveStake(testutil.Addr("stake-d"), vote, solLamports, e.depositAuth)
		e.rt.AdvanceEpoch()
		_, err := e.k.DepositStake(ctx, e.pool, e.depositSigners(),
			testutil.Addr("stake-d"), testutil.Addr("tokens-d"))
		if !types.ErrStakeListAndPoolOutOfDate.Is(err) {
			t.Errorf("got %v, want ErrStakeListAndPoolOutOfDate", err)
		}
	})
}

func TestDepositRoutedToPreferredValidator(t *testing.T) {
	e := newEnv(t, types.Fee{})
	preferred := testutil.Addr("vote-preferred")
	other := testutil.Addr("vote-other")
	e.addValidator(t, preferred, testutil.RentExemptMinimum)
	e.addValidator(t, other, testutil.RentExemptMinimum)

	err := e.k.SetPreferredValidator(context.Background(), e.pool, e.staker, e.stakerSigners(),
		"deposit", &preferred)
	if err != nil {
		t.Fatalf("SetPreferredValidator: %v", err)
	}

	e.rt.CreateActiveStake(testutil.Addr("user-stake"), other, solLamports, e.depositAuth)
	_, err = e.k.DepositStake(context.Background(), e.pool, e.depositSigners(),
		testutil.Addr("user-stake"), testutil.Addr("user-tokens"))
	if !types.ErrIncorrectDepositVoteAddress.Is(err) {
		t.Errorf("got %v, want ErrIncorrectDepositVoteAddress", err)
	}

	// Deposits to the preferred validator still work.
	e.depositStake(t, preferred, testutil.Addr("good-stake"), testutil.Addr("user-tokens"), solLamports)
}

func TestWithdrawStake(t *testing.T) {
	e := newEnv(t, types.Fee{})
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)
	deposited := uint64(100 * solLamports)
	e.depositStake(t, vote, testutil.Addr("user-stake"), testutil.Addr("user-tokens"), deposited)

	tokens := uint64(40 * solLamports)
	dest := testutil.Addr("payout-stake")
	owner := testutil.Addr("user-owner")
	receipt, err := e.k.WithdrawStake(context.Background(), e.pool, []types.Address{owner},
		&vote, dest, owner, testutil.Addr("user-tokens"), tokens)
	if err != nil {
		t.Fatalf("WithdrawStake: %v", err)
	}

	// The empty-fee pool trades 1:1.
	if receipt.Lamports != tokens {
		t.Errorf("redeemed %d lamports, want %d", receipt.Lamports, tokens)
	}

	payout := e.rt.StakeAt(dest)
	if payout == nil {
		t.Fatal("no payout stake account")
	}
	if payout.Lamports != tokens {
		t.Errorf("payout %d lamports, want %d", payout.Lamports, tokens)
	}
	if payout.WithdrawAuthority != owner || payout.StakeAuthority != owner {
		t.Error("payout account not handed to the recipient")
	}

	balance, _ := e.rt.Balance(testutil.Addr("user-tokens"))
	if balance != deposited-tokens {
		t.Errorf("remaining tokens %d, want %d", balance, deposited-tokens)
	}

	sp := e.readPool(t)
	if sp.TotalStakeLamports != deposited-tokens || sp.PoolTokenSupply != deposited-tokens {
		t.Errorf("pool totals %d/%d", sp.TotalStakeLamports, sp.PoolTokenSupply)
	}
	if e.entry(t, vote).ActiveStakeLamports != deposited-tokens {
		t.Errorf("entry active %d", e.entry(t, vote).ActiveStakeLamports)
	}
}

func TestWithdrawNeverExceedsDeposit(t *testing.T) {
	e := newEnv(t, types.Fee{})
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)
	deposited := uint64(100 * solLamports)
	receipt := e.depositStake(t, vote, testutil.Addr("user-stake"), testutil.Addr("user-tokens"), deposited)

	out, err := e.k.WithdrawStake(context.Background(), e.pool, []types.Address{testutil.Addr("owner")},
		&vote, testutil.Addr("payout"), testutil.Addr("owner"), testutil.Addr("user-tokens"), receipt.PoolTokens)
	if err != nil {
		t.Fatalf("WithdrawStake: %v", err)
	}
	if out.Lamports > deposited {
		t.Errorf("withdrew %d lamports from a %d deposit", out.Lamports, deposited)
	}
}

func TestWithdrawReserveGatedByActiveStake(t *testing.T) {
	e := newEnv(t, types.Fee{})
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)
	e.depositStake(t, vote, testutil.Addr("user-stake"), testutil.Addr("user-tokens"), 100*solLamports)

	// Plenty of reserve balance, but a validator still carries active stake.
	e.rt.CreateReserve(e.reserve, testutil.RentExemptMinimum+50*solLamports)
	_, err := e.k.WithdrawStake(context.Background(), e.pool, []types.Address{testutil.Addr("owner")},
		nil, testutil.Addr("payout"), testutil.Addr("owner"), testutil.Addr("user-tokens"), 10*solLamports)
	if !types.ErrActiveStakeExists.Is(err) {
		t.Errorf("got %v, want ErrActiveStakeExists", err)
	}
}

func TestWithdrawFromReserve(t *testing.T) {
	e := newEnv(t, types.Fee{})
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)
	e.depositStake(t, vote, testutil.Addr("user-stake"), testutil.Addr("user-tokens"), 20*solLamports)

	// Decommission the validator: move everything to the transient account,
	// let it deactivate, and fold it into the reserve.
	err := e.k.DecreaseValidatorStake(context.Background(), e.pool, e.staker, e.stakerSigners(), vote, 20*solLamports, 0)
	if err != nil {
		t.Fatalf("DecreaseValidatorStake: %v", err)
	}
	e.rt.AdvanceEpoch()
	e.updateAll(t, []types.Address{vote}, 0)

	// The canonical account keeps only its rent floor; take it out of
	// delegation so the list reports no active stake.
	canonical := e.rt.StakeAt(e.stakeAddr(vote))
	canonical.Activation = keeper.StakeInactive
	e.rt.AdvanceEpoch()
	e.updateAll(t, []types.Address{vote}, 0)

	if e.readList(t).HasActiveStake() {
		t.Fatal("list still reports active stake")
	}

	tokens := uint64(10 * solLamports)
	receipt, err := e.k.WithdrawStake(context.Background(), e.pool, []types.Address{testutil.Addr("owner")},
		nil, testutil.Addr("payout"), testutil.Addr("owner"), testutil.Addr("user-tokens"), tokens)
	if err != nil {
		t.Fatalf("WithdrawStake from reserve: %v", err)
	}
	if receipt.Source != e.reserve {
		t.Errorf("withdrew from %s, want the reserve", receipt.Source)
	}
}

func TestWithdrawRejectsOversizedRedemption(t *testing.T) {
	e := newEnv(t, types.Fee{})
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)
	e.depositStake(t, vote, testutil.Addr("user-stake"), testutil.Addr("user-tokens"), 10*solLamports)

	// Pretend the user somehow presents more tokens than the validator's
	// active stake covers.
	if err := e.rt.MintTo(e.mint, testutil.Addr("user-tokens"), 10*solLamports); err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err := e.k.WithdrawStake(context.Background(), e.pool, []types.Address{testutil.Addr("owner")},
		&vote, testutil.Addr("payout"), testutil.Addr("owner"), testutil.Addr("user-tokens"), 15*solLamports)
	if !types.ErrWithdrawalTooLarge.Is(err) {
		t.Errorf("got %v, want ErrWithdrawalTooLarge", err)
	}
}

// stakeAccountWithLockup builds an active delegated account carrying a lockup.
func stakeAccountWithLockup(addr, vote types.Address, lamports uint64, lockup types.Lockup) keeper.StakeAccount {
	return keeper.StakeAccount{
		Address:     addr,
		Lamports:    lamports,
		VoteAccount: vote,
		Activation:  keeper.StakeActive,
		Lockup:      lockup,
	}
}
