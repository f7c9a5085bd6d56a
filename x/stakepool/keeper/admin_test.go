package keeper_test

import (
	"context"
	"testing"

	"github.com/openalpha/stake-pool/x/stakepool/testutil"
	"github.com/openalpha/stake-pool/x/stakepool/types"
)

func TestSetFee(t *testing.T) {
	e := newEnv(t, types.Fee{Numerator: 1, Denominator: 10})
	ctx := context.Background()
	newFee := types.Fee{Numerator: 1, Denominator: 4}

	if err := e.k.SetFee(ctx, e.pool, e.manager, e.managerSigners(), newFee); err != nil {
		t.Fatalf("SetFee: %v", err)
	}
	sp := e.readPool(t)
	if sp.NextEpochFee == nil || *sp.NextEpochFee != newFee {
		t.Errorf("pending fee %+v, want %+v", sp.NextEpochFee, newFee)
	}
	if sp.Fee != (types.Fee{Numerator: 1, Denominator: 10}) {
		t.Error("current fee changed immediately")
	}

	t.Run("not the manager", func(t *testing.T) {
		err := e.k.SetFee(ctx, e.pool, e.staker, e.stakerSigners(), newFee)
		if !types.ErrWrongManager.Is(err) {
			t.Errorf("got %v, want ErrWrongManager", err)
		}
	})

	t.Run("fee of one", func(t *testing.T) {
		err := e.k.SetFee(ctx, e.pool, e.manager, e.managerSigners(), types.Fee{Numerator: 5, Denominator: 5})
		if !types.ErrInvalidFee.Is(err) {
			t.Errorf("got %v, want ErrInvalidFee", err)
		}
	})
}

func TestSetManager(t *testing.T) {
	e := newEnv(t, types.Fee{})
	ctx := context.Background()
	newManager := testutil.Addr("new-manager")
	newFeeAccount := testutil.Addr("new-fee-account")

	if err := e.k.SetManager(ctx, e.pool, e.manager, e.managerSigners(), newManager, newFeeAccount); err != nil {
		t.Fatalf("SetManager: %v", err)
	}
	sp := e.readPool(t)
	if sp.Manager != newManager || sp.ManagerFeeAccount != newFeeAccount {
		t.Errorf("manager %s fee account %s", sp.Manager, sp.ManagerFeeAccount)
	}

	// The old manager is locked out.
	err := e.k.SetManager(ctx, e.pool, e.manager, e.managerSigners(), e.manager, e.feeAccount)
	if !types.ErrWrongManager.Is(err) {
		t.Errorf("got %v, want ErrWrongManager", err)
	}

	// The new manager is in control.
	newSigners := []types.Address{newManager}
	if err := e.k.SetFee(ctx, e.pool, newManager, newSigners, types.Fee{Numerator: 1, Denominator: 2}); err != nil {
		t.Errorf("new manager rejected: %v", err)
	}
}

func TestSetStaker(t *testing.T) {
	e := newEnv(t, types.Fee{})
	ctx := context.Background()

	t.Run("manager may set", func(t *testing.T) {
		next := testutil.Addr("staker-2")
		if err := e.k.SetStaker(ctx, e.pool, e.manager, e.managerSigners(), next); err != nil {
			t.Fatalf("SetStaker: %v", err)
		}
		if e.readPool(t).Staker != next {
			t.Error("staker not updated")
		}
	})

	t.Run("current staker may hand over", func(t *testing.T) {
		current := testutil.Addr("staker-2")
		next := testutil.Addr("staker-3")
		err := e.k.SetStaker(ctx, e.pool, current, []types.Address{current}, next)
		if err != nil {
			t.Fatalf("SetStaker: %v", err)
		}
		if e.readPool(t).Staker != next {
			t.Error("staker not updated")
		}
	})

	t.Run("outsiders may not", func(t *testing.T) {
		mallory := testutil.Addr("mallory")
		err := e.k.SetStaker(ctx, e.pool, mallory, []types.Address{mallory}, mallory)
		if !types.ErrWrongStaker.Is(err) {
			t.Errorf("got %v, want ErrWrongStaker", err)
		}
	})
}

func TestSetPreferredValidator(t *testing.T) {
	e := newEnv(t, types.Fee{})
	ctx := context.Background()
	vote := testutil.Addr("vote-1")
	e.addValidator(t, vote, testutil.RentExemptMinimum)

	if err := e.k.SetPreferredValidator(ctx, e.pool, e.staker, e.stakerSigners(), "withdraw", &vote); err != nil {
		t.Fatalf("SetPreferredValidator: %v", err)
	}
	sp := e.readPool(t)
	if sp.PreferredWithdrawValidator == nil || *sp.PreferredWithdrawValidator != vote {
		t.Error("withdraw preference not set")
	}
	if sp.PreferredDepositValidator != nil {
		t.Error("deposit preference set by a withdraw update")
	}

	t.Run("unknown validator rejected", func(t *testing.T) {
		unknown := testutil.Addr("vote-unknown")
		err := e.k.SetPreferredValidator(ctx, e.pool, e.staker, e.stakerSigners(), "deposit", &unknown)
		if !types.ErrValidatorNotFound.Is(err) {
			t.Errorf("got %v, want ErrValidatorNotFound", err)
		}
	})

	t.Run("clearable", func(t *testing.T) {
		if err := e.k.SetPreferredValidator(ctx, e.pool, e.staker, e.stakerSigners(), "withdraw", nil); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if e.readPool(t).PreferredWithdrawValidator != nil {
			t.Error("withdraw preference not cleared")
		}
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		err := e.k.SetPreferredValidator(ctx, e.pool, e.staker, e.stakerSigners(), "sideways", &vote)
		if !types.ErrWrongAccountKind.Is(err) {
			t.Errorf("got %v, want ErrWrongAccountKind", err)
		}
	})
}
