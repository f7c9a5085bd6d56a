package types

import (
	"reflect"
	"testing"
)

func samplePool() *StakePool {
	return &StakePool{
		AccountType:        AccountTypeStakePool,
		Manager:            testAddr("manager"),
		Staker:             testAddr("staker"),
		DepositAuthority:   testAddr("deposit-authority"),
		WithdrawBumpSeed:   255,
		ValidatorList:      testAddr("validator-list"),
		ReserveStake:       testAddr("reserve"),
		PoolMint:           testAddr("mint"),
		ManagerFeeAccount:  testAddr("fee-account"),
		TotalStakeLamports: 5_000_000_000,
		PoolTokenSupply:    4_900_000_000,
		LastUpdateEpoch:    321,
		Lockup:             Lockup{UnixTimestamp: -1, Epoch: 7, Custodian: testAddr("custodian")},
		Fee:                Fee{Denominator: 100, Numerator: 3},
	}
}

func TestStakePoolRoundTrip(t *testing.T) {
	nextFee := Fee{Denominator: 50, Numerator: 1}
	preferred := testAddr("preferred-vote")

	tests := []struct {
		name   string
		mutate func(*StakePool)
	}{
		{"base", func(sp *StakePool) {}},
		{"next epoch fee", func(sp *StakePool) { sp.NextEpochFee = &nextFee }},
		{"preferred deposit", func(sp *StakePool) { sp.PreferredDepositValidator = &preferred }},
		{"preferred withdraw", func(sp *StakePool) { sp.PreferredWithdrawValidator = &preferred }},
		{"all optionals", func(sp *StakePool) {
			sp.NextEpochFee = &nextFee
			sp.PreferredDepositValidator = &preferred
			sp.PreferredWithdrawValidator = &preferred
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sp := samplePool()
			tc.mutate(sp)
			data := sp.Encode()
			if len(data) != StakePoolLen {
				t.Errorf("encoded %d bytes, want %d", len(data), StakePoolLen)
			}
			decoded, err := DecodeStakePool(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(sp, decoded) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, sp)
			}
		})
	}
}

func TestDecodeStakePoolRejects(t *testing.T) {
	sp := samplePool()
	data := sp.Encode()

	if _, err := DecodeStakePool(data[:StakePoolLen-1]); !ErrAccountDataTooSmall.Is(err) {
		t.Errorf("short buffer: got %v, want ErrAccountDataTooSmall", err)
	}

	data[0] = byte(AccountTypeValidatorList)
	if _, err := DecodeStakePool(data); !ErrWrongAccountKind.Is(err) {
		t.Errorf("wrong tag: got %v, want ErrWrongAccountKind", err)
	}

	data[0] = byte(AccountTypeUninitialized)
	if _, err := DecodeStakePool(data); !ErrWrongAccountKind.Is(err) {
		t.Errorf("uninitialized tag: got %v, want ErrWrongAccountKind", err)
	}
}
