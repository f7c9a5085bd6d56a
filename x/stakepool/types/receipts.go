package types

import (
	"github.com/google/uuid"
)

// DepositReceipt records the outcome of a stake deposit.
type DepositReceipt struct {
	ReceiptID     string  `json:"receipt_id"`
	Pool          Address `json:"pool"`
	VoteAccount   Address `json:"vote_account"`
	StakeLamports uint64  `json:"stake_lamports"`
	PoolTokens    uint64  `json:"pool_tokens"`
	Epoch         uint64  `json:"epoch"`
}

// NewDepositReceipt builds a deposit receipt with a fresh identifier.
func NewDepositReceipt(pool, voteAccount Address, stakeLamports, poolTokens, epoch uint64) *DepositReceipt {
	return &DepositReceipt{
		ReceiptID:     "dep-" + uuid.NewString(),
		Pool:          pool,
		VoteAccount:   voteAccount,
		StakeLamports: stakeLamports,
		PoolTokens:    poolTokens,
		Epoch:         epoch,
	}
}

// WithdrawReceipt records the outcome of a stake withdrawal.
type WithdrawReceipt struct {
	ReceiptID  string  `json:"receipt_id"`
	Pool       Address `json:"pool"`
	Source     Address `json:"source"`
	Lamports   uint64  `json:"lamports"`
	PoolTokens uint64  `json:"pool_tokens"`
	Epoch      uint64  `json:"epoch"`
}

// NewWithdrawReceipt builds a withdrawal receipt with a fresh identifier.
func NewWithdrawReceipt(pool, source Address, lamports, poolTokens, epoch uint64) *WithdrawReceipt {
	return &WithdrawReceipt{
		ReceiptID:  "wth-" + uuid.NewString(),
		Pool:       pool,
		Source:     source,
		Lamports:   lamports,
		PoolTokens: poolTokens,
		Epoch:      epoch,
	}
}
