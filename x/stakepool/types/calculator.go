package types

import (
	"cosmossdk.io/math"
)

// Exchange-rate and fee arithmetic. All intermediates run on math.Int so the
// u64 * u64 products cannot overflow; converting back to uint64 is range
// checked and any failure surfaces as ErrCalculationFailure instead of a
// silently wrong value.

// PoolTokensForDeposit returns the pool tokens to mint for a deposit of
// stakeLamports at the current exchange rate. While either total is zero the
// pool is bootstrapping and the rate is 1:1.
func (sp *StakePool) PoolTokensForDeposit(stakeLamports uint64) (uint64, error) {
	if sp.TotalStakeLamports == 0 || sp.PoolTokenSupply == 0 {
		return stakeLamports, nil
	}
	tokens := math.NewIntFromUint64(stakeLamports).
		Mul(math.NewIntFromUint64(sp.PoolTokenSupply)).
		Quo(math.NewIntFromUint64(sp.TotalStakeLamports))
	if !tokens.IsUint64() {
		return 0, ErrCalculationFailure.Wrapf("deposit of %d lamports overflows pool tokens", stakeLamports)
	}
	return tokens.Uint64(), nil
}

// LamportsForWithdraw returns the lamports redeemable for poolTokens at the
// current exchange rate.
func (sp *StakePool) LamportsForWithdraw(poolTokens uint64) (uint64, error) {
	if sp.PoolTokenSupply == 0 {
		return 0, ErrCalculationFailure.Wrap("pool token supply is zero")
	}
	lamports := math.NewIntFromUint64(poolTokens).
		Mul(math.NewIntFromUint64(sp.TotalStakeLamports)).
		Quo(math.NewIntFromUint64(sp.PoolTokenSupply))
	if !lamports.IsUint64() {
		return 0, ErrCalculationFailure.Wrapf("withdrawal of %d pool tokens overflows lamports", poolTokens)
	}
	return lamports.Uint64(), nil
}

// FeeInPoolTokens converts the manager's cut of rewardLamports into pool
// tokens. rewardLamports must not have been added to TotalStakeLamports yet.
//
// The fee is first taken in lamports, then converted using the post-reward
// total minus the fee itself as denominator. Minting against that reduced
// total prices the fee shares as if they had joined the same deposit that
// produced the reward, so the manager's post-mint share of the larger pool
// equals the fee fraction of the reward.
func (sp *StakePool) FeeInPoolTokens(rewardLamports uint64) (uint64, error) {
	if sp.Fee.Denominator == 0 || rewardLamports == 0 {
		return 0, nil
	}
	reward := math.NewIntFromUint64(rewardLamports)
	postRewardTotal := math.NewIntFromUint64(sp.TotalStakeLamports).Add(reward)
	feeLamports := reward.
		Mul(math.NewIntFromUint64(sp.Fee.Numerator)).
		Quo(math.NewIntFromUint64(sp.Fee.Denominator))
	denominator := postRewardTotal.Sub(feeLamports)
	if !denominator.IsPositive() {
		return 0, ErrCalculationFailure.Wrapf("fee %d/%d consumes the whole pool", sp.Fee.Numerator, sp.Fee.Denominator)
	}
	tokens := math.NewIntFromUint64(sp.PoolTokenSupply).
		Mul(feeLamports).
		Quo(denominator)
	if !tokens.IsUint64() {
		return 0, ErrCalculationFailure.Wrapf("fee on %d reward lamports overflows pool tokens", rewardLamports)
	}
	return tokens.Uint64(), nil
}

// AddUint64 sums two uint64 values with overflow checked.
func AddUint64(a, b uint64) (uint64, error) {
	sum := math.NewIntFromUint64(a).Add(math.NewIntFromUint64(b))
	if !sum.IsUint64() {
		return 0, ErrCalculationFailure.Wrapf("%d + %d overflows", a, b)
	}
	return sum.Uint64(), nil
}

// SubUint64 subtracts b from a, failing on underflow.
func SubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrCalculationFailure.Wrapf("%d - %d underflows", a, b)
	}
	return a - b, nil
}
