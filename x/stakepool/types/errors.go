package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Module error codes. Grouped by kind: authorization, structural/address,
// state conflict, arithmetic, capacity. Every failure aborts its whole
// operation; state-conflict errors are the designed caller-retry path.
var (
	// Authorization
	ErrWrongManager     = errorsmod.Register(ModuleName, 1, "wrong pool manager")
	ErrWrongStaker      = errorsmod.Register(ModuleName, 2, "wrong pool staker")
	ErrSignatureMissing = errorsmod.Register(ModuleName, 3, "required signature missing")

	// Structural / address
	ErrInvalidProgramAddress = errorsmod.Register(ModuleName, 4, "derived address mismatch")
	ErrWrongAccountKind      = errorsmod.Register(ModuleName, 5, "wrong account kind")
	ErrInvalidValidatorList  = errorsmod.Register(ModuleName, 6, "wrong validator list account")
	ErrWrongReserveStake     = errorsmod.Register(ModuleName, 7, "wrong reserve stake account")
	ErrWrongPoolMint         = errorsmod.Register(ModuleName, 8, "wrong pool mint account")
	ErrWrongManagerFee       = errorsmod.Register(ModuleName, 9, "wrong manager fee account")
	ErrAccountDataTooSmall   = errorsmod.Register(ModuleName, 10, "account data too small")
	ErrAlreadyInUse          = errorsmod.Register(ModuleName, 11, "account already initialized")
	ErrWrongStakeState       = errorsmod.Register(ModuleName, 12, "stake account in unexpected state")
	ErrInvalidLockup         = errorsmod.Register(ModuleName, 13, "lockup does not match pool lockup")

	// State conflict
	ErrValidatorAlreadyAdded        = errorsmod.Register(ModuleName, 14, "validator already in pool")
	ErrValidatorNotFound            = errorsmod.Register(ModuleName, 15, "validator not found in pool")
	ErrValidatorStakeStillActive    = errorsmod.Register(ModuleName, 16, "validator still has active or transient stake")
	ErrTransientAccountInUse        = errorsmod.Register(ModuleName, 17, "transient stake account already in use")
	ErrStakeListOutOfDate           = errorsmod.Register(ModuleName, 18, "validator list is out of date")
	ErrStakeListAndPoolOutOfDate    = errorsmod.Register(ModuleName, 19, "pool totals are out of date, run the balance updates first")
	ErrActiveStakeExists            = errorsmod.Register(ModuleName, 20, "reserve withdrawal blocked while validators hold active stake")
	ErrIncorrectDepositVoteAddress  = errorsmod.Register(ModuleName, 21, "deposit must target the preferred deposit validator")
	ErrIncorrectWithdrawVoteAddress = errorsmod.Register(ModuleName, 22, "withdrawal must draw from the preferred withdraw validator")
	ErrUnknownValidator             = errorsmod.Register(ModuleName, 23, "stake account not delegated to a pool validator")

	// Arithmetic
	ErrCalculationFailure = errorsmod.Register(ModuleName, 24, "overflow or division by zero in pool arithmetic")
	ErrInvalidFee         = errorsmod.Register(ModuleName, 25, "invalid fee ratio")

	// Capacity / amounts
	ErrMaxValidatorsReached = errorsmod.Register(ModuleName, 26, "validator list is full")
	ErrStakeBelowMinimum    = errorsmod.Register(ModuleName, 27, "stake amount below minimum")
	ErrInsufficientStake    = errorsmod.Register(ModuleName, 28, "stake account balance insufficient")
	ErrWithdrawalTooLarge   = errorsmod.Register(ModuleName, 29, "withdrawal exceeds available stake")
)
