package types

import (
	"encoding/binary"
)

// StakePoolLen is the fixed width of an encoded stake pool record. Optional
// fields always reserve their full width so every field lives at a stable
// offset.
const StakePoolLen = 1 + // account tag
	3*AddressLen + // manager, staker, deposit authority
	1 + // withdraw bump seed
	4*AddressLen + // validator list, reserve, mint, manager fee account
	3*8 + // total stake, token supply, last update epoch
	(8 + 8 + AddressLen) + // lockup
	16 + // fee
	(1 + 16) + // next epoch fee
	(1 + AddressLen) + // preferred deposit validator
	(1 + AddressLen) // preferred withdraw validator

type poolCursor struct {
	buf []byte
	off int
}

func (c *poolCursor) address(a Address) {
	copy(c.buf[c.off:], a[:])
	c.off += AddressLen
}

func (c *poolCursor) u64(v uint64) {
	binary.LittleEndian.PutUint64(c.buf[c.off:], v)
	c.off += 8
}

func (c *poolCursor) u8(v uint8) {
	c.buf[c.off] = v
	c.off++
}

func (c *poolCursor) readAddress() Address {
	var a Address
	copy(a[:], c.buf[c.off:c.off+AddressLen])
	c.off += AddressLen
	return a
}

func (c *poolCursor) readU64() uint64 {
	v := binary.LittleEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return v
}

func (c *poolCursor) readU8() uint8 {
	v := c.buf[c.off]
	c.off++
	return v
}

// Encode serializes the pool record with its leading account tag.
func (sp *StakePool) Encode() []byte {
	c := &poolCursor{buf: make([]byte, StakePoolLen)}
	c.u8(byte(sp.AccountType))
	c.address(sp.Manager)
	c.address(sp.Staker)
	c.address(sp.DepositAuthority)
	c.u8(sp.WithdrawBumpSeed)
	c.address(sp.ValidatorList)
	c.address(sp.ReserveStake)
	c.address(sp.PoolMint)
	c.address(sp.ManagerFeeAccount)
	c.u64(sp.TotalStakeLamports)
	c.u64(sp.PoolTokenSupply)
	c.u64(sp.LastUpdateEpoch)
	c.u64(uint64(sp.Lockup.UnixTimestamp))
	c.u64(sp.Lockup.Epoch)
	c.address(sp.Lockup.Custodian)
	c.u64(sp.Fee.Denominator)
	c.u64(sp.Fee.Numerator)
	if sp.NextEpochFee != nil {
		c.u8(1)
		c.u64(sp.NextEpochFee.Denominator)
		c.u64(sp.NextEpochFee.Numerator)
	} else {
		c.u8(0)
		c.u64(0)
		c.u64(0)
	}
	encodeOptionalAddress(c, sp.PreferredDepositValidator)
	encodeOptionalAddress(c, sp.PreferredWithdrawValidator)
	return c.buf
}

func encodeOptionalAddress(c *poolCursor, a *Address) {
	if a != nil {
		c.u8(1)
		c.address(*a)
	} else {
		c.u8(0)
		c.address(ZeroAddress)
	}
}

func decodeOptionalAddress(c *poolCursor) *Address {
	present := c.readU8()
	addr := c.readAddress()
	if present == 0 {
		return nil
	}
	return &addr
}

// DecodeStakePool deserializes a pool record, checking the account tag before
// reading any field.
func DecodeStakePool(data []byte) (*StakePool, error) {
	if len(data) < StakePoolLen {
		return nil, ErrAccountDataTooSmall.Wrapf("stake pool record needs %d bytes, got %d", StakePoolLen, len(data))
	}
	if AccountType(data[0]) != AccountTypeStakePool {
		return nil, ErrWrongAccountKind.Wrapf("tag %d is not a stake pool", data[0])
	}
	c := &poolCursor{buf: data}
	sp := &StakePool{}
	sp.AccountType = AccountType(c.readU8())
	sp.Manager = c.readAddress()
	sp.Staker = c.readAddress()
	sp.DepositAuthority = c.readAddress()
	sp.WithdrawBumpSeed = c.readU8()
	sp.ValidatorList = c.readAddress()
	sp.ReserveStake = c.readAddress()
	sp.PoolMint = c.readAddress()
	sp.ManagerFeeAccount = c.readAddress()
	sp.TotalStakeLamports = c.readU64()
	sp.PoolTokenSupply = c.readU64()
	sp.LastUpdateEpoch = c.readU64()
	sp.Lockup.UnixTimestamp = int64(c.readU64())
	sp.Lockup.Epoch = c.readU64()
	sp.Lockup.Custodian = c.readAddress()
	sp.Fee.Denominator = c.readU64()
	sp.Fee.Numerator = c.readU64()
	if c.readU8() == 1 {
		fee := Fee{Denominator: c.readU64(), Numerator: c.readU64()}
		sp.NextEpochFee = &fee
	} else {
		c.readU64()
		c.readU64()
	}
	sp.PreferredDepositValidator = decodeOptionalAddress(c)
	sp.PreferredWithdrawValidator = decodeOptionalAddress(c)
	return sp, nil
}
