package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// AddressLen is the byte length of every account address handled by the engine.
const AddressLen = 32

// Address identifies an account in the ledger runtime.
type Address [AddressLen]byte

// ZeroAddress is the all-zero address, used as the "unset" sentinel.
var ZeroAddress Address

// AddressFromBytes builds an Address from a raw 32-byte slice.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("address must be %d bytes, got %d", AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromHex parses a hex-encoded address.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return AddressFromBytes(b)
}

// Bytes returns the address as a slice.
func (a Address) Bytes() []byte { return a[:] }

// String renders the address as lowercase hex.
func (a Address) String() string { return hex.EncodeToString(a[:]) }

// IsZero reports whether the address is the unset sentinel.
func (a Address) IsZero() bool { return a == ZeroAddress }

// Seeds used for program-derived authorities and stake accounts.
var (
	// SeedDeposit derives the default stake pool deposit authority.
	SeedDeposit = []byte("deposit")
	// SeedWithdraw derives the stake pool withdraw authority.
	SeedWithdraw = []byte("withdraw")
	// SeedTransientStake prefixes every transient stake account derivation.
	SeedTransientStake = []byte("transient")
)

// CreateAddressWithBump derives an address from the program id, the given
// seeds and an explicit bump byte. The derivation is a pure function of its
// inputs; authorities are always recomputed and compared at check time, never
// stored as signable keys.
func CreateAddressWithBump(programID Address, bump uint8, seeds ...[]byte) Address {
	h := sha256.New()
	h.Write(programID[:])
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// FindProgramAddress picks the derived address with the highest usable bump.
// Every candidate hash is usable in this scheme, so the search always settles
// on the highest bump; the bump is still surfaced and persisted so that
// authority checks recompute the exact address that was handed out.
func FindProgramAddress(programID Address, seeds ...[]byte) (Address, uint8) {
	const maxBump = 255
	return CreateAddressWithBump(programID, maxBump, seeds...), maxBump
}

// FindWithdrawAuthority derives the pool's withdraw authority.
func FindWithdrawAuthority(programID, stakePool Address) (Address, uint8) {
	return FindProgramAddress(programID, stakePool.Bytes(), SeedWithdraw)
}

// FindDepositAuthority derives the pool's default deposit authority.
func FindDepositAuthority(programID, stakePool Address) (Address, uint8) {
	return FindProgramAddress(programID, stakePool.Bytes(), SeedDeposit)
}

// FindStakeAddress derives the canonical stake account for a validator's vote
// account within a pool.
func FindStakeAddress(programID, voteAccount, stakePool Address) (Address, uint8) {
	return FindProgramAddress(programID, voteAccount.Bytes(), stakePool.Bytes())
}

// FindTransientStakeAddress derives the transient stake account for a
// validator. The seed qualifier keeps successive rebalances from colliding
// while still making the address a deterministic function of the pool and
// vote account.
func FindTransientStakeAddress(programID, voteAccount, stakePool Address, seed uint64) (Address, uint8) {
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)
	return FindProgramAddress(programID, SeedTransientStake, voteAccount.Bytes(), stakePool.Bytes(), seedBytes[:])
}

// HasSigner reports whether addr is among the keys that signed the call.
func HasSigner(signers []Address, addr Address) bool {
	for _, s := range signers {
		if s == addr {
			return true
		}
	}
	return false
}
