package types

import (
	"encoding/binary"

	"cosmossdk.io/math"
)

// StakeStatus tracks the lifecycle of a validator's stake accounts within the
// pool list.
type StakeStatus uint8

const (
	// StakeStatusActive means the canonical stake account is live; a
	// transient stake account may exist alongside it.
	StakeStatusActive StakeStatus = iota
	// StakeStatusDeactivatingTransient means only a deactivating transient
	// stake remains, pending a merge into the reserve.
	StakeStatusDeactivatingTransient
	// StakeStatusReadyForRemoval means no stake accounts remain and the
	// entry will be compacted away on the next pool balance update.
	StakeStatusReadyForRemoval
)

// String implements fmt.Stringer.
func (s StakeStatus) String() string {
	switch s {
	case StakeStatusActive:
		return "active"
	case StakeStatusDeactivatingTransient:
		return "deactivating_transient"
	case StakeStatusReadyForRemoval:
		return "ready_for_removal"
	default:
		return "unknown"
	}
}

// ValidatorStakeInfo is one validator's entry in the list.
//
// The encoded form is a fixed 57-byte record so that single entries can be
// read and rewritten in place without decoding the whole list.
type ValidatorStakeInfo struct {
	// ActiveStakeLamports delegated via the canonical stake account. Only
	// accurate when LastUpdateEpoch matches the current epoch.
	ActiveStakeLamports uint64

	// TransientStakeLamports currently in flight via the derived transient
	// account. Same staleness caveat as ActiveStakeLamports.
	TransientStakeLamports uint64

	// LastUpdateEpoch stamps when both lamport fields were refreshed.
	LastUpdateEpoch uint64

	// Status of the entry's stake accounts.
	Status StakeStatus

	// VoteAccountAddress identifies the validator. Unique within a list.
	VoteAccountAddress Address
}

// StakeLamports returns the validator's total managed lamports, active plus
// transient, with overflow checked.
func (v *ValidatorStakeInfo) StakeLamports() (uint64, error) {
	total := math.NewIntFromUint64(v.ActiveStakeLamports).
		Add(math.NewIntFromUint64(v.TransientStakeLamports))
	if !total.IsUint64() {
		return 0, ErrCalculationFailure.Wrap("validator stake total overflows")
	}
	return total.Uint64(), nil
}

// Encoded sizes of the validator list record.
const (
	// ValidatorStakeInfoLen is the fixed width of one encoded entry:
	// active u64 | transient u64 | last_update_epoch u64 | status u8 | vote [32].
	ValidatorStakeInfoLen = 8 + 8 + 8 + 1 + AddressLen

	// ValidatorListHeaderLen covers the account tag, max_validators and the
	// live entry count: tag u8 | max u32 | count u32.
	ValidatorListHeaderLen = 1 + 4 + 4
)

// ValidatorListHeader is the fixed prefix of the validator list record,
// separated out so callers can check capacity without touching the entries.
type ValidatorListHeader struct {
	AccountType   AccountType
	MaxValidators uint32
}

// IsValid reports whether the record is initialized as a validator list.
func (h ValidatorListHeader) IsValid() bool {
	return h.AccountType == AccountTypeValidatorList
}

// IsUninitialized reports whether the record has never been initialized.
func (h ValidatorListHeader) IsUninitialized() bool {
	return h.AccountType == AccountTypeUninitialized
}

// ValidatorList is the decoded form of the list record.
type ValidatorList struct {
	Header     ValidatorListHeader
	Validators []ValidatorStakeInfo
}

// NewValidatorList creates an empty list with capacity for maxValidators.
func NewValidatorList(maxValidators uint32) *ValidatorList {
	return &ValidatorList{
		Header: ValidatorListHeader{
			AccountType:   AccountTypeValidatorList,
			MaxValidators: maxValidators,
		},
		Validators: make([]ValidatorStakeInfo, 0, maxValidators),
	}
}

// RequiredSize returns the backing buffer length needed to hold a list with
// the given capacity.
func RequiredSize(maxValidators uint32) int {
	return ValidatorListHeaderLen + int(maxValidators)*ValidatorStakeInfoLen
}

// CalculateMaxValidators is the exact inverse of RequiredSize: the number of
// entries that fit in a buffer of the given length.
func CalculateMaxValidators(bufferLength int) int {
	if bufferLength < ValidatorListHeaderLen {
		return 0
	}
	return (bufferLength - ValidatorListHeaderLen) / ValidatorStakeInfoLen
}

// Contains reports whether the list tracks the given vote account.
func (vl *ValidatorList) Contains(voteAccount Address) bool {
	return vl.Find(voteAccount) != nil
}

// Find returns a pointer to the entry for the given vote account, or nil.
// Lookup is a linear scan; capacity is bounded at pool creation and the
// authoritative use case batches updates once per epoch.
func (vl *ValidatorList) Find(voteAccount Address) *ValidatorStakeInfo {
	for i := range vl.Validators {
		if vl.Validators[i].VoteAccountAddress == voteAccount {
			return &vl.Validators[i]
		}
	}
	return nil
}

// Push appends a new entry, failing when the list is at capacity or the
// validator is already tracked.
func (vl *ValidatorList) Push(info ValidatorStakeInfo) error {
	if uint32(len(vl.Validators)) >= vl.Header.MaxValidators {
		return ErrMaxValidatorsReached.Wrapf("list holds %d validators", len(vl.Validators))
	}
	if vl.Contains(info.VoteAccountAddress) {
		return ErrValidatorAlreadyAdded.Wrapf("validator %s", info.VoteAccountAddress)
	}
	vl.Validators = append(vl.Validators, info)
	return nil
}

// Remove drops the entry for the given vote account. The staker must fully
// decommission a validator's stake before removal, so any remaining active or
// transient lamports block it.
func (vl *ValidatorList) Remove(voteAccount Address) error {
	for i := range vl.Validators {
		if vl.Validators[i].VoteAccountAddress != voteAccount {
			continue
		}
		if vl.Validators[i].ActiveStakeLamports != 0 || vl.Validators[i].TransientStakeLamports != 0 {
			return ErrValidatorStakeStillActive.Wrapf(
				"validator %s holds %d active / %d transient lamports",
				voteAccount, vl.Validators[i].ActiveStakeLamports, vl.Validators[i].TransientStakeLamports)
		}
		vl.Validators = append(vl.Validators[:i], vl.Validators[i+1:]...)
		return nil
	}
	return ErrValidatorNotFound.Wrapf("validator %s", voteAccount)
}

// HasActiveStake reports whether any entry still has active stake. Gates
// whether reserve-only withdrawals are permitted.
func (vl *ValidatorList) HasActiveStake() bool {
	for i := range vl.Validators {
		if vl.Validators[i].ActiveStakeLamports > 0 {
			return true
		}
	}
	return false
}

// Compact drops every entry flagged ReadyForRemoval.
func (vl *ValidatorList) Compact() int {
	kept := vl.Validators[:0]
	removed := 0
	for i := range vl.Validators {
		if vl.Validators[i].Status == StakeStatusReadyForRemoval {
			removed++
			continue
		}
		kept = append(kept, vl.Validators[i])
	}
	vl.Validators = kept
	return removed
}

// Encode serializes the list into a buffer sized for its full capacity, so
// the record never needs reallocating as validators come and go.
func (vl *ValidatorList) Encode() ([]byte, error) {
	if uint32(len(vl.Validators)) > vl.Header.MaxValidators {
		return nil, ErrMaxValidatorsReached.Wrapf(
			"%d validators exceed capacity %d", len(vl.Validators), vl.Header.MaxValidators)
	}
	buf := make([]byte, RequiredSize(vl.Header.MaxValidators))
	buf[0] = byte(vl.Header.AccountType)
	binary.LittleEndian.PutUint32(buf[1:5], vl.Header.MaxValidators)
	binary.LittleEndian.PutUint32(buf[5:9], uint32(len(vl.Validators)))
	for i := range vl.Validators {
		encodeValidatorStakeInfo(buf[ValidatorListHeaderLen+i*ValidatorStakeInfoLen:], &vl.Validators[i])
	}
	return buf, nil
}

// DecodeValidatorList deserializes a full list record, checking the leading
// account tag before touching the entries.
func DecodeValidatorList(data []byte) (*ValidatorList, error) {
	buf := ValidatorListBuffer(data)
	header, err := buf.Header()
	if err != nil {
		return nil, err
	}
	count, err := buf.Count()
	if err != nil {
		return nil, err
	}
	vl := &ValidatorList{
		Header:     header,
		Validators: make([]ValidatorStakeInfo, 0, count),
	}
	for i := 0; i < count; i++ {
		info, err := buf.EntryAt(i)
		if err != nil {
			return nil, err
		}
		vl.Validators = append(vl.Validators, info)
	}
	return vl, nil
}

// ValidatorListBuffer provides partial access to a raw validator list record:
// reading or rewriting a single entry by index without deserializing the
// whole list. Required because max_validators can be large and a full decode
// on every call would be prohibitively expensive.
type ValidatorListBuffer []byte

// Header decodes and validates the fixed prefix.
func (b ValidatorListBuffer) Header() (ValidatorListHeader, error) {
	if len(b) < ValidatorListHeaderLen {
		return ValidatorListHeader{}, ErrAccountDataTooSmall.Wrapf("%d bytes", len(b))
	}
	header := ValidatorListHeader{
		AccountType:   AccountType(b[0]),
		MaxValidators: binary.LittleEndian.Uint32(b[1:5]),
	}
	if !header.IsValid() {
		return ValidatorListHeader{}, ErrWrongAccountKind.Wrapf("tag %d is not a validator list", b[0])
	}
	return header, nil
}

// Count returns the number of live entries.
func (b ValidatorListBuffer) Count() (int, error) {
	if len(b) < ValidatorListHeaderLen {
		return 0, ErrAccountDataTooSmall.Wrapf("%d bytes", len(b))
	}
	count := int(binary.LittleEndian.Uint32(b[5:9]))
	if ValidatorListHeaderLen+count*ValidatorStakeInfoLen > len(b) {
		return 0, ErrAccountDataTooSmall.Wrapf("%d entries do not fit in %d bytes", count, len(b))
	}
	return count, nil
}

// EntryAt decodes the i-th entry.
func (b ValidatorListBuffer) EntryAt(i int) (ValidatorStakeInfo, error) {
	count, err := b.Count()
	if err != nil {
		return ValidatorStakeInfo{}, err
	}
	if i < 0 || i >= count {
		return ValidatorStakeInfo{}, ErrValidatorNotFound.Wrapf("entry index %d of %d", i, count)
	}
	offset := ValidatorListHeaderLen + i*ValidatorStakeInfoLen
	return decodeValidatorStakeInfo(b[offset : offset+ValidatorStakeInfoLen])
}

// PutEntryAt rewrites the i-th entry in place.
func (b ValidatorListBuffer) PutEntryAt(i int, info ValidatorStakeInfo) error {
	count, err := b.Count()
	if err != nil {
		return err
	}
	if i < 0 || i >= count {
		return ErrValidatorNotFound.Wrapf("entry index %d of %d", i, count)
	}
	encodeValidatorStakeInfo(b[ValidatorListHeaderLen+i*ValidatorStakeInfoLen:], &info)
	return nil
}

// FindEntry scans for the entry matching the vote account, comparing the
// address bytes in place so untouched entries are never decoded.
func (b ValidatorListBuffer) FindEntry(voteAccount Address) (int, ValidatorStakeInfo, error) {
	count, err := b.Count()
	if err != nil {
		return 0, ValidatorStakeInfo{}, err
	}
	for i := 0; i < count; i++ {
		offset := ValidatorListHeaderLen + i*ValidatorStakeInfoLen
		if Address(b[offset+25:offset+25+AddressLen]) != voteAccount {
			continue
		}
		info, err := decodeValidatorStakeInfo(b[offset : offset+ValidatorStakeInfoLen])
		if err != nil {
			return 0, ValidatorStakeInfo{}, err
		}
		return i, info, nil
	}
	return 0, ValidatorStakeInfo{}, ErrValidatorNotFound.Wrapf("validator %s", voteAccount)
}

func encodeValidatorStakeInfo(dst []byte, v *ValidatorStakeInfo) {
	binary.LittleEndian.PutUint64(dst[0:8], v.ActiveStakeLamports)
	binary.LittleEndian.PutUint64(dst[8:16], v.TransientStakeLamports)
	binary.LittleEndian.PutUint64(dst[16:24], v.LastUpdateEpoch)
	dst[24] = byte(v.Status)
	copy(dst[25:25+AddressLen], v.VoteAccountAddress[:])
}

func decodeValidatorStakeInfo(src []byte) (ValidatorStakeInfo, error) {
	status := StakeStatus(src[24])
	if status > StakeStatusReadyForRemoval {
		return ValidatorStakeInfo{}, ErrWrongAccountKind.Wrapf("unknown stake status %d", src[24])
	}
	var vote Address
	copy(vote[:], src[25:25+AddressLen])
	return ValidatorStakeInfo{
		ActiveStakeLamports:    binary.LittleEndian.Uint64(src[0:8]),
		TransientStakeLamports: binary.LittleEndian.Uint64(src[8:16]),
		LastUpdateEpoch:        binary.LittleEndian.Uint64(src[16:24]),
		Status:                 status,
		VoteAccountAddress:     vote,
	}, nil
}
