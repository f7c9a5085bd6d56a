package types

import (
	"testing"
)

func hexAddr(label string) string {
	return testAddr(label).String()
}

func TestMsgValidateBasic(t *testing.T) {
	valid := map[string]interface{ ValidateBasic() error }{
		"initialize": MsgInitializePool{
			Pool: hexAddr("pool"), Manager: hexAddr("manager"), Staker: hexAddr("staker"),
			ValidatorList: hexAddr("list"), ReserveStake: hexAddr("reserve"),
			PoolMint: hexAddr("mint"), ManagerFeeAccount: hexAddr("fee"),
			Fee: Fee{Numerator: 1, Denominator: 10}, MaxValidators: 8,
			Signers: []string{hexAddr("manager")},
		},
		"add validator": MsgAddValidator{
			Pool: hexAddr("pool"), Staker: hexAddr("staker"), VoteAccount: hexAddr("vote"),
			Signers: []string{hexAddr("staker")},
		},
		"increase": MsgIncreaseValidatorStake{
			Pool: hexAddr("pool"), Staker: hexAddr("staker"), VoteAccount: hexAddr("vote"),
			Lamports: 1, Signers: []string{hexAddr("staker")},
		},
		"list update": MsgUpdateValidatorListBalance{
			Pool:    hexAddr("pool"),
			Updates: []ValidatorUpdateEntry{{VoteAccount: hexAddr("vote")}},
		},
		"withdraw without vote account": MsgWithdrawStake{
			Pool: hexAddr("pool"), DestinationStake: hexAddr("dest"),
			DestinationAuthority: hexAddr("owner"), SourceTokens: hexAddr("tokens"),
			PoolTokens: 1, Signers: []string{hexAddr("owner")},
		},
		"set preferred": MsgSetPreferredValidator{
			Pool: hexAddr("pool"), Staker: hexAddr("staker"), Kind: PreferredWithdraw,
			VoteAccount: hexAddr("vote"), Signers: []string{hexAddr("staker")},
		},
	}
	for name, msg := range valid {
		if err := msg.ValidateBasic(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	invalid := map[string]interface{ ValidateBasic() error }{
		"bad address": MsgAddValidator{
			Pool: "zz", Staker: hexAddr("staker"), VoteAccount: hexAddr("vote"),
			Signers: []string{hexAddr("staker")},
		},
		"no signers": MsgAddValidator{
			Pool: hexAddr("pool"), Staker: hexAddr("staker"), VoteAccount: hexAddr("vote"),
		},
		"zero lamports": MsgIncreaseValidatorStake{
			Pool: hexAddr("pool"), Staker: hexAddr("staker"), VoteAccount: hexAddr("vote"),
			Signers: []string{hexAddr("staker")},
		},
		"empty list update": MsgUpdateValidatorListBalance{Pool: hexAddr("pool")},
		"zero pool tokens": MsgWithdrawStake{
			Pool: hexAddr("pool"), DestinationStake: hexAddr("dest"),
			DestinationAuthority: hexAddr("owner"), SourceTokens: hexAddr("tokens"),
			Signers: []string{hexAddr("owner")},
		},
		"bad kind": MsgSetPreferredValidator{
			Pool: hexAddr("pool"), Staker: hexAddr("staker"), Kind: "sideways",
			Signers: []string{hexAddr("staker")},
		},
		"fee of one": MsgSetFee{
			Pool: hexAddr("pool"), Manager: hexAddr("manager"),
			Fee:     Fee{Numerator: 2, Denominator: 2},
			Signers: []string{hexAddr("manager")},
		},
	}
	for name, msg := range invalid {
		if err := msg.ValidateBasic(); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestParseSigners(t *testing.T) {
	signers := []string{hexAddr("alice"), hexAddr("bob")}
	parsed := ParseSigners(signers)
	if len(parsed) != 2 || parsed[0] != testAddr("alice") || parsed[1] != testAddr("bob") {
		t.Errorf("parsed %v", parsed)
	}

	defer func() {
		if recover() == nil {
			t.Error("unvalidated signer did not panic")
		}
	}()
	ParseSigners([]string{"zz"})
}
