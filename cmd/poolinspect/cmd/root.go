package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openalpha/stake-pool/x/stakepool/types"
)

// NewRootCmd creates the root command for poolinspect
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "poolinspect",
		Short: "Decode stake pool records to JSON",
		Long: `poolinspect decodes the binary records a stake pool persists
(the pool record and its validator list) and prints them as JSON.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newPoolCmd(),
		newValidatorsCmd(),
	)
	return rootCmd
}

func newPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool [file]",
		Short: "Decode a stake pool record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sp, err := types.DecodeStakePool(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			return printJSON(cmd, poolView(sp))
		},
	}
}

func newValidatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validators [file]",
		Short: "Decode a validator list record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			vl, err := types.DecodeValidatorList(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			return printJSON(cmd, listView(vl))
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

// poolView flattens a pool record into JSON-friendly fields.
func poolView(sp *types.StakePool) map[string]any {
	view := map[string]any{
		"manager":              sp.Manager.String(),
		"staker":               sp.Staker.String(),
		"deposit_authority":    sp.DepositAuthority.String(),
		"withdraw_bump_seed":   sp.WithdrawBumpSeed,
		"validator_list":       sp.ValidatorList.String(),
		"reserve_stake":        sp.ReserveStake.String(),
		"pool_mint":            sp.PoolMint.String(),
		"manager_fee_account":  sp.ManagerFeeAccount.String(),
		"total_stake_lamports": sp.TotalStakeLamports,
		"pool_token_supply":    sp.PoolTokenSupply,
		"last_update_epoch":    sp.LastUpdateEpoch,
		"lockup":               sp.Lockup,
		"fee":                  sp.Fee,
	}
	if sp.NextEpochFee != nil {
		view["next_epoch_fee"] = *sp.NextEpochFee
	}
	if sp.PreferredDepositValidator != nil {
		view["preferred_deposit_validator"] = sp.PreferredDepositValidator.String()
	}
	if sp.PreferredWithdrawValidator != nil {
		view["preferred_withdraw_validator"] = sp.PreferredWithdrawValidator.String()
	}
	return view
}

func listView(vl *types.ValidatorList) map[string]any {
	validators := make([]map[string]any, len(vl.Validators))
	for i, v := range vl.Validators {
		validators[i] = map[string]any{
			"vote_account":             v.VoteAccountAddress.String(),
			"active_stake_lamports":    v.ActiveStakeLamports,
			"transient_stake_lamports": v.TransientStakeLamports,
			"last_update_epoch":        v.LastUpdateEpoch,
			"status":                   v.Status.String(),
		}
	}
	return map[string]any{
		"max_validators": vl.Header.MaxValidators,
		"validators":     validators,
	}
}
