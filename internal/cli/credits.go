package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func NewCreditsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Inspect and grant user credits",
	}

	var reason string
	grant := &cobra.Command{
		Use:   "grant <uid> <amount>",
		Short: "Add credits to a user, creating the profile when missing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			return rootOpts.withBackend(cmd, func(b *Backend) error {
				balance, err := b.Credits.Grant(cmd.Context(), args[0], amount, reason)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), balance)
			})
		},
	}
	grant.Flags().StringVar(&reason, "reason", "manual grant", "ledger description")

	balance := &cobra.Command{
		Use:   "balance <uid>",
		Short: "Print a user's credit balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withBackend(cmd, func(b *Backend) error {
				bal, err := b.Credits.Balance(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if bal == nil {
					return fmt.Errorf("user %s has no credit profile", args[0])
				}
				return writeJSON(cmd.OutOrStdout(), bal)
			})
		},
	}

	cmd.AddCommand(grant, balance)
	return cmd
}
