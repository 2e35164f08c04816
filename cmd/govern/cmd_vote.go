package main

import (
	"fmt"
	"strings"

	"council-governance/internal/governance"

	"github.com/spf13/cobra"
)

func init() {
	var voteReason string
	voteCmd := &cobra.Command{
		Use:   "vote <proposal-id> <yes|no>",
		Short: "Vote on an active proposal",
		Long: `Vote on an active proposal with your registered voting power.

Options:
  yes  - Vote in favor of the proposal
  no   - Vote against the proposal

Examples:
  govern vote 1f0c2a... yes --from alice
  govern vote 1f0c2a... no --from bob --reason "too costly"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("missing proposal ID and vote option\n\nUsage: govern vote <proposal-id> <yes|no>")
			}
			if len(args) < 2 {
				return fmt.Errorf("missing vote option\n\nUsage: govern vote %s <yes|no>", args[0])
			}
			if len(args) > 2 {
				return fmt.Errorf("too many arguments\n\nUsage: govern vote <proposal-id> <yes|no>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleVote(args[0], args[1], voteReason)
		},
	}
	voteCmd.Flags().StringVar(&voteReason, "reason", "", "Optional vote rationale")
	rootCmd.AddCommand(voteCmd)
}

func handleVote(proposalID, option, reason string) error {
	var support bool
	switch strings.ToLower(option) {
	case "yes":
		support = true
	case "no":
		support = false
	default:
		return fail(fmt.Errorf("%w: invalid vote option %q (use yes or no)", governance.ErrValidation, option))
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	p, err := app.Engine.CastVote(flagFrom, proposalID, support, reason)
	if err != nil {
		return fail(err)
	}
	return render(p, func() {
		fmt.Println()
		fmt.Printf("  vote recorded: %s on %s\n", voteWord(support), p.ID)
		fmt.Println()
		kv("Status", p.Status)
		kv("Yes weight", p.YesWeight)
		kv("No weight", p.NoWeight)
		kv("Cast weight", p.CastWeight())
		kv("Power snapshot", p.PowerSnapshot)
		fmt.Println()
	})
}
