package main

import (
	"fmt"
	"strconv"

	"council-governance/internal/governance"

	"github.com/spf13/cobra"
)

func init() {
	voterCmd := &cobra.Command{
		Use:   "voter",
		Short: "Manage the voter registry",
	}

	voterCmd.AddCommand(&cobra.Command{
		Use:   "register <address> <power>",
		Short: "Register a voter or update its power (admin)",
		Long:  "Register a voter with the given voting power. Registering an existing address overwrites its power and resets its cast-vote counter.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			power, perr := strconv.ParseInt(args[1], 10, 64)
			if perr != nil {
				return fail(fmt.Errorf("%w: invalid power %q", governance.ErrValidation, args[1]))
			}
			app, err := newApp()
			if err != nil {
				return err
			}
			v, err := app.Engine.RegisterVoter(flagFrom, args[0], power)
			if err != nil {
				return fail(err)
			}
			return render(v, func() { printVoter(v) })
		},
	})

	voterCmd.AddCommand(&cobra.Command{
		Use:   "show <address>",
		Short: "Show one voter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			v, err := app.Engine.GetVoter(args[0])
			if err != nil {
				return fail(err)
			}
			return render(v, func() { printVoter(v) })
		},
	})

	voterCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered voters",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			voters, err := app.Engine.ListVoters()
			if err != nil {
				return fail(err)
			}
			return render(voters, func() { printVoterTable(voters) })
		},
	})

	rootCmd.AddCommand(voterCmd)
}

func printVoter(v *governance.VoterInfo) {
	fmt.Println()
	kv("Address", v.Address)
	kv("Power", v.Power)
	kv("Active", v.Active)
	kv("Votes cast", v.VotesCast)
	kv("Registered", fmtTime(v.RegisteredAt))
	fmt.Println()
}

func printVoterTable(voters []*governance.VoterInfo) {
	if len(voters) == 0 {
		fmt.Println("no voters registered")
		return
	}
	fmt.Printf("%-24s %12s %8s %12s  %s\n", "ADDRESS", "POWER", "ACTIVE", "VOTES CAST", "REGISTERED")
	for _, v := range voters {
		fmt.Printf("%-24s %12d %8v %12d  %s\n",
			truncate(v.Address, 24), v.Power, v.Active, v.VotesCast, fmtTime(v.RegisteredAt))
	}
}
