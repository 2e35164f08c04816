package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show governance counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			s, err := app.Engine.Stats()
			if err != nil {
				return fail(err)
			}
			return render(s, func() {
				fmt.Println()
				kv("Proposals", s.Proposals)
				kv("Votes", s.Votes)
				kv("Voters", s.Voters)
				kv("Total power", s.TotalVotingPower)
				kv("Strategies", s.Strategies)
				kv("Strategy runs", s.StrategyExecutions)
				kv("Council nodes", s.CouncilNodes)
				fmt.Println()
			})
		},
	})
}
