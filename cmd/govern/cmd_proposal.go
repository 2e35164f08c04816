package main

import (
	"fmt"

	"council-governance/internal/governance"

	"github.com/spf13/cobra"
)

func init() {
	proposalCmd := &cobra.Command{
		Use:   "proposal",
		Short: "Manage governance proposals",
	}

	var createIn struct {
		title       string
		description string
		target      string
		payload     string
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a proposal",
		Long:  "Create a proposal in the active state. The voting window and execution time derive from the voting configuration at creation time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			in := governance.ProposalInput{
				Title:       createIn.title,
				Description: createIn.description,
				Target:      createIn.target,
			}
			if createIn.payload != "" {
				in.Payload = []byte(createIn.payload)
			}
			p, err := app.Engine.CreateProposal(flagFrom, in)
			if err != nil {
				return fail(err)
			}
			return render(p, func() { printProposal(p) })
		},
	}
	createCmd.Flags().StringVar(&createIn.title, "title", "", "Proposal title (required)")
	createCmd.Flags().StringVar(&createIn.description, "description", "", "Proposal description (required)")
	createCmd.Flags().StringVar(&createIn.target, "target", "", "Target the proposal acts on")
	createCmd.Flags().StringVar(&createIn.payload, "payload", "", "Opaque payload handed to execution")
	proposalCmd.AddCommand(createCmd)

	proposalCmd.AddCommand(&cobra.Command{
		Use:   "show <proposal-id>",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			p, err := app.Engine.GetProposal(args[0])
			if err != nil {
				return fail(err)
			}
			return render(p, func() { printProposal(p) })
		},
	})

	var listStatus string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals in creation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			var props []*governance.Proposal
			if listStatus != "" {
				status, perr := governance.ParseStatus(listStatus)
				if perr != nil {
					return fail(perr)
				}
				props, err = app.Engine.ListProposalsByStatus(status)
			} else {
				props, err = app.Engine.ListProposals()
			}
			if err != nil {
				return fail(err)
			}
			return render(props, func() { printProposalTable(props) })
		},
	}
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status: active, quorum_reached, executed, failed, execution_failed, cancelled")
	proposalCmd.AddCommand(listCmd)

	proposalCmd.AddCommand(&cobra.Command{
		Use:   "votes <proposal-id>",
		Short: "List recorded votes on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			votes, err := app.Engine.ListVotes(args[0])
			if err != nil {
				return fail(err)
			}
			return render(votes, func() { printVoteTable(votes) })
		},
	})

	proposalCmd.AddCommand(&cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Finalize a proposal after its execution time",
		Long:  "Finalize a proposal once its execution time has arrived: a passing proposal runs its action, a failing one is marked failed. Terminal proposals cannot be executed again.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			p, err := app.Engine.ExecuteProposal(flagFrom, args[0])
			if err != nil {
				return fail(err)
			}
			return render(p, func() { printProposal(p) })
		},
	})

	proposalCmd.AddCommand(&cobra.Command{
		Use:   "cancel <proposal-id>",
		Short: "Cancel an active proposal (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			p, err := app.Engine.CancelProposal(flagFrom, args[0])
			if err != nil {
				return fail(err)
			}
			return render(p, func() { printProposal(p) })
		},
	})

	rootCmd.AddCommand(proposalCmd)
}

func printProposal(p *governance.Proposal) {
	fmt.Println()
	kv("ID", p.ID)
	kv("Title", p.Title)
	if p.Description != "" {
		kv("Description", p.Description)
	}
	kv("Proposer", p.Proposer)
	if p.Target != "" {
		kv("Target", p.Target)
	}
	kv("Status", p.Status)
	kv("Created", fmtTime(p.CreatedAt))
	kv("Voting ends", fmtTime(p.VotingEnd))
	kv("Executable at", fmtTime(p.ExecutionTime))
	if p.FinalizedAt != 0 {
		kv("Finalized", fmtTime(p.FinalizedAt))
	}
	kv("Yes weight", p.YesWeight)
	kv("No weight", p.NoWeight)
	kv("Cast weight", p.CastWeight())
	kv("Power snapshot", p.PowerSnapshot)
	kv("Votes", p.VoteCount)
	fmt.Println()
}

func printProposalTable(props []*governance.Proposal) {
	if len(props) == 0 {
		fmt.Println("no proposals")
		return
	}
	fmt.Printf("%-34s %-28s %-16s %12s %12s  %s\n", "ID", "TITLE", "STATUS", "YES", "NO", "VOTING ENDS")
	for _, p := range props {
		fmt.Printf("%-34s %-28s %-16s %12d %12d  %s\n",
			p.ID, truncate(p.Title, 28), p.Status, p.YesWeight, p.NoWeight, fmtTime(p.VotingEnd))
	}
}

func printVoteTable(votes []*governance.Vote) {
	if len(votes) == 0 {
		fmt.Println("no votes recorded")
		return
	}
	fmt.Printf("%-24s %-8s %12s  %s\n", "VOTER", "VOTE", "WEIGHT", "CAST AT")
	for _, v := range votes {
		fmt.Printf("%-24s %-8s %12d  %s\n",
			truncate(v.Voter, 24), voteWord(v.Support), v.Weight, fmtTime(v.CastAt))
	}
}

func voteWord(support bool) string {
	if support {
		return "yes"
	}
	return "no"
}
