package main

import (
	"fmt"
	"strings"

	"council-governance/internal/governance"

	"github.com/spf13/cobra"
)

func init() {
	strategyCmd := &cobra.Command{
		Use:   "strategy",
		Short: "Voting strategies",
	}

	var createIn struct {
		name     string
		kind     string
		max      int
		minScore float64
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a voting strategy (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			s, err := app.Engine.CreateStrategy(flagFrom, governance.StrategyInput{
				Name:          createIn.name,
				Kind:          governance.StrategyKind(createIn.kind),
				MaxCandidates: createIn.max,
				MinScore:      createIn.minScore,
			})
			if err != nil {
				return fail(err)
			}
			return render(s, func() { printStrategy(s) })
		},
	}
	createCmd.Flags().StringVar(&createIn.name, "name", "", "Strategy name (required)")
	createCmd.Flags().StringVar(&createIn.kind, "kind", "", "Selection kind: performance|risk_adjusted|diversified|ml_driven")
	createCmd.Flags().IntVar(&createIn.max, "max-candidates", 0, "Maximum candidates to select")
	createCmd.Flags().Float64Var(&createIn.minScore, "min-score", 0, "Minimum overall score (0-100)")
	strategyCmd.AddCommand(createCmd)

	strategyCmd.AddCommand(&cobra.Command{
		Use:   "show <strategy-id>",
		Short: "Show one strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			s, err := app.Engine.GetStrategy(args[0])
			if err != nil {
				return fail(err)
			}
			return render(s, func() { printStrategy(s) })
		},
	})

	strategyCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			strategies, err := app.Engine.ListStrategies()
			if err != nil {
				return fail(err)
			}
			return render(strategies, func() { printStrategyTable(strategies) })
		},
	})

	var execDry bool
	executeCmd := &cobra.Command{
		Use:   "execute <strategy-id>",
		Short: "Run candidate selection (admin)",
		Long:  "Run candidate selection for a strategy over the analyzed council nodes. The result is applied only when the aggregate risk stays under the risk gate; --dry-run previews the selection without recording it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			res, err := app.Engine.ExecuteStrategy(flagFrom, args[0], execDry)
			if err != nil {
				return fail(err)
			}
			return render(res, func() { printStrategyResult(res) })
		},
	}
	executeCmd.Flags().BoolVar(&execDry, "dry-run", false, "Select candidates without recording an execution")
	strategyCmd.AddCommand(executeCmd)

	strategyCmd.AddCommand(&cobra.Command{
		Use:   "history <strategy-id>",
		Short: "List recorded executions of a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			execs, err := app.Engine.ListStrategyExecutions(args[0])
			if err != nil {
				return fail(err)
			}
			return render(execs, func() { printExecutionTable(execs) })
		},
	})

	rootCmd.AddCommand(strategyCmd)
}

func printStrategy(s *governance.VotingStrategy) {
	fmt.Println()
	kv("ID", s.ID)
	kv("Name", s.Name)
	kv("Kind", s.Kind)
	kv("Max candidates", s.MaxCandidates)
	kv("Min score", fmt.Sprintf("%.1f", s.MinScore))
	kv("Owner", s.Owner)
	kv("Executions", s.Executions)
	kv("Created", fmtTime(s.CreatedAt))
	fmt.Println()
}

func printStrategyTable(strategies []*governance.VotingStrategy) {
	if len(strategies) == 0 {
		fmt.Println("no strategies")
		return
	}
	fmt.Printf("%-34s %-20s %-14s %6s %10s %12s\n", "ID", "NAME", "KIND", "MAX", "MIN SCORE", "EXECUTIONS")
	for _, s := range strategies {
		fmt.Printf("%-34s %-20s %-14s %6d %10.1f %12d\n",
			s.ID, truncate(s.Name, 20), s.Kind, s.MaxCandidates, s.MinScore, s.Executions)
	}
}

func printStrategyResult(r *governance.StrategyResult) {
	fmt.Println()
	kv("Strategy", r.StrategyID)
	kv("Kind", r.Kind)
	kv("Applied", r.Applied)
	if r.DryRun {
		kv("Dry run", true)
	}
	if r.Reason != "" {
		kv("Reason", r.Reason)
	}
	kv("Risk score", fmt.Sprintf("%.1f", r.RiskScore))
	if r.ExecutionID != "" {
		kv("Execution", r.ExecutionID)
	}
	if len(r.Candidates) == 0 {
		kv("Candidates", "none")
	} else {
		kv("Candidates", strings.Join(r.Candidates, ", "))
	}
	fmt.Println()
}

func printExecutionTable(execs []*governance.StrategyExecution) {
	if len(execs) == 0 {
		fmt.Println("no executions recorded")
		return
	}
	fmt.Printf("%-34s %-16s %10s %10s  %s\n", "ID", "CALLER", "RISK", "PICKS", "EXECUTED AT")
	for _, x := range execs {
		fmt.Printf("%-34s %-16s %10.1f %10d  %s\n",
			x.ID, truncate(x.Caller, 16), x.RiskScore, len(x.Candidates), fmtTime(x.ExecutedAt))
	}
}
