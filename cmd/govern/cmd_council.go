package main

import (
	"errors"
	"fmt"

	"council-governance/internal/governance"

	"github.com/spf13/cobra"
)

func init() {
	councilCmd := &cobra.Command{
		Use:   "council",
		Short: "Council node telemetry and scoring",
	}

	var reportIn struct {
		uptime      float64
		performance float64
		blocks      int64
	}
	reportCmd := &cobra.Command{
		Use:   "report <node-id>",
		Short: "Report node telemetry (admin)",
		Long:  "Report a telemetry sample for a council node. The first report creates the node record; later reports mutate it in place and extend the score history.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			m, err := app.Engine.UpdateNodeMetrics(flagFrom, args[0], governance.MetricsInput{
				UptimePercent:    reportIn.uptime,
				PerformanceScore: reportIn.performance,
				BlocksProduced:   reportIn.blocks,
			})
			if err != nil {
				return fail(err)
			}
			return render(m, func() { printMetrics(m) })
		},
	}
	reportCmd.Flags().Float64Var(&reportIn.uptime, "uptime", 0, "Uptime percent (0-100)")
	reportCmd.Flags().Float64Var(&reportIn.performance, "performance", 0, "Performance score (0-100)")
	reportCmd.Flags().Int64Var(&reportIn.blocks, "blocks", 0, "Blocks produced in the sample window")
	councilCmd.AddCommand(reportCmd)

	councilCmd.AddCommand(&cobra.Command{
		Use:   "analyze <node-id>",
		Short: "Recompute a node's behavior analysis (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			a, err := app.Engine.AnalyzeNode(flagFrom, args[0])
			if err != nil {
				return fail(err)
			}
			return render(a, func() { printAnalysis(a) })
		},
	})

	councilCmd.AddCommand(&cobra.Command{
		Use:   "show <node-id>",
		Short: "Show a node's telemetry and latest analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			m, err := app.Engine.GetNodeMetrics(args[0])
			if err != nil {
				return fail(err)
			}
			a, aerr := app.Engine.GetNodeAnalysis(args[0])
			if aerr != nil && !errors.Is(aerr, governance.ErrNotFound) {
				return fail(aerr)
			}
			out := struct {
				Metrics  *governance.NodeMetrics          `json:"metrics"`
				Analysis *governance.NodeBehaviorAnalysis `json:"analysis,omitempty"`
			}{m, a}
			return render(out, func() {
				printMetrics(m)
				if a != nil {
					printAnalysis(a)
				}
			})
		},
	})

	councilCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List council nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			nodes, err := app.Engine.ListNodeMetrics()
			if err != nil {
				return fail(err)
			}
			return render(nodes, func() { printMetricsTable(nodes) })
		},
	})

	var recLimit int
	recommendCmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank analyzed nodes by overall score",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			ranked, err := app.Engine.Recommendations(recLimit)
			if err != nil {
				return fail(err)
			}
			return render(ranked, func() { printAnalysisTable(ranked) })
		},
	}
	recommendCmd.Flags().IntVar(&recLimit, "limit", 0, "Maximum entries (0 = all)")
	councilCmd.AddCommand(recommendCmd)

	rootCmd.AddCommand(councilCmd)
}

func printMetrics(m *governance.NodeMetrics) {
	fmt.Println()
	kv("Node", m.NodeID)
	kv("Owner", m.Owner)
	kv("Uptime", fmt.Sprintf("%.2f%%", m.UptimePercent))
	kv("Performance", fmt.Sprintf("%.2f", m.PerformanceScore))
	kv("Blocks produced", m.BlocksProduced)
	kv("History samples", len(m.History))
	kv("Updated", fmtTime(m.UpdatedAt))
	fmt.Println()
}

func printAnalysis(a *governance.NodeBehaviorAnalysis) {
	fmt.Println()
	kv("Node", a.NodeID)
	kv("Reliability", fmt.Sprintf("%.2f", a.Reliability))
	kv("Consistency", fmt.Sprintf("%.2f", a.Consistency))
	kv("Overall", fmt.Sprintf("%.2f", a.Overall))
	kv("Risk", a.RiskLevel)
	kv("Samples", a.Samples)
	kv("Analyzed", fmtTime(a.AnalyzedAt))
	fmt.Println()
}

func printMetricsTable(nodes []*governance.NodeMetrics) {
	if len(nodes) == 0 {
		fmt.Println("no council nodes")
		return
	}
	fmt.Printf("%-24s %10s %12s %10s  %s\n", "NODE", "UPTIME", "PERFORMANCE", "BLOCKS", "UPDATED")
	for _, m := range nodes {
		fmt.Printf("%-24s %9.2f%% %12.2f %10d  %s\n",
			truncate(m.NodeID, 24), m.UptimePercent, m.PerformanceScore, m.BlocksProduced, fmtTime(m.UpdatedAt))
	}
}

func printAnalysisTable(ranked []*governance.NodeBehaviorAnalysis) {
	if len(ranked) == 0 {
		fmt.Println("no analyzed nodes")
		return
	}
	fmt.Printf("%4s %-24s %8s %12s %12s  %s\n", "RANK", "NODE", "OVERALL", "RELIABILITY", "CONSISTENCY", "RISK")
	for i, a := range ranked {
		fmt.Printf("%4d %-24s %8.2f %12.2f %12.2f  %s\n",
			i+1, truncate(a.NodeID, 24), a.Overall, a.Reliability, a.Consistency, a.RiskLevel)
	}
}
