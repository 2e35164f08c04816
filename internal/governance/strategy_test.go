package governance_test

import (
	"testing"

	"council-governance/internal/governance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createStrategy(t *testing.T, env *testEnv, kind governance.StrategyKind, max int, minScore float64) *governance.VotingStrategy {
	t.Helper()
	s, err := env.engine.CreateStrategy("admin", governance.StrategyInput{
		Name:          "selection under test",
		Kind:          kind,
		MaxCandidates: max,
		MinScore:      minScore,
	})
	require.NoError(t, err)
	return s
}

func TestCreateStrategy(t *testing.T) {
	t.Run("Stores Configuration", func(t *testing.T) {
		env := newTestEngine(t)
		s, err := env.engine.CreateStrategy("operator-1", governance.StrategyInput{
			Name:          "top performers",
			Kind:          governance.KindPerformance,
			MaxCandidates: 5,
			MinScore:      75,
		})
		require.NoError(t, err)
		assert.Len(t, s.ID, 32)
		assert.Equal(t, "top performers", s.Name)
		assert.Equal(t, governance.KindPerformance, s.Kind)
		assert.Equal(t, 5, s.MaxCandidates)
		assert.Equal(t, float64(75), s.MinScore)
		assert.Equal(t, "operator-1", s.Owner)
		assert.Equal(t, int64(1000), s.CreatedAt)
		assert.Zero(t, s.Executions)

		got, err := env.engine.GetStrategy(s.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("Validates Input", func(t *testing.T) {
		env := newTestEngine(t)
		valid := governance.StrategyInput{
			Name:          "ok",
			Kind:          governance.KindPerformance,
			MaxCandidates: 3,
			MinScore:      50,
		}

		for name, mutate := range map[string]func(*governance.StrategyInput){
			"missing name":    func(in *governance.StrategyInput) { in.Name = "" },
			"unknown kind":    func(in *governance.StrategyInput) { in.Kind = "bogus" },
			"zero candidates": func(in *governance.StrategyInput) { in.MaxCandidates = 0 },
			"negative score":  func(in *governance.StrategyInput) { in.MinScore = -1 },
			"score over max":  func(in *governance.StrategyInput) { in.MinScore = 101 },
		} {
			in := valid
			mutate(&in)
			_, err := env.engine.CreateStrategy("admin", in)
			assert.ErrorIs(t, err, governance.ErrValidation, name)
		}

		// The ml-driven kind parses; only execution rejects it.
		_, err := env.engine.CreateStrategy("admin", governance.StrategyInput{
			Name: "future work", Kind: governance.KindMLDriven, MaxCandidates: 3,
		})
		assert.NoError(t, err)
	})

	t.Run("Admin Gated", func(t *testing.T) {
		env := newTestEngine(t, func(o *governance.Options) {
			o.Auth = governance.NewAllowlist("admin")
		})
		_, err := env.engine.CreateStrategy("mallory", governance.StrategyInput{
			Name: "x", Kind: governance.KindPerformance, MaxCandidates: 1,
		})
		assert.ErrorIs(t, err, governance.ErrUnauthorized)
	})

	t.Run("Creation Order Listing", func(t *testing.T) {
		env := newTestEngine(t)
		first := createStrategy(t, env, governance.KindPerformance, 3, 0)
		second := createStrategy(t, env, governance.KindRiskAdjusted, 3, 0)

		all, err := env.engine.ListStrategies()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, first.ID, all[0].ID)
		assert.Equal(t, second.ID, all[1].ID)
	})

	t.Run("Unknown Strategy", func(t *testing.T) {
		env := newTestEngine(t)
		_, err := env.engine.GetStrategy("missing")
		assert.ErrorIs(t, err, governance.ErrNotFound)
	})
}

func TestCandidateSelection(t *testing.T) {
	// Overall scores: good-1 95, hot-1 94, good-2 90, hot-2 84.5, edge 80.
	// The hot nodes miss a risk floor, the others clear both.
	seed := func(t *testing.T, env *testEnv) {
		reportMetrics(t, env, "good-1", 95, 95)
		reportMetrics(t, env, "hot-1", 89, 99)
		reportMetrics(t, env, "good-2", 92, 88)
		reportMetrics(t, env, "hot-2", 100, 69)
		reportMetrics(t, env, "edge", 90, 70)
	}

	t.Run("Performance Takes The Top Ranked", func(t *testing.T) {
		env := newTestEngine(t)
		seed(t, env)
		s := createStrategy(t, env, governance.KindPerformance, 3, 0)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"good-1", "hot-1", "good-2"}, res.Candidates)
	})

	t.Run("Risk Adjusted Skips High Risk", func(t *testing.T) {
		env := newTestEngine(t)
		seed(t, env)
		s := createStrategy(t, env, governance.KindRiskAdjusted, 3, 0)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"good-1", "good-2", "edge"}, res.Candidates)
	})

	t.Run("Diversified Caps High Risk Slots", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "h1", 89, 91) // 90, high risk
		reportMetrics(t, env, "h2", 87, 89) // 88, high risk
		reportMetrics(t, env, "l1", 90, 70) // 80, low risk

		wide := createStrategy(t, env, governance.KindDiversified, 3, 0)
		res, err := env.engine.ExecuteStrategy("admin", wide.ID, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"h1", "h2", "l1"}, res.Candidates)

		// Two slots leave room for only one high-risk node.
		narrow := createStrategy(t, env, governance.KindDiversified, 2, 0)
		res, err = env.engine.ExecuteStrategy("admin", narrow.ID, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"h1", "l1"}, res.Candidates)
	})

	t.Run("Minimum Score Filters Before Ranking", func(t *testing.T) {
		env := newTestEngine(t)
		seed(t, env)
		s := createStrategy(t, env, governance.KindPerformance, 10, 85)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"good-1", "hot-1", "good-2"}, res.Candidates)
	})

	t.Run("Ties Break On Node ID", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "b-node", 90, 90)
		reportMetrics(t, env, "a-node", 90, 90)
		s := createStrategy(t, env, governance.KindPerformance, 2, 0)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"a-node", "b-node"}, res.Candidates)
	})
}

func TestExecuteStrategy(t *testing.T) {
	t.Run("Dry Run Leaves No Trace", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "node-a", 95, 95)
		s := createStrategy(t, env, governance.KindPerformance, 3, 0)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.True(t, res.DryRun)
		assert.False(t, res.Applied)
		assert.Equal(t, "dry run", res.Reason)
		assert.Empty(t, res.ExecutionID)

		got, err := env.engine.GetStrategy(s.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Executions)

		runs, err := env.engine.ListStrategyExecutions(s.ID)
		require.NoError(t, err)
		assert.Empty(t, runs)
		assert.Zero(t, env.sink.count(governance.EventStrategyExecuted))
	})

	t.Run("Applied Run Records An Audit Entry", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "node-a", 95, 95)
		reportMetrics(t, env, "node-b", 91, 89)
		s := createStrategy(t, env, governance.KindPerformance, 2, 0)

		env.clock.now = 3000
		res, err := env.engine.ExecuteStrategy("operator-1", s.ID, false)
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.False(t, res.DryRun)
		assert.Len(t, res.ExecutionID, 32)
		assert.Equal(t, []string{"node-a", "node-b"}, res.Candidates)
		assert.InDelta(t, 7.5, res.RiskScore, 0.001)

		got, err := env.engine.GetStrategy(s.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Executions)

		runs, err := env.engine.ListStrategyExecutions(s.ID)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, res.ExecutionID, runs[0].ID)
		assert.Equal(t, s.ID, runs[0].StrategyID)
		assert.Equal(t, "operator-1", runs[0].Caller)
		assert.Equal(t, res.Candidates, runs[0].Candidates)
		assert.Equal(t, int64(3000), runs[0].ExecutedAt)

		assert.Equal(t, 1, env.sink.count(governance.EventStrategyExecuted))
	})

	t.Run("Risky Sets Are Soft Rejected", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "weak", 10, 10)
		s := createStrategy(t, env, governance.KindPerformance, 1, 0)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, false)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, float64(90), res.RiskScore)
		assert.Equal(t, "aggregate risk 90.0 exceeds threshold 80", res.Reason)
		assert.Equal(t, []string{"weak"}, res.Candidates)

		assert.Equal(t, 1, env.sink.count(governance.EventRiskAlertGenerated))
		assert.Zero(t, env.sink.count(governance.EventStrategyExecuted))

		got, err := env.engine.GetStrategy(s.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Executions)

		runs, err := env.engine.ListStrategyExecutions(s.ID)
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("Risk Gate Outranks Dry Run", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "weak", 10, 10)
		s := createStrategy(t, env, governance.KindPerformance, 1, 0)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.False(t, res.DryRun)
		assert.Equal(t, "aggregate risk 90.0 exceeds threshold 80", res.Reason)
	})

	t.Run("Empty Candidate Set", func(t *testing.T) {
		env := newTestEngine(t)
		s := createStrategy(t, env, governance.KindPerformance, 3, 0)
		emitted := len(env.sink.events)

		res, err := env.engine.ExecuteStrategy("admin", s.ID, false)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, "no eligible candidates", res.Reason)
		assert.Empty(t, res.Candidates)
		assert.Zero(t, res.RiskScore)
		assert.Len(t, env.sink.events, emitted)
	})

	t.Run("ML Driven Is Rejected At Execution", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "node-a", 95, 95)
		s := createStrategy(t, env, governance.KindMLDriven, 3, 0)

		_, err := env.engine.ExecuteStrategy("admin", s.ID, false)
		assert.ErrorIs(t, err, governance.ErrValidation)
	})

	t.Run("Scores Come From Live Metrics", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "node-a", 95, 95)
		s := createStrategy(t, env, governance.KindPerformance, 1, 0)

		first, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.Equal(t, float64(5), first.RiskScore)

		// No analysis call in between; the next run sees the new report.
		reportMetrics(t, env, "node-a", 50, 50)
		second, err := env.engine.ExecuteStrategy("admin", s.ID, true)
		require.NoError(t, err)
		assert.Equal(t, float64(50), second.RiskScore)
	})

	t.Run("Unknown Strategy", func(t *testing.T) {
		env := newTestEngine(t)
		_, err := env.engine.ExecuteStrategy("admin", "missing", false)
		assert.ErrorIs(t, err, governance.ErrNotFound)

		_, err = env.engine.ListStrategyExecutions("missing")
		assert.ErrorIs(t, err, governance.ErrNotFound)
	})

	t.Run("Admin Gated", func(t *testing.T) {
		env := newTestEngine(t, func(o *governance.Options) {
			o.Auth = governance.NewAllowlist("admin")
		})
		_, err := env.engine.ExecuteStrategy("mallory", "whatever", false)
		assert.ErrorIs(t, err, governance.ErrUnauthorized)
	})
}

func TestRecommendations(t *testing.T) {
	env := newTestEngine(t)
	reportMetrics(t, env, "b-node", 90, 90)
	reportMetrics(t, env, "a-node", 90, 90)
	reportMetrics(t, env, "c-node", 99, 97)
	reportMetrics(t, env, "d-node", 40, 40)

	t.Run("Ranked Best First", func(t *testing.T) {
		all, err := env.engine.Recommendations(0)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "c-node", all[0].NodeID)
		assert.Equal(t, "a-node", all[1].NodeID)
		assert.Equal(t, "b-node", all[2].NodeID)
		assert.Equal(t, "d-node", all[3].NodeID)
		assert.Equal(t, float64(98), all[0].Overall)
		assert.Equal(t, governance.RiskHigh, all[3].RiskLevel)
	})

	t.Run("Limit Truncates", func(t *testing.T) {
		top, err := env.engine.Recommendations(2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "c-node", top[0].NodeID)
		assert.Equal(t, "a-node", top[1].NodeID)
	})

	t.Run("No Nodes", func(t *testing.T) {
		empty := newTestEngine(t)
		out, err := empty.engine.Recommendations(0)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
