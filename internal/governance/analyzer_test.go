package governance_test

import (
	"fmt"
	"testing"

	"council-governance/internal/governance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportMetrics(t *testing.T, env *testEnv, nodeID string, uptime, perf float64) *governance.NodeMetrics {
	t.Helper()
	m, err := env.engine.UpdateNodeMetrics("admin", nodeID, governance.MetricsInput{
		UptimePercent:    uptime,
		PerformanceScore: perf,
		BlocksProduced:   10,
	})
	require.NoError(t, err)
	return m
}

func TestUpdateNodeMetrics(t *testing.T) {
	t.Run("First Report Creates The Record", func(t *testing.T) {
		env := newTestEngine(t)
		m, err := env.engine.UpdateNodeMetrics("operator-1", "node-a", governance.MetricsInput{
			UptimePercent:    95,
			PerformanceScore: 85,
			BlocksProduced:   42,
		})
		require.NoError(t, err)
		assert.Equal(t, "node-a", m.NodeID)
		assert.Equal(t, "operator-1", m.Owner)
		assert.Equal(t, int64(1000), m.CreatedAt)
		assert.Equal(t, int64(42), m.BlocksProduced)
		assert.Equal(t, []float64{90}, m.History)
	})

	t.Run("Stranger Cannot Overwrite The Record", func(t *testing.T) {
		env := newTestEngine(t)
		_, err := env.engine.UpdateNodeMetrics("operator-1", "node-a", governance.MetricsInput{
			UptimePercent:    95,
			PerformanceScore: 85,
		})
		require.NoError(t, err)

		_, err = env.engine.UpdateNodeMetrics("mallory", "node-a", governance.MetricsInput{
			UptimePercent:    1,
			PerformanceScore: 1,
		})
		assert.ErrorIs(t, err, governance.ErrUnauthorized)

		m, err := env.engine.GetNodeMetrics("node-a")
		require.NoError(t, err)
		assert.Equal(t, "operator-1", m.Owner)
		assert.Equal(t, float64(95), m.UptimePercent)
		assert.Equal(t, []float64{90}, m.History)
	})

	t.Run("Owner Keeps Reporting", func(t *testing.T) {
		env := newTestEngine(t)
		_, err := env.engine.UpdateNodeMetrics("operator-1", "node-a", governance.MetricsInput{
			UptimePercent:    95,
			PerformanceScore: 85,
		})
		require.NoError(t, err)

		m, err := env.engine.UpdateNodeMetrics("operator-1", "node-a", governance.MetricsInput{
			UptimePercent:    80,
			PerformanceScore: 60,
		})
		require.NoError(t, err)
		assert.Equal(t, "operator-1", m.Owner)
		assert.Equal(t, float64(80), m.UptimePercent)
		assert.Equal(t, []float64{90, 70}, m.History)
	})

	t.Run("Admins Report For Any Owner", func(t *testing.T) {
		env := newTestEngine(t, func(o *governance.Options) {
			o.Auth = governance.NewAllowlist("admin", "operator-1")
		})
		_, err := env.engine.UpdateNodeMetrics("operator-1", "node-a", governance.MetricsInput{
			UptimePercent:    95,
			PerformanceScore: 85,
		})
		require.NoError(t, err)

		m, err := env.engine.UpdateNodeMetrics("admin", "node-a", governance.MetricsInput{
			UptimePercent:    80,
			PerformanceScore: 60,
		})
		require.NoError(t, err)
		assert.Equal(t, "operator-1", m.Owner)
		assert.Equal(t, []float64{90, 70}, m.History)
	})

	t.Run("History Keeps The Latest Sixteen", func(t *testing.T) {
		env := newTestEngine(t)
		for i := 1; i <= 20; i++ {
			reportMetrics(t, env, "node-a", float64(i), float64(i))
		}
		m, err := env.engine.GetNodeMetrics("node-a")
		require.NoError(t, err)
		require.Len(t, m.History, 16)
		assert.Equal(t, float64(5), m.History[0])
		assert.Equal(t, float64(20), m.History[15])
	})

	t.Run("Validates Input", func(t *testing.T) {
		env := newTestEngine(t)
		cases := []struct {
			name   string
			nodeID string
			in     governance.MetricsInput
		}{
			{"missing node id", "", governance.MetricsInput{UptimePercent: 50, PerformanceScore: 50}},
			{"uptime below zero", "n", governance.MetricsInput{UptimePercent: -1, PerformanceScore: 50}},
			{"uptime above hundred", "n", governance.MetricsInput{UptimePercent: 101, PerformanceScore: 50}},
			{"performance below zero", "n", governance.MetricsInput{UptimePercent: 50, PerformanceScore: -1}},
			{"performance above hundred", "n", governance.MetricsInput{UptimePercent: 50, PerformanceScore: 101}},
			{"negative blocks", "n", governance.MetricsInput{UptimePercent: 50, PerformanceScore: 50, BlocksProduced: -1}},
		}
		for _, tc := range cases {
			_, err := env.engine.UpdateNodeMetrics("admin", tc.nodeID, tc.in)
			assert.ErrorIs(t, err, governance.ErrValidation, tc.name)
		}
	})

	t.Run("Authorization Required", func(t *testing.T) {
		env := newTestEngine(t, func(o *governance.Options) {
			o.Auth = governance.NewAllowlist("admin")
		})
		_, err := env.engine.UpdateNodeMetrics("mallory", "node-a", governance.MetricsInput{
			UptimePercent: 50, PerformanceScore: 50,
		})
		assert.ErrorIs(t, err, governance.ErrUnauthorized)
	})
}

func TestAnalyzeNode(t *testing.T) {
	t.Run("Scores Derived From Metrics", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "node-a", 95, 85)

		env.clock.now = 2000
		a, err := env.engine.AnalyzeNode("admin", "node-a")
		require.NoError(t, err)
		assert.Equal(t, float64(90), a.Reliability)
		assert.Equal(t, float64(90), a.Overall)
		assert.Equal(t, float64(100), a.Consistency)
		assert.Equal(t, governance.RiskLow, a.RiskLevel)
		assert.Equal(t, 1, a.Samples)
		assert.Equal(t, int64(2000), a.AnalyzedAt)

		stored, err := env.engine.GetNodeAnalysis("node-a")
		require.NoError(t, err)
		assert.Equal(t, a, stored)

		assert.Equal(t, 1, env.sink.count(governance.EventCouncilNodeAnalyzed))
	})

	t.Run("Risk Tier Uses Both Floors", func(t *testing.T) {
		env := newTestEngine(t)
		cases := []struct {
			uptime, perf float64
			want         governance.RiskLevel
		}{
			{90, 70, governance.RiskLow},
			{89.9, 100, governance.RiskHigh},
			{100, 69.9, governance.RiskHigh},
			{10, 10, governance.RiskHigh},
		}
		for i, tc := range cases {
			nodeID := fmt.Sprintf("node-%d", i)
			reportMetrics(t, env, nodeID, tc.uptime, tc.perf)
			a, err := env.engine.AnalyzeNode("admin", nodeID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, a.RiskLevel, "uptime=%.1f perf=%.1f", tc.uptime, tc.perf)
		}
	})

	t.Run("Consistency Penalizes Swings", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "node-a", 80, 80)
		reportMetrics(t, env, "node-a", 90, 90)

		a, err := env.engine.AnalyzeNode("admin", "node-a")
		require.NoError(t, err)
		// History [80 90]: deviation 5, penalty 10.
		assert.Equal(t, float64(90), a.Consistency)
		assert.Equal(t, 2, a.Samples)
	})

	t.Run("Unknown Node", func(t *testing.T) {
		env := newTestEngine(t)
		_, err := env.engine.AnalyzeNode("admin", "ghost")
		assert.ErrorIs(t, err, governance.ErrNotFound)

		_, err = env.engine.GetNodeAnalysis("ghost")
		assert.ErrorIs(t, err, governance.ErrNotFound)
	})

	t.Run("Analysis Reflects Latest Metrics", func(t *testing.T) {
		env := newTestEngine(t)
		reportMetrics(t, env, "node-a", 95, 85)
		_, err := env.engine.AnalyzeNode("admin", "node-a")
		require.NoError(t, err)

		reportMetrics(t, env, "node-a", 50, 50)
		a, err := env.engine.AnalyzeNode("admin", "node-a")
		require.NoError(t, err)
		assert.Equal(t, float64(50), a.Overall)
		assert.Equal(t, governance.RiskHigh, a.RiskLevel)

		stored, err := env.engine.GetNodeAnalysis("node-a")
		require.NoError(t, err)
		assert.Equal(t, a, stored)
	})
}

func TestNodeListing(t *testing.T) {
	env := newTestEngine(t)
	reportMetrics(t, env, "node-c", 90, 90)
	reportMetrics(t, env, "node-a", 80, 80)
	reportMetrics(t, env, "node-c", 95, 95)

	nodes, err := env.engine.ListNodeMetrics()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "node-c", nodes[0].NodeID)
	assert.Equal(t, "node-a", nodes[1].NodeID)
	assert.Equal(t, float64(95), nodes[0].UptimePercent)
}
