package governance_test

import (
	"testing"

	"council-governance/internal/governance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVotingConfig(t *testing.T) {
	t.Run("Defaults Until First Write", func(t *testing.T) {
		env := newTestEngine(t)
		cfg, err := env.engine.VotingConfig()
		require.NoError(t, err)
		assert.Equal(t, governance.DefaultVotingConfig(), cfg)
		assert.Equal(t, int64(604800), cfg.VotingPeriod)
		assert.Equal(t, int64(86400), cfg.ExecutionDelay)
		assert.Equal(t, int64(3000), cfg.QuorumBps)
		assert.True(t, cfg.RequireRegistration)
		assert.Zero(t, cfg.Version)
	})

	t.Run("Set Bumps Version", func(t *testing.T) {
		env := newTestEngine(t)
		env.clock.now = 5000

		in := governance.VotingConfig{
			VotingPeriod:   3600,
			ExecutionDelay: 600,
			QuorumBps:      2500,
		}
		first, err := env.engine.SetVotingConfig("admin", in)
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.Version)
		assert.Equal(t, int64(5000), first.UpdatedAt)

		stored, err := env.engine.VotingConfig()
		require.NoError(t, err)
		assert.Equal(t, *first, stored)

		in.QuorumBps = 4000
		second, err := env.engine.SetVotingConfig("admin", in)
		require.NoError(t, err)
		assert.Equal(t, int64(2), second.Version)

		ev := env.sink.events[len(env.sink.events)-1]
		assert.Equal(t, governance.EventConfigUpdated, ev.Type)
		assert.Equal(t, "voting", ev.EntityID)
		assert.Equal(t, int64(4000), ev.Fields["quorum_bps"])
	})

	t.Run("Rejects Out Of Range Values", func(t *testing.T) {
		env := newTestEngine(t)
		valid := governance.DefaultVotingConfig()

		for name, mutate := range map[string]func(*governance.VotingConfig){
			"zero period":     func(c *governance.VotingConfig) { c.VotingPeriod = 0 },
			"negative delay":  func(c *governance.VotingConfig) { c.ExecutionDelay = -1 },
			"zero quorum":     func(c *governance.VotingConfig) { c.QuorumBps = 0 },
			"quorum over max": func(c *governance.VotingConfig) { c.QuorumBps = 10001 },
		} {
			in := valid
			mutate(&in)
			_, err := env.engine.SetVotingConfig("admin", in)
			assert.ErrorIs(t, err, governance.ErrValidation, name)
		}

		// Nothing was written by the rejected updates.
		cfg, err := env.engine.VotingConfig()
		require.NoError(t, err)
		assert.Zero(t, cfg.Version)
	})

	t.Run("Admin Gated", func(t *testing.T) {
		env := newTestEngine(t, func(o *governance.Options) {
			o.Auth = governance.NewAllowlist("admin")
		})
		_, err := env.engine.SetVotingConfig("mallory", governance.DefaultVotingConfig())
		assert.ErrorIs(t, err, governance.ErrUnauthorized)
	})

	t.Run("New Period Applies To New Proposals Only", func(t *testing.T) {
		env := newTestEngine(t)
		registerVoter(t, env, "alice", 100)

		env.clock.now = 100
		before := createProposal(t, env, "alice", "old window")

		cfg, err := env.engine.VotingConfig()
		require.NoError(t, err)
		cfg.VotingPeriod = 3600
		cfg.ExecutionDelay = 0
		_, err = env.engine.SetVotingConfig("admin", cfg)
		require.NoError(t, err)

		after := createProposal(t, env, "alice", "new window")
		assert.Equal(t, int64(100+604800), before.VotingEnd)
		assert.Equal(t, int64(100+3600), after.VotingEnd)
		assert.Equal(t, after.VotingEnd, after.ExecutionTime)

		// The already-created proposal keeps its derived schedule.
		got, err := env.engine.GetProposal(before.ID)
		require.NoError(t, err)
		assert.Equal(t, before.VotingEnd, got.VotingEnd)
	})
}
