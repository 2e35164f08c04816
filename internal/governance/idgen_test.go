package governance_test

import (
	"testing"

	"council-governance/internal/governance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIDs(t *testing.T) {
	t.Run("Shape", func(t *testing.T) {
		g := governance.NewHashIDs(nil)
		id := g.Next(1000)
		assert.Len(t, id, 32)
		assert.Regexp(t, "^[0-9a-f]{32}$", id)
	})

	t.Run("Unique Within One Timestamp", func(t *testing.T) {
		g := governance.NewHashIDs(func() string { return "fixed" })
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			id := g.Next(1000)
			require.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("Deterministic For Fixed Inputs", func(t *testing.T) {
		a := governance.NewHashIDs(func() string { return "fixed" })
		b := governance.NewHashIDs(func() string { return "fixed" })
		for i := 0; i < 5; i++ {
			assert.Equal(t, a.Next(42), b.Next(42))
		}
	})

	t.Run("Entropy Separates Instances", func(t *testing.T) {
		a := governance.NewHashIDs(func() string { return "left" })
		b := governance.NewHashIDs(func() string { return "right" })
		assert.NotEqual(t, a.Next(42), b.Next(42))
	})
}
