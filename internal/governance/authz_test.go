package governance_test

import (
	"testing"

	"council-governance/internal/governance"

	"github.com/stretchr/testify/assert"
)

func TestAllowlist(t *testing.T) {
	t.Run("Empty List Is Open", func(t *testing.T) {
		open := governance.NewAllowlist()
		assert.True(t, open.Authorize("anyone"))
		assert.True(t, open.Authorize(""))
	})

	t.Run("Configured List Is Exact", func(t *testing.T) {
		a := governance.NewAllowlist("admin", "system")
		assert.True(t, a.Authorize("admin"))
		assert.True(t, a.Authorize("system"))
		assert.False(t, a.Authorize("mallory"))
		assert.False(t, a.Authorize(""))
	})

	t.Run("Blank Identities Are Dropped", func(t *testing.T) {
		// A stray empty entry must not force open mode off for "".
		a := governance.NewAllowlist("admin", "")
		assert.True(t, a.Authorize("admin"))
		assert.False(t, a.Authorize(""))
	})

	t.Run("Open Mode Has No Admins", func(t *testing.T) {
		open := governance.NewAllowlist()
		assert.True(t, open.Authorize("anyone"))
		assert.False(t, open.Admin("anyone"))
	})

	t.Run("Admins Are The Listed Identities", func(t *testing.T) {
		a := governance.NewAllowlist("admin", "system")
		assert.True(t, a.Admin("admin"))
		assert.True(t, a.Admin("system"))
		assert.False(t, a.Admin("mallory"))
	})
}
