package governance

import (
	"bytes"
	"testing"
)

func TestEntityPrefixesAreDisjoint(t *testing.T) {
	prefixes := []byte{
		prefixProposal, prefixVote, prefixVoter, prefixConfig,
		prefixStrategy, prefixExecution, prefixMetrics, prefixAnalysis,
		prefixCounter, prefixIndex,
	}
	seen := map[byte]bool{}
	for _, p := range prefixes {
		if seen[p] {
			t.Fatalf("prefix %q used by two entity kinds", p)
		}
		seen[p] = true
	}
}

func TestKeyComposition(t *testing.T) {
	cases := []struct {
		name string
		key  []byte
		want string
	}{
		{"proposal", proposalKey("abc123"), "pabc123"},
		{"vote", voteKey("abc123", "alice"), "vabc123/alice"},
		{"voter", voterKey("alice"), "ralice"},
		{"config", configKey(), "cvoting"},
		{"strategy", strategyKey("abc123"), "sabc123"},
		{"execution", executionKey("abc123"), "xabc123"},
		{"metrics", metricsKey("node-1"), "mnode-1"},
		{"analysis", analysisKey("node-1"), "anode-1"},
		{"counter", counterKey(counterProposals), "nproposals"},
		{"index", indexKey(indexProposals), "iproposals"},
		{"vote index", voteIndexKey("abc123"), "ivotes/abc123"},
		{"execution index", executionIndexKey("abc123"), "iexecs/abc123"},
	}
	for _, c := range cases {
		if !bytes.Equal(c.key, []byte(c.want)) {
			t.Errorf("%s key = %q, want %q", c.name, c.key, c.want)
		}
	}
}

func TestSameIDDifferentEntitiesDoNotCollide(t *testing.T) {
	id := "deadbeef"
	keys := [][]byte{
		proposalKey(id), voterKey(id), strategyKey(id),
		executionKey(id), metricsKey(id), analysisKey(id),
	}
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if bytes.Equal(keys[i], keys[j]) {
				t.Errorf("entity keys collide for shared id: %q", keys[i])
			}
		}
	}
}

func TestPerEntityIndexesDoNotCollide(t *testing.T) {
	// A proposal's vote list and a strategy's execution list both live
	// under the index prefix but in separate namespaces.
	if bytes.Equal(voteIndexKey("abc"), executionIndexKey("abc")) {
		t.Fatal("vote and execution indexes collide for shared id")
	}
	if bytes.Equal(indexKey(indexProposals), voteIndexKey(indexProposals)) {
		t.Fatal("global and per-proposal indexes collide")
	}
}
