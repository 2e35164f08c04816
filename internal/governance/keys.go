package governance

// Store keys are a single entity-prefix byte followed by the entity id,
// giving O(1) point lookups. Vote keys compose proposal id and voter
// address; index keys hold insertion-ordered id lists for enumeration.
const (
	prefixProposal  = 'p'
	prefixVote      = 'v'
	prefixVoter     = 'r'
	prefixConfig    = 'c'
	prefixStrategy  = 's'
	prefixExecution = 'x'
	prefixMetrics   = 'm'
	prefixAnalysis  = 'a'
	prefixCounter   = 'n'
	prefixIndex     = 'i'
)

const (
	counterProposals  = "proposals"
	counterVotes      = "votes"
	counterVoters     = "voters"
	counterTotalPower = "total_power"
	counterStrategies = "strategies"
	counterExecutions = "strategy_executions"
	counterNodes      = "council_nodes"
)

const (
	indexProposals  = "proposals"
	indexVoters     = "voters"
	indexStrategies = "strategies"
	indexNodes      = "nodes"
)

func prefixedKey(prefix byte, id string) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, prefix)
	return append(key, id...)
}

func proposalKey(id string) []byte { return prefixedKey(prefixProposal, id) }

// voteKey is unique per (proposal, voter) pair, enforcing one vote per
// voter per proposal.
func voteKey(proposalID, voter string) []byte {
	return prefixedKey(prefixVote, proposalID+"/"+voter)
}

func voterKey(address string) []byte  { return prefixedKey(prefixVoter, address) }
func configKey() []byte               { return prefixedKey(prefixConfig, "voting") }
func strategyKey(id string) []byte    { return prefixedKey(prefixStrategy, id) }
func executionKey(id string) []byte   { return prefixedKey(prefixExecution, id) }
func metricsKey(nodeID string) []byte { return prefixedKey(prefixMetrics, nodeID) }
func analysisKey(nodeID string) []byte {
	return prefixedKey(prefixAnalysis, nodeID)
}
func counterKey(name string) []byte { return prefixedKey(prefixCounter, name) }
func indexKey(name string) []byte   { return prefixedKey(prefixIndex, name) }

// voteIndexKey lists the voters of one proposal in cast order.
func voteIndexKey(proposalID string) []byte {
	return prefixedKey(prefixIndex, "votes/"+proposalID)
}

// executionIndexKey lists the audit entries of one strategy in run order.
func executionIndexKey(strategyID string) []byte {
	return prefixedKey(prefixIndex, "execs/"+strategyID)
}
