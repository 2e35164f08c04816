package governance

// Proposal is the durable record of one governance proposal and its tally.
// All timestamps are unix seconds from the engine clock. PowerSnapshot is
// the registry's total voting power at creation time; cast weight can never
// exceed it.
type Proposal struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Proposer      string         `json:"proposer"`
	Target        string         `json:"target,omitempty"`
	Payload       []byte         `json:"payload,omitempty"`
	Status        ProposalStatus `json:"status"`
	CreatedAt     int64          `json:"created_at"`
	VotingStart   int64          `json:"voting_start"`
	VotingEnd     int64          `json:"voting_end"`
	ExecutionTime int64          `json:"execution_time"`
	FinalizedAt   int64          `json:"finalized_at,omitempty"`
	YesWeight     int64          `json:"yes_weight"`
	NoWeight      int64          `json:"no_weight"`
	PowerSnapshot int64          `json:"power_snapshot"`
	VoteCount     int64          `json:"vote_count"`
}

// CastWeight is the total weight of all recorded votes.
func (p *Proposal) CastWeight() int64 {
	return p.YesWeight + p.NoWeight
}

// RequiredQuorum is the minimum cast weight for the given threshold,
// in basis points, using floor division. The snapshot is split into
// quotient and remainder so the intermediate products fit in int64 for
// any snapshot value.
func (p *Proposal) RequiredQuorum(thresholdBps int64) int64 {
	return p.PowerSnapshot/10000*thresholdBps + p.PowerSnapshot%10000*thresholdBps/10000
}

// QuorumMet reports whether cast weight meets the threshold.
func (p *Proposal) QuorumMet(thresholdBps int64) bool {
	return p.CastWeight() >= p.RequiredQuorum(thresholdBps)
}

// Passed reports whether the proposal passes: quorum met and yes weight
// strictly above no weight.
func (p *Proposal) Passed(thresholdBps int64) bool {
	return p.QuorumMet(thresholdBps) && p.YesWeight > p.NoWeight
}

// Vote is one voter's immutable ballot on a proposal. Weight is the
// voter's registered power at cast time.
type Vote struct {
	ProposalID string `json:"proposal_id"`
	Voter      string `json:"voter"`
	Support    bool   `json:"support"`
	Weight     int64  `json:"weight"`
	Reason     string `json:"reason,omitempty"`
	CastAt     int64  `json:"cast_at"`
}

// VoterInfo is one registry entry. Re-registration overwrites power and
// timestamp and resets the cast-vote counter.
type VoterInfo struct {
	Address      string `json:"address"`
	Power        int64  `json:"power"`
	RegisteredAt int64  `json:"registered_at"`
	Active       bool   `json:"active"`
	VotesCast    int64  `json:"votes_cast"`
}

// VotingConfig is the global governance configuration. Reads fall back to
// DefaultVotingConfig when nothing has been stored yet; writes are
// last-write-wins with a bumped version.
type VotingConfig struct {
	VotingPeriod        int64 `json:"voting_period"`   // seconds
	ExecutionDelay      int64 `json:"execution_delay"` // seconds
	QuorumBps           int64 `json:"quorum_bps"`      // 1..10000
	RequireRegistration bool  `json:"require_registration"`
	Version             int64 `json:"version"`
	UpdatedAt           int64 `json:"updated_at,omitempty"`
}

// DefaultVotingConfig returns the configuration used before any
// administrator write: one-week voting, one-day execution delay,
// 30% quorum, registered proposers only.
func DefaultVotingConfig() VotingConfig {
	return VotingConfig{
		VotingPeriod:        604800,
		ExecutionDelay:      86400,
		QuorumBps:           3000,
		RequireRegistration: true,
	}
}

// NodeMetrics is the raw operational telemetry of a council node, mutated
// in place by each report. History keeps the most recent overall scores
// (newest last) for trend analysis.
type NodeMetrics struct {
	NodeID           string    `json:"node_id"`
	Owner            string    `json:"owner"`
	UptimePercent    float64   `json:"uptime_percent"`
	PerformanceScore float64   `json:"performance_score"`
	BlocksProduced   int64     `json:"blocks_produced"`
	History          []float64 `json:"history,omitempty"`
	CreatedAt        int64     `json:"created_at"`
	UpdatedAt        int64     `json:"updated_at"`
}

// NodeBehaviorAnalysis is the derived scoring of one council node,
// recomputed in full on every analysis call.
type NodeBehaviorAnalysis struct {
	NodeID      string    `json:"node_id"`
	Reliability float64   `json:"reliability"`
	Consistency float64   `json:"consistency"`
	Overall     float64   `json:"overall"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Samples     int       `json:"samples"`
	AnalyzedAt  int64     `json:"analyzed_at"`
}

// VotingStrategy is a stored candidate-selection configuration.
type VotingStrategy struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Kind          StrategyKind `json:"kind"`
	MaxCandidates int          `json:"max_candidates"`
	MinScore      float64      `json:"min_score"`
	Owner         string       `json:"owner"`
	Executions    int64        `json:"executions"`
	CreatedAt     int64        `json:"created_at"`
}

// StrategyExecution is one audit entry of an applied (non-dry-run,
// non-rejected) strategy run.
type StrategyExecution struct {
	ID         string   `json:"id"`
	StrategyID string   `json:"strategy_id"`
	Caller     string   `json:"caller"`
	Candidates []string `json:"candidates"`
	RiskScore  float64  `json:"risk_score"`
	ExecutedAt int64    `json:"executed_at"`
}

// StrategyResult is the outcome of one ExecuteStrategy call. Applied is
// false for dry runs, risk-gate rejections, and empty candidate sets;
// Reason says which.
type StrategyResult struct {
	StrategyID  string       `json:"strategy_id"`
	Kind        StrategyKind `json:"kind"`
	Candidates  []string     `json:"candidates"`
	RiskScore   float64      `json:"risk_score"`
	Applied     bool         `json:"applied"`
	DryRun      bool         `json:"dry_run,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	ExecutionID string       `json:"execution_id,omitempty"`
}

// Stats aggregates the engine's running counters.
type Stats struct {
	Proposals          int64 `json:"proposals"`
	Votes              int64 `json:"votes"`
	Voters             int64 `json:"voters"`
	TotalVotingPower   int64 `json:"total_voting_power"`
	Strategies         int64 `json:"strategies"`
	StrategyExecutions int64 `json:"strategy_executions"`
	CouncilNodes       int64 `json:"council_nodes"`
}
