package governance

// Event names carried to the sink.
const (
	EventProposalCreated     = "ProposalCreated"
	EventProposalCancelled   = "ProposalCancelled"
	EventProposalExecuted    = "ProposalExecuted"
	EventVoteCast            = "VoteCast"
	EventQuorumReached       = "QuorumReached"
	EventVoterRegistered     = "VoterRegistered"
	EventConfigUpdated       = "VotingConfigUpdated"
	EventStrategyCreated     = "StrategyCreated"
	EventStrategyExecuted    = "StrategyExecuted"
	EventNodeMetricsUpdated  = "NodeMetricsUpdated"
	EventRiskAlertGenerated  = "RiskAlertGenerated"
	EventCouncilNodeAnalyzed = "CouncilNodeAnalyzed"
)

// Event is a fire-and-forget notification of a state change, emitted only
// after the owning write has committed. Fields carry the changed values.
type Event struct {
	Type     string         `json:"type"`
	EntityID string         `json:"entity_id"`
	At       int64          `json:"at"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// EventSink receives events. Delivery is best-effort and outside the
// transactional guarantee; implementations must not block.
type EventSink interface {
	Emit(ev Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}
