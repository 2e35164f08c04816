package governance

import (
	"encoding/json"
	"fmt"
)

// ProposalStatus is the lifecycle state of a proposal. Transitions are
// one-way; a terminal status never re-enters Active.
type ProposalStatus int

const (
	// StatusActive accepts votes while the voting window is open.
	StatusActive ProposalStatus = iota
	// StatusQuorumReached marks that cast weight met quorum; votes are
	// still accepted until the window closes.
	StatusQuorumReached
	// StatusExecuted is terminal: the proposal passed and the executor ran.
	StatusExecuted
	// StatusFailed is terminal: quorum missed or yes did not exceed no.
	StatusFailed
	// StatusExecutionFailed is terminal: the proposal passed but the
	// executor returned an error. No automatic retry.
	StatusExecutionFailed
	// StatusCancelled is terminal: withdrawn by an administrator.
	StatusCancelled
)

var statusNames = map[ProposalStatus]string{
	StatusActive:          "active",
	StatusQuorumReached:   "quorum_reached",
	StatusExecuted:        "executed",
	StatusFailed:          "failed",
	StatusExecutionFailed: "execution_failed",
	StatusCancelled:       "cancelled",
}

func (s ProposalStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Terminal reports whether the status is absorbing.
func (s ProposalStatus) Terminal() bool {
	switch s {
	case StatusExecuted, StatusFailed, StatusExecutionFailed, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a status name back to its enum value.
func ParseStatus(name string) (ProposalStatus, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown proposal status %q", ErrValidation, name)
}

func (s ProposalStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ProposalStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StrategyKind selects the candidate-selection behavior of a voting strategy.
type StrategyKind string

const (
	// KindPerformance ranks candidates purely by overall score.
	KindPerformance StrategyKind = "performance"
	// KindRiskAdjusted ranks by overall score but admits low-risk nodes only.
	KindRiskAdjusted StrategyKind = "risk_adjusted"
	// KindDiversified ranks by overall score while capping high-risk picks
	// to half the candidate slots.
	KindDiversified StrategyKind = "diversified"
	// KindMLDriven is a named placeholder; executing it is rejected.
	KindMLDriven StrategyKind = "ml_driven"
)

// Valid reports whether k is one of the known strategy kinds.
func (k StrategyKind) Valid() bool {
	switch k {
	case KindPerformance, KindRiskAdjusted, KindDiversified, KindMLDriven:
		return true
	}
	return false
}

// RiskLevel is the two-tier risk classification of a council node.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)
